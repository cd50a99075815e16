package minio

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// URLSigner выдаёт временные ссылки на объекты хранилища.
type URLSigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ImageResolver превращает сохранённую ссылку на изображение в URL для клиента.
// Абсолютные URL возвращаются как есть, ключи объектов подписываются.
// Подписанные ссылки кэшируются на половину срока жизни, чтобы клиент не получил почти истёкшую.
type ImageResolver struct {
	signer URLSigner
	ttl    time.Duration
	cache  *expirable.LRU[string, string]
}

func NewImageResolver(signer URLSigner, ttl time.Duration) *ImageResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &ImageResolver{
		signer: signer,
		ttl:    ttl,
		cache:  expirable.NewLRU[string, string](4096, nil, ttl/2),
	}
}

func (r *ImageResolver) ResolveImage(ctx context.Context, ref string) (string, error) {
	const op = "ImageResolver.ResolveImage"

	ref = strings.TrimSpace(ref)
	if ref == "" || isAbsoluteURL(ref) {
		return ref, nil
	}

	key := strings.TrimPrefix(ref, "/")
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	signed, err := r.signer.PresignedURL(ctx, key, r.ttl)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	r.cache.Add(key, signed)
	return signed, nil
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
