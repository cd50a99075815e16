package minio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/go-recommender/internal/infrastructure/minio"
	"github.com/m-mizutani/gt"
)

type signerMock struct {
	calls int
	err   error
}

func (s *signerMock) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "https://minio.local/products/" + key + "?sig=1", nil
}

func TestImageResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("absolute url is returned unchanged", func(t *testing.T) {
		signer := &signerMock{}
		r := minio.NewImageResolver(signer, time.Hour)
		got, err := r.ResolveImage(ctx, "https://cdn.example.com/a.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("https://cdn.example.com/a.jpg")
		gt.Value(t, signer.calls).Equal(0)
	})

	t.Run("object key is signed once and cached", func(t *testing.T) {
		signer := &signerMock{}
		r := minio.NewImageResolver(signer, time.Hour)

		got, err := r.ResolveImage(ctx, "/shoes/red.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("https://minio.local/products/shoes/red.jpg?sig=1")

		_, err = r.ResolveImage(ctx, "shoes/red.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, signer.calls).Equal(1)
	})

	t.Run("empty reference", func(t *testing.T) {
		got, err := minio.NewImageResolver(&signerMock{}, time.Hour).ResolveImage(ctx, "")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("")
	})

	t.Run("signing failure", func(t *testing.T) {
		_, err := minio.NewImageResolver(&signerMock{err: errors.New("denied")}, time.Hour).ResolveImage(ctx, "a.jpg")
		gt.Error(t, err)
	})
}
