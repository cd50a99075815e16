package pgdb

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/domain"
	"github.com/DRSN-tech/go-recommender/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/go-recommender/internal/usecase"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/pgvector/pgvector-go"
)

const productColumns = `
	id, name, description, brand, price, image, category_id, is_featured,
	embedding, created_at, updated_at, is_archived`

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
// Он же служит векторным индексом через расширение pgvector.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// GetByIDs возвращает товары по идентификаторам, включая архивные. Порядок не гарантирован.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `SELECT` + productColumns + `
		FROM products
		WHERE id = ANY($1)
	`

	return p.queryProducts(ctx, query, ids)
}

// ListEmbedded возвращает неархивные товары с ненулевым эмбеддингом, опционально в одной категории.
func (p *ProductRepo) ListEmbedded(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products
		WHERE embedding IS NOT NULL
		  AND vector_norm(embedding) > 0
		  AND NOT is_archived
		  AND ($1::bigint IS NULL OR category_id = $1)
		ORDER BY id
	`

	return p.queryProducts(ctx, query, categoryID)
}

func (p *ProductRepo) CountEmbedded(ctx context.Context) (int, error) {
	query := `
		SELECT count(*)
		FROM products
		WHERE embedding IS NOT NULL
		  AND vector_norm(embedding) > 0
		  AND NOT is_archived
	`

	var count int
	if err := p.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// ListFeatured возвращает избранные товары, новые первыми.
func (p *ProductRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products
		WHERE is_featured AND NOT is_archived
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	return p.queryProducts(ctx, query, limit)
}

// ListForIndex постранично отдаёт все товары по возрастанию id, включая архивные и без эмбеддинга:
// их точки нужно удалить из внешнего индекса.
func (p *ProductRepo) ListForIndex(ctx context.Context, afterID int64, limit int) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`

	return p.queryProducts(ctx, query, afterID, limit)
}

// Search ищет ближайшие товары по косинусному расстоянию (оператор <=> pgvector).
// Нулевые векторы отсекаются: для них <=> возвращает NaN.
// Близость возвращается как 1 - расстояние, чтобы совпадать со шкалой CosineSimilarity.
func (p *ProductRepo) Search(ctx context.Context, vector domain.Vector, categoryID *int64, limit int) ([]usecase.RankedProduct, error) {
	query := `
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM products
		WHERE embedding IS NOT NULL
		  AND vector_norm(embedding) > 0
		  AND NOT is_archived
		  AND ($2::bigint IS NULL OR category_id = $2)
		ORDER BY embedding <=> $1, id
		LIMIT $3
	`

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), categoryID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]usecase.RankedProduct, 0, limit)
	for rows.Next() {
		var rp usecase.RankedProduct
		if err := rows.Scan(&rp.ProductID, &rp.Score); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, rp)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (p *ProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.ProductModel, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Brand, &model.Price,
		&model.Image, &model.CategoryID, &model.IsFeatured, &model.Embedding,
		&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}
