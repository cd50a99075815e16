package domain

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding — точка векторного индекса: вектор товара и его атрибуты для фильтрации.
type Embedding struct {
	ProductID int64
	Vector    Vector
	Payload   Payload
}

func NewEmbedding(product *Product) *Embedding {
	return &Embedding{
		ProductID: product.ID,
		Vector:    product.Embedding,
		Payload:   NewPayload(product.ID, product.CategoryID),
	}
}

func NewPayload(productID int64, categoryID int64) Payload {
	return Payload{
		"product_id":  productID,
		"category_id": categoryID,
	}
}
