package domain

import "time"

// Product описывает товар каталога вместе с его эмбеддингом
type Product struct {
	ID          int64
	Name        string
	Description string
	Brand       string
	Price       int64  // Цена хранится в копейках
	Image       string // абсолютный URL или ключ объекта в MinIO
	CategoryID  int64
	IsFeatured  bool
	Embedding   Vector
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	IsArchived  bool
}

// Embeddable сообщает, может ли товар участвовать в ранжировании.
func (p *Product) Embeddable() bool {
	return p != nil && !p.IsArchived && !p.Embedding.IsZero()
}

func NewProduct(name string, price int64, categoryID int64) *Product {
	return &Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	}
}
