package domain

import "github.com/shopspring/decimal"

// ProductSummary — проекция товара, которую видит покупатель.
type ProductSummary struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
}

// NewProductSummary переводит цену из копеек и подставляет уже разрешённую ссылку на изображение.
func NewProductSummary(p *Product, image string) ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.New(p.Price, -2),
		Image:       image,
	}
}
