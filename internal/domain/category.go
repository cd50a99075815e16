package domain

import "time"

// Category описывает категорию продукта
type Category struct {
	ID         int64
	Name       string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	IsArchived bool
}

func NewCategory(id int64, name string) *Category {
	return &Category{
		ID:   id,
		Name: name,
	}
}
