package domain

import "time"

// Order — заказ покупателя. Источник истории для профиля.
type Order struct {
	ID         int64
	CustomerID int64
	Items      []OrderItem
	PlacedAt   time.Time
}

// OrderItem — позиция заказа
type OrderItem struct {
	ProductID int64
	Quantity  int
}
