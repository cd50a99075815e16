package domain

import "time"

// Recommendation — последний сохранённый список рекомендаций покупателя.
// На одного покупателя хранится ровно одна запись, каждое сохранение заменяет её целиком.
type Recommendation struct {
	CustomerID int64
	ProductIDs []int64
	UpdatedAt  time.Time
}

func NewRecommendation(customerID int64, productIDs []int64, updatedAt time.Time) *Recommendation {
	ids := make([]int64, len(productIDs))
	copy(ids, productIDs)

	return &Recommendation{
		CustomerID: customerID,
		ProductIDs: ids,
		UpdatedAt:  updatedAt,
	}
}
