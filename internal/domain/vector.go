package domain

import (
	"math"

	"github.com/DRSN-tech/go-recommender/pkg/e"
)

// Vector — эмбеддинг фиксированной размерности. Все векторы, участвующие
// в одном ранжировании, обязаны иметь одинаковую длину.
type Vector []float32

// IsZero сообщает, что вектор пустой или все его компоненты равны нулю.
// Такой вектор не может участвовать в ранжировании.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}

	return true
}

// Clone возвращает независимую копию вектора.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}

	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Add возвращает покомпонентную сумму.
func (v Vector) Add(other Vector) (Vector, error) {
	if len(v) != len(other) {
		return nil, e.ErrDimensionMismatch
	}

	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + other[i]
	}

	return out, nil
}

// Scale возвращает вектор, умноженный на скаляр.
func (v Vector) Scale(k float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * k)
	}

	return out
}

// Dot — скалярное произведение. Считается в float64, чтобы не терять точность на 768+ измерениях.
func (v Vector) Dot(other Vector) (float64, error) {
	if len(v) != len(other) {
		return 0, e.ErrDimensionMismatch
	}

	var sum float64
	for i := range v {
		sum += float64(v[i]) * float64(other[i])
	}

	return sum, nil
}

// Norm — евклидова длина.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	return math.Sqrt(sum)
}

// CosineSimilarity возвращает косинусную близость в [-1, 1].
// Если у одного из векторов нулевая длина, результат 0.
func CosineSimilarity(a, b Vector) (float64, error) {
	dot, err := a.Dot(b)
	if err != nil {
		return 0, err
	}

	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0, nil
	}

	sim := dot / (na * nb)
	// погрешность округления может вывести значение за границы
	return math.Max(-1, math.Min(1, sim)), nil
}

// Mean возвращает покомпонентное среднее арифметическое.
func Mean(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, e.ErrEmptyInput
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, e.ErrDimensionMismatch
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	out := make(Vector, dim)
	n := float64(len(vectors))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}

	return out, nil
}
