package e

import (
	"errors"
	"fmt"
)

// Категории ошибок. Конкретные ошибки ниже оборачивают одну из них,
// поэтому errors.Is срабатывает и на конкретную ошибку, и на категорию.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyInput        = fmt.Errorf("%w: empty vector set", ErrInvalidInput)
	ErrDimensionMismatch = fmt.Errorf("%w: vector dimension mismatch", ErrInvalidInput)
	ErrEmptyCandidateSet = fmt.Errorf("no eligible candidates")

	// 400 Bad Request
	ErrStatusBadRequest   = fmt.Errorf("%w: bad request", ErrInvalidInput)
	ErrQueryRequired      = fmt.Errorf("%w: query is required", ErrInvalidInput)
	ErrCustomerIDRequired = fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	ErrSessionIDRequired  = fmt.Errorf("%w: session id is required", ErrInvalidInput)
	ErrInvalidLimit       = fmt.Errorf("%w: limit is out of range", ErrInvalidInput)
	ErrInvalidStrategy    = fmt.Errorf("%w: unknown profile strategy", ErrInvalidInput)

	// 404 Not Found
	ErrNoHistory               = fmt.Errorf("%w: no order history", ErrNotFound)
	ErrNoEmbeddableHistory     = fmt.Errorf("%w: no purchased product has an embedding", ErrNotFound)
	ErrRecommendationsNotFound = fmt.Errorf("%w: no stored recommendations", ErrNotFound)

	// 503 Service Unavailable
	ErrProviderNotConfigured = fmt.Errorf("%w: llm provider is not configured", ErrDependencyUnavailable)
	ErrIndexNotConfigured    = fmt.Errorf("%w: vector index is not configured", ErrDependencyUnavailable)
	ErrEmptyEmbedding        = fmt.Errorf("%w: provider returned empty embedding", ErrDependencyUnavailable)

	// 500
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Dependency помечает ошибку внешнего хранилища или провайдера как DependencyError.
// Повторная пометка не добавляет категорию второй раз.
func Dependency(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDependencyUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
}
