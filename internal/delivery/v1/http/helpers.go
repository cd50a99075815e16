package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// knownErrors отдают клиенту собственное сообщение. Остальные ошибки сводятся к категории.
var knownErrors = []struct {
	err  error
	code int
}{
	{e.ErrQueryRequired, http.StatusBadRequest},
	{e.ErrCustomerIDRequired, http.StatusBadRequest},
	{e.ErrSessionIDRequired, http.StatusBadRequest},
	{e.ErrInvalidLimit, http.StatusBadRequest},
	{e.ErrInvalidStrategy, http.StatusBadRequest},
	{e.ErrNoHistory, http.StatusNotFound},
	{e.ErrNoEmbeddableHistory, http.StatusNotFound},
	{e.ErrRecommendationsNotFound, http.StatusNotFound},
	{e.ErrProviderNotConfigured, http.StatusServiceUnavailable},
	{e.ErrIndexNotConfigured, http.StatusServiceUnavailable},
}

func ToHTTPResponse(err error) (int, string) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return k.code, k.err.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, e.ErrDependencyUnavailable.Error()
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, e.ErrNotFound.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса и проверяет его теги validate.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap("decode body", e.ErrStatusBadRequest)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationError(verrs[0])
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

func validationError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Query":
		return e.ErrQueryRequired
	case "CustomerID":
		return e.ErrCustomerIDRequired
	case "Limit":
		return e.ErrInvalidLimit
	default:
		return e.Wrap(fe.Field(), e.ErrStatusBadRequest)
	}
}

// queryInt читает необязательный целочисленный параметр. Отсутствие параметра даёт 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Wrap(name, e.ErrInvalidLimit)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, e.Wrap(name, e.ErrStatusBadRequest)
	}
	return v, nil
}

func parseCustomerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrCustomerIDRequired
	}
	return id, nil
}
