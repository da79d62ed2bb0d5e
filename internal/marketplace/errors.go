package marketplace

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("marketplace rejected credentials")
	ErrNotFound     = errors.New("marketplace resource not found")
)

// APIError описывает ответ маркетплейса с неуспешным статусом.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("marketplace %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("marketplace %s: status %d", e.Operation, e.StatusCode)
}

// UserMessage возвращает текст ошибки, который можно показать пользователю.
func (e *APIError) UserMessage() string {
	return strings.TrimSpace(e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

func newAPIError(operation string, status int, body []byte) *APIError {
	apiErr := &APIError{Operation: operation, StatusCode: status, Body: body}

	var parsed errorWire
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = firstNonEmpty(parsed.Message, parsed.Error)
	}

	return apiErr
}
