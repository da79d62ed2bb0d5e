package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/auth"
	"example.com/layali/planner-gateway/internal/repository"
)

const defaultHistoryLimit = 20

// HistoryReader читает лог запросов предложений.
type HistoryReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]repository.SuggestionRequestLog, error)
	GetByID(ctx context.Context, userID string, id uuid.UUID) (repository.SuggestionRequestLog, error)
}

type HistoryHandler struct {
	History HistoryReader
}

// NewHistoryHandler создает обработчик истории запросов предложений.
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{History: history}
}

// List возвращает последние запросы пользователя.
func (h *HistoryHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = parsed
	}

	logs, err := h.History.ListRecent(c.Request().Context(), userID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "limit must be between 1 and "+strconv.Itoa(repository.MaxHistoryLimit))
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]repository.SuggestionRequestLog{"requests": logs})
}

// Get возвращает один запрос пользователя.
func (h *HistoryHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	log, err := h.History.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "request not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, log)
}
