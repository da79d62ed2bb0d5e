package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/session"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB       Pinger
	Sessions *session.Registry
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions int    `json:"sessions"`
}

// NewHealthHandler создает проверку состояния шлюза.
func NewHealthHandler(db Pinger, sessions *session.Registry) *HealthHandler {
	return &HealthHandler{DB: db, Sessions: sessions}
}

// Health возвращает статус сервиса и базы данных.
func (h *HealthHandler) Health(c echo.Context) error {
	response := HealthResponse{Status: "ok", Database: "ok", Sessions: h.Sessions.Len()}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}
