package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/auth"
	"example.com/layali/planner-gateway/internal/marketplace"
	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/session"
)

type EventHandler struct {
	Sessions *session.Registry
	Gateway  GatewayFactory
}

// NewEventHandler создает обработчик изменений мероприятий.
func NewEventHandler(sessions *session.Registry, gateway GatewayFactory) *EventHandler {
	return &EventHandler{Sessions: sessions, Gateway: gateway}
}

// Create проверяет и передает новое мероприятие в маркетплейс.
func (h *EventHandler) Create(c echo.Context) error {
	userID, gateway, ok := h.caller(c)
	if !ok {
		return unauthorized(c)
	}

	var req marketplace.CreateEventInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	event, err := gateway.CreateEvent(c.Request().Context(), req)
	if err != nil {
		return upstreamError(c, err, "failed to create event")
	}

	h.replace(userID, event)
	return c.JSON(http.StatusCreated, event)
}

// Update применяет частичное обновление мероприятия.
func (h *EventHandler) Update(c echo.Context) error {
	userID, gateway, ok := h.caller(c)
	if !ok {
		return unauthorized(c)
	}

	eventID := strings.TrimSpace(c.Param("id"))
	if eventID == "" {
		return badRequest(c, "invalid event id")
	}

	var req marketplace.UpdateEventInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		req.Location = &location
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	event, err := gateway.UpdateEvent(c.Request().Context(), eventID, req)
	if err != nil {
		return upstreamError(c, err, "failed to update event")
	}
	if event.ID == "" {
		event.ID = eventID
	}

	if event.Date == "" {
		// Маркетплейс вернул неполное мероприятие, сессии перечитывают список целиком.
		for _, s := range h.Sessions.ForOwner(userID) {
			s.Rebind(gateway)
			// Ошибка уже записана в лог сессии, в ответе она не нужна.
			_ = s.Load(c.Request().Context())
		}
		return c.JSON(http.StatusOK, event)
	}

	h.replace(userID, event)
	return c.JSON(http.StatusOK, event)
}

// Delete удаляет мероприятие и убирает его из всех сессий пользователя.
func (h *EventHandler) Delete(c echo.Context) error {
	userID, gateway, ok := h.caller(c)
	if !ok {
		return unauthorized(c)
	}

	eventID := strings.TrimSpace(c.Param("id"))
	if eventID == "" {
		return badRequest(c, "invalid event id")
	}

	if err := gateway.DeleteEvent(c.Request().Context(), eventID); err != nil {
		return upstreamError(c, err, "failed to delete event")
	}

	for _, s := range h.Sessions.ForOwner(userID) {
		s.RemoveEvent(eventID)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) caller(c echo.Context) (string, Gateway, bool) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return "", nil, false
	}
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return "", nil, false
	}
	return userID, h.Gateway(token), true
}

func (h *EventHandler) replace(userID string, event models.Event) {
	for _, s := range h.Sessions.ForOwner(userID) {
		s.ReplaceEvent(event)
	}
}
