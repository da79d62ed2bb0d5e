package handlers

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/notifications"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stream открывает SSE-поток изменений сессии. Поток завершается при
// отключении клиента или закрытии сессии.
func (h *SessionHandler) Stream(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Notifier.Subscribe(s.ID)
	defer unsubscribe()

	clearWriteDeadline(c)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	_ = writeSSE(c, notifications.Event{Type: notifications.EventConnected, Data: map[string]string{"session_id": s.ID.String()}})
	_ = writeSSE(c, notifications.Event{Type: notifications.EventSessionUpdated, Data: s.View()})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

// clearWriteDeadline снимает WriteTimeout сервера для долгих ответов.
// Обертки без поддержки дедлайнов пропускаются.
func clearWriteDeadline(c echo.Context) {
	_ = http.NewResponseController(c.Response().Writer).SetWriteDeadline(time.Time{})
}
