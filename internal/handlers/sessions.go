package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/auth"
	"example.com/layali/planner-gateway/internal/marketplace"
	"example.com/layali/planner-gateway/internal/notifications"
	"example.com/layali/planner-gateway/internal/present"
	"example.com/layali/planner-gateway/internal/repository"
	"example.com/layali/planner-gateway/internal/session"
	"example.com/layali/planner-gateway/internal/suggestions"
)

const logWriteTimeout = 5 * time.Second

// SuggestionLogger сохраняет завершенные запросы предложений.
type SuggestionLogger interface {
	LogRequest(ctx context.Context, log repository.SuggestionRequestLog) error
}

type SessionHandler struct {
	Sessions  *session.Registry
	Gateway   GatewayFactory
	Notifier  *notifications.Hub
	Log       SuggestionLogger
	Formatter present.Formatter
	Logger    *slog.Logger
	Clock     func() time.Time
}

// NewSessionHandler создает обработчик экранных сессий подбора.
func NewSessionHandler(sessions *session.Registry, gateway GatewayFactory, notifier *notifications.Hub, log SuggestionLogger, formatter present.Formatter, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		Sessions:  sessions,
		Gateway:   gateway,
		Notifier:  notifier,
		Log:       log,
		Formatter: formatter,
		Logger:    logger,
		Clock:     time.Now,
	}
}

type SelectEventRequest struct {
	EventID string `json:"event_id" validate:"max=100"`
}

type ToggleCategoryResponse struct {
	Changed bool         `json:"changed"`
	Session session.View `json:"session"`
}

// Create открывает сессию и загружает мероприятия и категории пользователя.
func (h *SessionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	s := session.New(userID, h.Gateway(token), session.Options{
		Formatter: h.Formatter,
		Clock:     h.Clock,
		Logger:    h.Logger,
		OnChange:  h.publish,
		OnResolve: h.record,
		OnClose:   h.closed,
	})

	if err := s.Load(c.Request().Context()); err != nil && errors.Is(err, marketplace.ErrUnauthorized) {
		s.Close()
		return unauthorized(c)
	}

	h.Sessions.Add(s)
	return c.JSON(http.StatusCreated, s.View())
}

// Get возвращает текущее представление экрана.
func (h *SessionHandler) Get(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, s.View())
}

// Delete закрывает сессию и отменяет живой запрос.
func (h *SessionHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	if err := h.Sessions.Delete(sessionID, userID); err != nil {
		return h.sessionError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Reload повторно загружает справочники, например после ошибки загрузки.
func (h *SessionHandler) Reload(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	if err := s.Load(c.Request().Context()); err != nil {
		if errors.Is(err, session.ErrClosed) {
			return h.sessionError(c, err)
		}
		if errors.Is(err, marketplace.ErrUnauthorized) {
			return unauthorized(c)
		}
	}

	return c.JSON(http.StatusOK, s.View())
}

// SelectEvent выбирает мероприятие. Пустой event_id снимает выбор.
func (h *SessionHandler) SelectEvent(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	var req SelectEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	if err := s.SelectEvent(req.EventID); err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, s.View())
}

// ToggleCategory переключает категорию в наборе выбранных.
func (h *SessionHandler) ToggleCategory(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	changed, err := s.ToggleCategory(c.Param("categoryId"))
	if err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, ToggleCategoryResponse{Changed: changed, Session: s.View()})
}

// ClearCategories снимает выбор со всех категорий.
func (h *SessionHandler) ClearCategories(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	if _, err := s.ClearCategories(); err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, s.View())
}

// Fire запускает запрос предложений. С ?wait=true ответ отдается после
// завершения запроса или отключения клиента.
func (h *SessionHandler) Fire(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	req, err := s.Fire()
	if err != nil {
		return h.sessionError(c, err)
	}

	if c.QueryParam("wait") != "true" {
		return c.JSON(http.StatusAccepted, s.View())
	}

	clearWriteDeadline(c)
	select {
	case <-req.Done():
	case <-c.Request().Context().Done():
	}

	return c.JSON(http.StatusOK, s.View())
}

// Abort отменяет живой запрос предложений.
func (h *SessionHandler) Abort(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	if !s.Abort() {
		return conflict(c, "no request in flight")
	}

	return c.JSON(http.StatusAccepted, s.View())
}

// session находит сессию пользователя и привязывает ее к актуальному токену.
func (h *SessionHandler) session(c echo.Context) (*session.Session, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return nil, errUnauthenticated
	}
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return nil, errUnauthenticated
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, errInvalidSessionID
	}

	s, err := h.Sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	s.Rebind(h.Gateway(token))
	return s, nil
}

var (
	errUnauthenticated  = errors.New("unauthenticated")
	errInvalidSessionID = errors.New("invalid session id")
)

func (h *SessionHandler) sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errUnauthenticated):
		return unauthorized(c)
	case errors.Is(err, errInvalidSessionID):
		return badRequest(c, "invalid session id")
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return notFound(c, "session not found")
	case errors.Is(err, session.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, session.ErrUnknownEvent):
		return badRequest(c, "event is not eligible for suggestions")
	case errors.Is(err, session.ErrUnknownCategory):
		return badRequest(c, "unknown category")
	case errors.Is(err, suggestions.ErrInvalidTrigger):
		return conflict(c, "invalid trigger")
	default:
		h.Logger.Error("session operation failed", slog.String("error", err.Error()))
		return serverError(c)
	}
}

func (h *SessionHandler) publish(s *session.Session) {
	if h.Notifier == nil {
		return
	}

	h.Notifier.Publish(s.ID, notifications.Event{
		Type: notifications.EventSessionUpdated,
		Data: s.View(),
	})
}

func (h *SessionHandler) record(s *session.Session, resolution suggestions.Resolution) {
	if h.Log == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	if err := h.Log.LogRequest(ctx, repository.NewSuggestionRequestLog(s.ID, s.OwnerID, resolution)); err != nil {
		h.Logger.Warn("failed to log suggestion request",
			slog.String("session_id", s.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (h *SessionHandler) closed(s *session.Session) {
	if h.Notifier != nil {
		h.Notifier.Close(s.ID)
	}
}
