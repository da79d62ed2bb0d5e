package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"example.com/layali/planner-gateway/internal/eligibility"
	"example.com/layali/planner-gateway/internal/models"
	"example.com/layali/planner-gateway/internal/present"
	"example.com/layali/planner-gateway/internal/selection"
	"example.com/layali/planner-gateway/internal/suggestions"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrForbidden       = errors.New("session belongs to another user")
	ErrUnknownEvent    = errors.New("event is not eligible for suggestions")
	ErrUnknownCategory = errors.New("unknown category")
	ErrClosed          = errors.New("session is closed")
)

// Backend описывает операции маркетплейса, нужные экрану подбора.
type Backend interface {
	ListMyEvents(ctx context.Context) ([]models.Event, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	suggestions.Fetcher
}

type Options struct {
	Formatter present.Formatter
	Clock     func() time.Time
	Logger    *slog.Logger
	// OnChange вызывается после каждого изменения состояния, без удерживаемых блокировок.
	OnChange func(s *Session)
	// OnResolve вызывается для каждого завершенного запроса предложений.
	OnResolve func(s *Session, resolution suggestions.Resolution)
	OnClose   func(s *Session)
}

// Session хранит состояние одного экрана подбора: выбранное мероприятие, категории
// и автомат запроса предложений. Не разделяется между экранами и не сохраняется.
type Session struct {
	ID      uuid.UUID
	OwnerID string

	formatter present.Formatter
	clock     func() time.Time
	logger    *slog.Logger
	onChange  func(*Session)
	onClose   func(*Session)

	// notifyMu упорядочивает вызовы onChange: каждый следующий видит состояние не старше предыдущего.
	notifyMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	lifecycle *suggestions.Lifecycle

	mu                sync.Mutex
	backend           Backend
	events            []eligibility.Candidate
	categories        []models.Category
	loadingEvents     bool
	loadingCategories bool
	eventsErr         error
	categoriesErr     error
	selectedEventID   string
	selection         *selection.Set
	lastSeen          time.Time
	closed            bool
}

// New создает сессию экрана. Справочные данные загружаются вызовом Load.
func New(ownerID string, backend Backend, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		formatter:         opts.Formatter,
		clock:             opts.Clock,
		onChange:          opts.OnChange,
		onClose:           opts.OnClose,
		ctx:               ctx,
		cancel:            cancel,
		backend:           backend,
		loadingEvents:     true,
		loadingCategories: true,
	}
	s.logger = opts.Logger.With(slog.String("session_id", s.ID.String()))
	s.lastSeen = s.clock()

	s.selection = selection.New(s.invalidate)
	s.selection.SetDisabled(true)

	fetcher := suggestions.FetcherFunc(func(ctx context.Context, query suggestions.Query) (suggestions.Response, error) {
		return s.currentBackend().FetchSuggestions(ctx, query)
	})

	lifecycleOpts := []suggestions.Option{
		suggestions.WithLogger(s.logger),
		suggestions.WithStateHook(func(suggestions.State) { s.notify() }),
	}
	if opts.OnResolve != nil {
		onResolve := opts.OnResolve
		lifecycleOpts = append(lifecycleOpts, suggestions.WithResolutionHook(func(resolution suggestions.Resolution) {
			onResolve(s, resolution)
		}))
	}
	s.lifecycle = suggestions.NewLifecycle(fetcher, lifecycleOpts...)

	return s
}

// Rebind подменяет backend, например при обновлении токена пользователя.
func (s *Session) Rebind(backend Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backend = backend
	s.lastSeen = s.clock()
}

// Load загружает мероприятия и категории параллельно. Ошибка одной загрузки
// не мешает другой, каждая отражается в своем флаге.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.loadingEvents = true
	s.loadingCategories = true
	s.selection.SetDisabled(true)
	backend := s.backend
	s.mu.Unlock()
	s.notify()

	var g errgroup.Group

	g.Go(func() error {
		events, err := backend.ListMyEvents(ctx)
		s.mu.Lock()
		s.loadingEvents = false
		s.eventsErr = err
		if err == nil {
			s.applyEvents(events)
		}
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		categories, err := backend.ListCategories(ctx)
		s.mu.Lock()
		s.loadingCategories = false
		s.categoriesErr = err
		if err == nil {
			s.applyCategories(categories)
		}
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})

	err := g.Wait()

	s.mu.Lock()
	s.selection.SetDisabled(s.loading())
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("session load failed", slog.String("error", err.Error()))
	}
	s.notify()
	return err
}

// SelectEvent выбирает мероприятие из списка подходящих. Пустой id снимает выбор.
func (s *Session) SelectEvent(eventID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.lastSeen = s.clock()

	if eventID != "" && s.findEvent(eventID) < 0 {
		s.mu.Unlock()
		return ErrUnknownEvent
	}

	changed := s.selectedEventID != eventID
	if changed {
		s.selectedEventID = eventID
		s.lifecycle.Reset()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

// ToggleCategory переключает категорию. Пока справочники загружаются, вызов ничего не делает.
func (s *Session) ToggleCategory(categoryID string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	s.lastSeen = s.clock()

	if s.selection.Disabled() {
		s.mu.Unlock()
		return false, nil
	}

	if !s.hasCategory(categoryID) {
		s.mu.Unlock()
		return false, ErrUnknownCategory
	}

	changed := s.selection.Toggle(categoryID)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed, nil
}

// ClearCategories снимает выбор со всех категорий.
func (s *Session) ClearCategories() (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	s.lastSeen = s.clock()
	changed := s.selection.Clear()
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed, nil
}

// CanFire сообщает, можно ли сейчас предложить пользователю запрос предложений.
func (s *Session) CanFire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.canFire()
}

// Fire запускает запрос предложений для текущего выбора, вытесняя живой запрос.
func (s *Session) Fire() (*suggestions.Request, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.lastSeen = s.clock()

	if !s.canFire() {
		s.mu.Unlock()
		return nil, suggestions.ErrInvalidTrigger
	}

	req, err := s.lifecycle.Fire(s.ctx, s.query())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("suggestions requested", slog.Uint64("generation", req.Generation()))
	s.notify()
	return req, nil
}

// Abort отменяет живой запрос; он завершится состоянием Failed.
func (s *Session) Abort() bool {
	s.mu.Lock()
	s.lastSeen = s.clock()
	s.mu.Unlock()

	return s.lifecycle.Abort()
}

// RemoveEvent убирает удаленное мероприятие и сбрасывает связанный с ним подбор.
func (s *Session) RemoveEvent(eventID string) bool {
	s.mu.Lock()
	index := s.findEvent(eventID)
	if index < 0 {
		s.mu.Unlock()
		return false
	}

	s.events = append(s.events[:index:index], s.events[index+1:]...)
	if s.selectedEventID == eventID {
		s.selectedEventID = ""
		s.lifecycle.Reset()
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// ReplaceEvent применяет обновленное мероприятие. Изменение выбранного
// мероприятия меняет ограничения подбора, поэтому ответ сбрасывается.
func (s *Session) ReplaceEvent(event models.Event) {
	s.mu.Lock()
	events := make([]models.Event, 0, len(s.events)+1)
	replaced := false
	for _, candidate := range s.events {
		if candidate.Event.ID == event.ID {
			events = append(events, event)
			replaced = true
			continue
		}
		events = append(events, candidate.Event)
	}
	if !replaced {
		events = append(events, event)
	}

	s.applyEvents(events)
	if s.selectedEventID == event.ID {
		s.lifecycle.Reset()
	}
	s.mu.Unlock()

	s.notify()
}

// State возвращает снимок автомата запроса.
func (s *Session) State() suggestions.State {
	return s.lifecycle.State()
}

// Close отменяет живой запрос и делает сессию недоступной.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	if s.onClose != nil {
		s.onClose(s)
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeen
}

func (s *Session) currentBackend() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend
}

func (s *Session) invalidate() {
	s.lifecycle.Reset()
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.onChange(s)
}

func (s *Session) loading() bool {
	return s.loadingEvents || s.loadingCategories
}

func (s *Session) canFire() bool {
	if s.loading() || s.closed {
		return false
	}
	return s.query().Valid()
}

func (s *Session) query() suggestions.Query {
	return suggestions.Query{EventID: s.selectedEventID, CategoryIDs: s.selection.IDs()}
}

// applyEvents пересчитывает список подходящих мероприятий. Выбор, ставший
// недоступным, снимается; изменение бюджета выбранного мероприятия сбрасывает ответ.
func (s *Session) applyEvents(events []models.Event) {
	var previous decimal.NullDecimal
	if index := s.findEvent(s.selectedEventID); index >= 0 {
		previous = s.events[index].Event.Budget
	}

	s.events = eligibility.Upcoming(events, s.clock())

	if s.selectedEventID == "" {
		return
	}

	index := s.findEvent(s.selectedEventID)
	if index < 0 {
		s.selectedEventID = ""
		s.lifecycle.Reset()
		return
	}

	current := s.events[index].Event.Budget
	if previous.Valid != current.Valid || !previous.Decimal.Equal(current.Decimal) {
		s.lifecycle.Reset()
	}
}

func (s *Session) applyCategories(categories []models.Category) {
	s.categories = categories

	known := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		known[category.ID] = struct{}{}
	}
	s.selection.Retain(known)
}

func (s *Session) findEvent(eventID string) int {
	for i, candidate := range s.events {
		if candidate.Event.ID == eventID {
			return i
		}
	}
	return -1
}

func (s *Session) hasCategory(categoryID string) bool {
	for _, category := range s.categories {
		if category.ID == categoryID {
			return true
		}
	}
	return false
}
