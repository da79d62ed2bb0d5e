package suggestions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
)

const (
	DefaultErrorMessage   = "failed to fetch suggestions"
	cancelledErrorMessage = "suggestions request was cancelled"
	timeoutErrorMessage   = "suggestions request timed out"
)

// ErrInvalidTrigger возвращается при попытке запроса без мероприятия или без категорий.
var ErrInvalidTrigger = errors.New("suggestions require an event and at least one category")

// Query задает ограничения, для которых запрашиваются предложения.
type Query struct {
	EventID     string
	CategoryIDs []string
}

// Valid сообщает, можно ли отправить запрос с этими ограничениями.
func (q Query) Valid() bool {
	if strings.TrimSpace(q.EventID) == "" {
		return false
	}
	for _, id := range q.CategoryIDs {
		if strings.TrimSpace(id) != "" {
			return true
		}
	}
	return false
}

type Fetcher interface {
	FetchSuggestions(ctx context.Context, query Query) (Response, error)
}

// FetcherFunc позволяет использовать функцию как Fetcher.
type FetcherFunc func(ctx context.Context, query Query) (Response, error)

func (f FetcherFunc) FetchSuggestions(ctx context.Context, query Query) (Response, error) {
	return f(ctx, query)
}

// State описывает снимок конечного автомата запроса.
type State struct {
	Status     Status
	Generation uint64
	Query      Query
	Response   *Response
	Err        error
	Message    string
}

// Resolution описывает, чем закончился сетевой вызов, в том числе вытесненный.
type Resolution struct {
	Generation uint64
	Query      Query
	Outcome    Outcome
	Response   *Response
	Err        error
	Latency    time.Duration
}

// Request описывает запущенный запрос. Done закрывается после того,
// как результат применен к состоянию или отброшен.
type Request struct {
	generation uint64
	done       chan struct{}
}

func (r *Request) Generation() uint64 {
	return r.generation
}

func (r *Request) Done() <-chan struct{} {
	return r.done
}

type Option func(*Lifecycle)

// WithLogger задает логгер автомата.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStateHook вызывается после асинхронного перехода Pending -> Succeeded/Failed.
func WithStateHook(hook func(State)) Option {
	return func(l *Lifecycle) {
		l.onState = hook
	}
}

// WithResolutionHook вызывается для каждого завершенного сетевого вызова.
func WithResolutionHook(hook func(Resolution)) Option {
	return func(l *Lifecycle) {
		l.onResolve = hook
	}
}

// Lifecycle допускает не более одного живого запроса. Результат применяется,
// только если поколение запроса совпадает с текущим.
type Lifecycle struct {
	fetcher   Fetcher
	logger    *slog.Logger
	onState   func(State)
	onResolve func(Resolution)

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      State
}

// NewLifecycle создает автомат в состоянии Idle.
func NewLifecycle(fetcher Fetcher, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		fetcher: fetcher,
		logger:  slog.Default(),
		state:   State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State возвращает текущий снимок состояния.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Fire запускает запрос. Живой запрос отменяется, его результат будет отброшен.
// Невалидные ограничения не меняют состояние и не приводят к сетевому вызову.
func (l *Lifecycle) Fire(ctx context.Context, query Query) (*Request, error) {
	if !query.Valid() {
		return nil, ErrInvalidTrigger
	}

	query = Query{EventID: query.EventID, CategoryIDs: append([]string(nil), query.CategoryIDs...)}

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	generation := l.generation
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = State{Status: StatusPending, Generation: generation, Query: query}
	l.mu.Unlock()

	req := &Request{generation: generation, done: make(chan struct{})}
	go l.run(reqCtx, cancel, req, query)

	return req, nil
}

// Abort отменяет живой запрос. Его результат будет применен как ошибка.
func (l *Lifecycle) Abort() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Status != StatusPending || l.cancel == nil {
		return false
	}
	l.cancel()
	return true
}

// Reset возвращает автомат в Idle при смене ограничений. Живой запрос вытесняется.
func (l *Lifecycle) Reset() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	if l.state.Status == StatusIdle {
		return false
	}

	l.generation++
	l.state = State{Status: StatusIdle, Generation: l.generation}
	return true
}

func (l *Lifecycle) run(ctx context.Context, cancel context.CancelFunc, req *Request, query Query) {
	defer close(req.done)

	started := time.Now()
	response, err := l.fetcher.FetchSuggestions(ctx, query)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	cancel()

	resolution := Resolution{
		Generation: req.generation,
		Query:      query,
		Err:        err,
		Latency:    time.Since(started),
	}

	l.mu.Lock()
	if req.generation != l.generation {
		l.mu.Unlock()

		resolution.Outcome = OutcomeSuperseded
		resolution.Err = nil
		l.logger.Debug("suggestions result discarded",
			slog.Uint64("generation", req.generation),
			slog.String("event_id", query.EventID),
		)
		l.resolved(resolution)
		return
	}

	l.cancel = nil
	if err != nil {
		l.state = State{
			Status:     StatusFailed,
			Generation: req.generation,
			Query:      query,
			Err:        err,
			Message:    MessageFor(err),
		}
		resolution.Outcome = OutcomeFailed
	} else {
		l.state = State{
			Status:     StatusSucceeded,
			Generation: req.generation,
			Query:      query,
			Response:   &response,
		}
		resolution.Outcome = OutcomeSucceeded
		resolution.Response = &response
	}
	state := l.state
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("suggestions request failed",
			slog.Uint64("generation", req.generation),
			slog.String("event_id", query.EventID),
			slog.String("error", err.Error()),
		)
	}

	if l.onState != nil {
		l.onState(state)
	}
	l.resolved(resolution)
}

func (l *Lifecycle) resolved(resolution Resolution) {
	if l.onResolve != nil {
		l.onResolve(resolution)
	}
}

type userMessager interface {
	UserMessage() string
}

// MessageFor формирует сообщение для пользователя из ошибки запроса.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}

	var messager userMessager
	if errors.As(err, &messager) {
		if message := strings.TrimSpace(messager.UserMessage()); message != "" {
			return message
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutErrorMessage
	case errors.Is(err, context.Canceled):
		return cancelledErrorMessage
	default:
		return DefaultErrorMessage
	}
}
