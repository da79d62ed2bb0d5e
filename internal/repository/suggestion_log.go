package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"example.com/layali/planner-gateway/internal/suggestions"
	"example.com/layali/planner-gateway/internal/totals"
)

const MaxHistoryLimit = 100

// DBTX покрывает методы pgxpool.Pool, нужные репозиторию.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SuggestionRequestLog описывает завершенный запрос предложений.
type SuggestionRequestLog struct {
	ID           uuid.UUID           `json:"id"`
	SessionID    uuid.UUID           `json:"session_id"`
	UserID       string              `json:"user_id"`
	EventID      string              `json:"event_id"`
	CategoryIDs  []string            `json:"category_ids"`
	Generation   int64               `json:"generation"`
	Outcome      string              `json:"outcome"`
	ResponseKind *string             `json:"response_kind,omitempty"`
	Total        decimal.NullDecimal `json:"total"`
	ItemCount    int                 `json:"item_count"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	LatencyMS    int64               `json:"latency_ms"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewSuggestionRequestLog собирает запись лога из результата запроса.
func NewSuggestionRequestLog(sessionID uuid.UUID, userID string, resolution suggestions.Resolution) SuggestionRequestLog {
	log := SuggestionRequestLog{
		ID:          uuid.New(),
		SessionID:   sessionID,
		UserID:      userID,
		EventID:     resolution.Query.EventID,
		CategoryIDs: append([]string{}, resolution.Query.CategoryIDs...),
		Generation:  int64(resolution.Generation),
		Outcome:     string(resolution.Outcome),
		LatencyMS:   resolution.Latency.Milliseconds(),
	}

	if resolution.Outcome == suggestions.OutcomeSucceeded && resolution.Response != nil {
		kind := string(resolution.Response.Kind())
		log.ResponseKind = &kind
		log.ItemCount = resolution.Response.Len()
		log.Total = decimal.NewNullDecimal(totals.TotalPrice(*resolution.Response))
	}

	if resolution.Err != nil {
		message := resolution.Err.Error()
		log.ErrorMessage = &message
	}

	return log
}

type SuggestionLogRepository struct {
	db DBTX
}

// NewSuggestionLogRepository создает репозиторий лога запросов предложений.
func NewSuggestionLogRepository(db DBTX) *SuggestionLogRepository {
	return &SuggestionLogRepository{db: db}
}

// LogRequest сохраняет завершенный запрос предложений.
func (r *SuggestionLogRepository) LogRequest(ctx context.Context, log SuggestionRequestLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CategoryIDs == nil {
		log.CategoryIDs = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO suggestion_requests
		 (id, session_id, user_id, event_id, category_ids, generation, outcome, response_kind, total, item_count, error_message, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		log.ID,
		log.SessionID,
		log.UserID,
		log.EventID,
		log.CategoryIDs,
		log.Generation,
		log.Outcome,
		log.ResponseKind,
		log.Total,
		log.ItemCount,
		log.ErrorMessage,
		log.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("insert suggestion request: %w", err)
	}
	return nil
}

// ListRecent возвращает последние запросы пользователя, новые первыми.
func (r *SuggestionLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]SuggestionRequestLog, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, user_id, event_id, category_ids, generation, outcome, response_kind, total, item_count, error_message, latency_ms, created_at
		 FROM suggestion_requests
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]SuggestionRequestLog, 0)
	for rows.Next() {
		log, err := scanSuggestionRequest(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

// GetByID возвращает запись пользователя по идентификатору.
func (r *SuggestionLogRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (SuggestionRequestLog, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, session_id, user_id, event_id, category_ids, generation, outcome, response_kind, total, item_count, error_message, latency_ms, created_at
		 FROM suggestion_requests
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	log, err := scanSuggestionRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SuggestionRequestLog{}, ErrNotFound
		}
		return SuggestionRequestLog{}, err
	}
	return log, nil
}

func scanSuggestionRequest(row pgx.Row) (SuggestionRequestLog, error) {
	var log SuggestionRequestLog
	err := row.Scan(
		&log.ID,
		&log.SessionID,
		&log.UserID,
		&log.EventID,
		&log.CategoryIDs,
		&log.Generation,
		&log.Outcome,
		&log.ResponseKind,
		&log.Total,
		&log.ItemCount,
		&log.ErrorMessage,
		&log.LatencyMS,
		&log.CreatedAt,
	)
	return log, err
}
