package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry хранит открытые экранные сессии пользователей в памяти процесса.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	idleTTL  time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

// NewRegistry создает реестр сессий с заданным временем простоя.
func NewRegistry(idleTTL time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		idleTTL:  idleTTL,
		clock:    time.Now,
		logger:   logger,
	}
}

// Add регистрирует сессию.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = s
}

// Get возвращает сессию владельца.
func (r *Registry) Get(id uuid.UUID, ownerID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return s, nil
}

// Delete закрывает и удаляет сессию владельца.
func (r *Registry) Delete(id uuid.UUID, ownerID string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if s.OwnerID != ownerID {
		r.mu.Unlock()
		return ErrForbidden
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.Close()
	return nil
}

// ForOwner возвращает все сессии пользователя.
func (r *Registry) ForOwner(ownerID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0)
	for _, s := range r.sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Sweep закрывает сессии, простаивающие дольше idleTTL.
func (r *Registry) Sweep() int {
	cutoff := r.clock().Add(-r.idleTTL)

	r.mu.Lock()
	expired := make([]*Session, 0)
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}

	if len(expired) > 0 {
		r.logger.Info("idle sessions closed", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run периодически вызывает Sweep до отмены контекста.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
