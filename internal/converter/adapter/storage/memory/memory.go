package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
)

type entry struct {
	session   *session.Session
	expiresAt time.Time
}

// Storage keeps sessions in process memory. Sessions are copied on the way in
// and out, so no two requests ever share a *session.Session.
type Storage struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewStorage(ttl time.Duration) *Storage {
	return &Storage{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Storage) Load(ctx context.Context, id string) (*session.Session, error) {
	const op = "storage.memory.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrap(entities.ErrSessionNotFound, op)
	}

	now := s.now()
	if !now.Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil, errors.Wrap(entities.ErrSessionNotFound, op)
	}

	e.expiresAt = now.Add(s.ttl)
	s.sessions[id] = e

	return e.session.Clone(), nil
}

func (s *Storage) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = entry{
		session:   sess.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)

	return nil
}

func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// ClearExpired drops every session idle for longer than the TTL.
func (s *Storage) ClearExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *Storage) RunJanitor(ctx context.Context, interval time.Duration) {
	const op = "storage.memory.RunJanitor"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.ClearExpired(ctx); n > 0 {
				slog.Debug("expired sessions removed", "op", op, "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
