package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
	"github.com/langowen/fxconverter/internal/metrics"
)

type ConvertRequest struct {
	From   entities.CurrencyCode
	To     entities.CurrencyCode
	Amount float64
}

type ConvertResult struct {
	Record     entities.HistoryRecord
	LastUpdate string
	FromCache  bool
	Session    *session.Session
}

type Service struct {
	storage  Storage
	client   RateClient
	metrics  *metrics.Metrics
	cacheTTL time.Duration
	now      func() time.Time
	locks    keyedLock
}

type Option func(s *Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(storage Storage, client RateClient, m *metrics.Metrics, cacheTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		client:   client,
		metrics:  m,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the caller's session, or a fresh Idle one if none is stored.
// Nothing is written.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	const op = "service.Session"

	sess, err := s.storage.Load(ctx, id)
	if errors.Is(err, entities.ErrSessionNotFound) {
		return session.New(id, s.now()), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return sess, nil
}

// Convert is the only operation that mutates a session. The history is
// appended to only after the rate is known and the record is built, so any
// failure leaves the stored session untouched.
func (s *Service) Convert(ctx context.Context, id string, req ConvertRequest) (*ConvertResult, error) {
	const op = "service.Convert"

	result, err := s.convert(ctx, id, req)
	s.metrics.ConversionsTotal.WithLabelValues(ErrorKind(err)).Inc()
	if err != nil {
		slog.Warn("conversion failed", "op", op, "session", id, "from", req.From, "to", req.To, "kind", ErrorKind(err), "error", err)
		return nil, err
	}

	slog.Info("conversion recorded",
		"op", op,
		"session", id,
		"from", req.From,
		"to", req.To,
		"rate", result.Record.Rate,
		"cached", result.FromCache,
		"history_len", result.Session.Len(),
	)

	return result, nil
}

func (s *Service) convert(ctx context.Context, id string, req ConvertRequest) (*ConvertResult, error) {
	const op = "service.convert"

	if !req.From.IsSupported() || !req.To.IsSupported() {
		return nil, errors.Wrapf(entities.ErrInvalidInput, "%s: unsupported pair %s/%s", op, req.From, req.To)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	snapshot, fromCache, err := s.rates(ctx, sess, req.From)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	record, err := session.Calculate(snapshot, req.To, req.Amount, s.now())
	if err != nil {
		if !fromCache {
			// the fetch itself succeeded, keep it for the next attempt
			if saveErr := s.storage.Save(ctx, sess); saveErr != nil {
				slog.Warn("failed to keep fetched rates", "op", op, "session", id, "error", saveErr)
			}
		}
		return nil, errors.Wrap(err, op)
	}

	sess.Append(record)

	if err := s.storage.Save(ctx, sess); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &ConvertResult{
		Record:     record,
		LastUpdate: snapshot.LastUpdate,
		FromCache:  fromCache,
		Session:    sess,
	}, nil
}

// rates checks the session cache and refreshes it from the provider on a miss.
func (s *Service) rates(ctx context.Context, sess *session.Session, base entities.CurrencyCode) (*entities.RateSnapshot, bool, error) {
	const op = "service.rates"

	now := s.now()
	if s.cacheTTL > 0 {
		if snapshot, ok := sess.CachedSnapshot(base, now, s.cacheTTL); ok {
			s.metrics.RateCacheLookups.WithLabelValues("hit").Inc()
			slog.Debug("rate cache hit", "op", op, "session", sess.ID, "base", base)
			return snapshot, true, nil
		}
		s.metrics.RateCacheLookups.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	snapshot, err := s.client.Fetch(ctx, base)
	s.metrics.RateFetchDuration.Observe(time.Since(start).Seconds())
	s.metrics.RateFetchTotal.WithLabelValues(ErrorKind(err)).Inc()
	if err != nil {
		return nil, false, errors.Wrap(err, op)
	}

	if s.cacheTTL > 0 {
		sess.StoreSnapshot(snapshot, now)
	}

	return snapshot, false, nil
}

// EndSession tears the session down; the next visit starts Idle.
func (s *Service) EndSession(ctx context.Context, id string) error {
	const op = "service.EndSession"

	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.storage.Delete(ctx, id); err != nil {
		return errors.Wrap(err, op)
	}

	slog.Info("session ended", "op", op, "session", id)

	return nil
}

// ErrorKind names the error class for metrics, logs and API responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entities.ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, entities.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, entities.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
