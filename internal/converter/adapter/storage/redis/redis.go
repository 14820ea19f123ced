package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
)

// Storage keeps one JSON document per session under prefix+id. The key TTL is
// the session idle timeout and is refreshed on every load and save.
type Storage struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewStorage(client redis.UniversalClient, prefix string, ttl time.Duration) *Storage {
	return &Storage{
		rdb:    client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func InitStorage(ctx context.Context, options *redis.Options, prefix string, ttl time.Duration) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(redisClient, prefix, ttl), nil
}

func (s *Storage) key(id string) string {
	return s.prefix + id
}

func (s *Storage) Load(ctx context.Context, id string) (*session.Session, error) {
	const op = "storage.redis.Load"

	val, err := s.rdb.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(entities.ErrSessionNotFound, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var sess session.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		slog.Error("corrupt session document", "op", op, "session", id, "error", err)
		return nil, errors.Wrap(entities.ErrSessionNotFound, op)
	}
	if sess.Rates == nil {
		sess.Rates = make(map[entities.CurrencyCode]session.CachedRate)
	}

	return &sess, nil
}

func (s *Storage) Save(ctx context.Context, sess *session.Session) error {
	const op = "storage.redis.Save"

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	const op = "storage.redis.Delete"

	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
