package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
)

func newTestStorage(t *testing.T, ttl time.Duration) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := InitStorage(context.Background(), &redis.Options{Addr: mr.Addr()}, "fx:session:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Hour)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sess := session.New("abc", now)
	sess.Append(entities.HistoryRecord{Timestamp: now, From: entities.USD, To: entities.PKR, Amount: 10, Converted: 2785, Rate: 278.5})
	sess.StoreSnapshot(&entities.RateSnapshot{
		Base:       entities.USD,
		Rates:      map[string]float64{"PKR": 278.5},
		LastUpdate: "Mon, 19 Oct 2026 00:02:31 +0000",
		FetchedAt:  now,
	}, now)

	require.NoError(t, s.Save(ctx, sess))
	assert.True(t, mr.Exists("fx:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("fx:session:abc"))

	loaded, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, sess.History(), loaded.History())

	cached, ok := loaded.CachedSnapshot(entities.USD, now.Add(time.Minute), 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, 278.5, cached.Rates["PKR"])
}

func TestStorage_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Hour)

	_, err := s.Load(ctx, "nope")
	assert.True(t, errors.Is(err, entities.ErrSessionNotFound))

	require.NoError(t, s.Save(ctx, session.New("abc", time.Now())))
	require.NoError(t, s.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("fx:session:abc"))
}

func TestStorage_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Minute)

	require.NoError(t, s.Save(ctx, session.New("abc", time.Now())))
	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "abc")
	assert.True(t, errors.Is(err, entities.ErrSessionNotFound))
}

func TestStorage_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStorage(t, time.Minute)

	require.NoError(t, mr.Set("fx:session:bad", "{not json"))

	_, err := s.Load(ctx, "bad")
	assert.True(t, errors.Is(err, entities.ErrSessionNotFound))
}

func TestInitStorage_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := InitStorage(ctx, &redis.Options{Addr: addr, MaxRetries: -1}, "p:", time.Minute)
	assert.Error(t, err)
}
