package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/langowen/fxconverter/internal/converter/adapter/storage/memory"
	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
	"github.com/langowen/fxconverter/internal/metrics"
)

type MockRateClient struct {
	mock.Mock
}

func (m *MockRateClient) Fetch(ctx context.Context, base entities.CurrencyCode) (*entities.RateSnapshot, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RateSnapshot), args.Error(1)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func usdSnapshot() *entities.RateSnapshot {
	return &entities.RateSnapshot{
		Base:       entities.USD,
		Rates:      map[string]float64{"PKR": 278.50, "EUR": 0.92},
		LastUpdate: "Mon, 19 Oct 2026 00:02:31 +0000",
	}
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *MockRateClient, *memory.Storage, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStorage(time.Hour)
	client := &MockRateClient{}
	svc := NewService(store, client, metrics.NewMetrics(), ttl, WithClock(c.now))
	return svc, client, store, c
}

func TestService_Convert_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, client, _, c := newTestService(t, 10*time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil).Once()

	res, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 10})
	require.NoError(t, err)

	assert.Equal(t, 2785.00, res.Record.Converted)
	assert.Equal(t, 278.50, res.Record.Rate)
	assert.Equal(t, c.now(), res.Record.Timestamp)
	assert.Equal(t, "Mon, 19 Oct 2026 00:02:31 +0000", res.LastUpdate)
	assert.False(t, res.FromCache)
	assert.Equal(t, session.StateHasHistory, res.Session.State())
	client.AssertExpectations(t)
}

func TestService_Convert_AppendOnly(t *testing.T) {
	ctx := context.Background()
	svc, client, _, c := newTestService(t, 10*time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil)

	var previous []entities.HistoryRecord
	for i := 1; i <= 3; i++ {
		c.advance(time.Minute)
		res, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: float64(i)})
		require.NoError(t, err)

		history := res.Session.History()
		require.Len(t, history, i)
		assert.Equal(t, previous, history[:i-1], "earlier records are unchanged")
		assert.Equal(t, float64(i)*278.50, history[i-1].Converted)
		assert.Equal(t, i >= 2, res.Session.ChartVisible())

		previous = history
	}

	sess, err := svc.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, previous, sess.History())
}

func TestService_Convert_CacheWindow(t *testing.T) {
	ctx := context.Background()
	svc, client, _, c := newTestService(t, 10*time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil).Twice()

	req := ConvertRequest{From: entities.USD, To: entities.EUR, Amount: 1}

	res, err := svc.Convert(ctx, "s1", req)
	require.NoError(t, err)
	assert.False(t, res.FromCache)

	c.advance(9 * time.Minute)
	res, err = svc.Convert(ctx, "s1", req)
	require.NoError(t, err)
	assert.True(t, res.FromCache)

	c.advance(2 * time.Minute)
	res, err = svc.Convert(ctx, "s1", req)
	require.NoError(t, err)
	assert.False(t, res.FromCache, "expired entry triggers a new fetch")

	client.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestService_Convert_CacheIsPerSession(t *testing.T) {
	ctx := context.Background()
	svc, client, _, _ := newTestService(t, 10*time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil)

	req := ConvertRequest{From: entities.USD, To: entities.EUR, Amount: 1}
	_, err := svc.Convert(ctx, "a", req)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, "b", req)
	require.NoError(t, err)

	client.AssertNumberOfCalls(t, "Fetch", 2)

	a, err := svc.Session(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
}

func TestService_Convert_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	svc, client, _, _ := newTestService(t, 0)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil)

	req := ConvertRequest{From: entities.USD, To: entities.EUR, Amount: 1}
	for i := 0; i < 3; i++ {
		_, err := svc.Convert(ctx, "s1", req)
		require.NoError(t, err)
	}

	client.AssertNumberOfCalls(t, "Fetch", 3)
}

func TestService_Convert_Failures(t *testing.T) {
	testCases := []struct {
		name     string
		req      ConvertRequest
		fetchErr error
		wantErr  error
		kind     string
	}{
		{
			name:     "network failure",
			req:      ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 10},
			fetchErr: errors.Wrap(entities.ErrNetworkFailure, "bad status: 500 Internal Server Error"),
			wantErr:  entities.ErrNetworkFailure,
			kind:     "network_failure",
		},
		{
			name:    "target missing from mapping",
			req:     ConvertRequest{From: entities.USD, To: entities.CHF, Amount: 10},
			wantErr: entities.ErrDataUnavailable,
			kind:    "data_unavailable",
		},
		{
			name:    "negative amount",
			req:     ConvertRequest{From: entities.USD, To: entities.PKR, Amount: -5},
			wantErr: entities.ErrInvalidInput,
			kind:    "invalid_input",
		},
		{
			name:    "unsupported currency",
			req:     ConvertRequest{From: entities.CurrencyCode("XYZ"), To: entities.PKR, Amount: 1},
			wantErr: entities.ErrInvalidInput,
			kind:    "invalid_input",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, client, _, _ := newTestService(t, 10*time.Minute)
			if tc.fetchErr != nil {
				client.On("Fetch", mock.Anything, tc.req.From).Return(nil, tc.fetchErr)
			} else {
				client.On("Fetch", mock.Anything, tc.req.From).Return(usdSnapshot(), nil).Maybe()
			}

			res, err := svc.Convert(ctx, "s1", tc.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Equal(t, tc.kind, ErrorKind(err))

			sess, err := svc.Session(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 0, sess.Len(), "history unchanged")
			assert.Equal(t, session.StateIdle, sess.State())
		})
	}
}

func TestService_Convert_FailureKeepsExistingHistory(t *testing.T) {
	ctx := context.Background()
	svc, client, _, c := newTestService(t, time.Minute)

	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil).Once()
	_, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 1})
	require.NoError(t, err)

	c.advance(2 * time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(nil, errors.Wrap(entities.ErrNetworkFailure, "timeout")).Once()
	_, err = svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 2})
	require.Error(t, err)

	sess, err := svc.Session(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, sess.Len())
	assert.Equal(t, 1.0, sess.History()[0].Amount)
}

func TestService_EndSession(t *testing.T) {
	ctx := context.Background()
	svc, client, store, _ := newTestService(t, time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil)

	_, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 1})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, svc.EndSession(ctx, "s1"))

	sess, err := svc.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.StateIdle, sess.State())
	assert.Equal(t, 0, store.Len())
}

func TestService_Convert_SameSessionIsSerialised(t *testing.T) {
	ctx := context.Background()
	svc, client, _, _ := newTestService(t, 0)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Convert(ctx, "shared", ConvertRequest{From: entities.USD, To: entities.EUR, Amount: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := svc.Session(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 20, sess.Len(), "no lost updates")
}

type failingSaveStorage struct {
	Storage
}

func (failingSaveStorage) Save(context.Context, *session.Session) error {
	return errors.New("storage down")
}

func TestService_Convert_CacheSaveFailureKeepsCalculateError(t *testing.T) {
	client := &MockRateClient{}
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil).Once()
	store := failingSaveStorage{Storage: memory.NewStorage(time.Hour)}
	svc := NewService(store, client, metrics.NewMetrics(), 10*time.Minute)

	_, err := svc.Convert(context.Background(), "s1", ConvertRequest{From: entities.USD, To: entities.CHF, Amount: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrDataUnavailable), "got %v", err)
	client.AssertExpectations(t)
}

func TestService_Convert_OverflowLeavesSessionUsable(t *testing.T) {
	ctx := context.Background()
	svc, client, _, _ := newTestService(t, 10*time.Minute)
	client.On("Fetch", mock.Anything, entities.USD).Return(usdSnapshot(), nil).Once()

	_, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 1e308})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrInvalidInput), "got %v", err)

	res, err := svc.Convert(ctx, "s1", ConvertRequest{From: entities.USD, To: entities.PKR, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.Len())
	assert.True(t, res.FromCache)
}
