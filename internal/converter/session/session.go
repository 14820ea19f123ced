// Package session holds everything that belongs to one user's visit: the
// append-only conversion history and the short-lived rate cache.
package session

import (
	"time"

	"github.com/langowen/fxconverter/internal/entities"
)

type State string

const (
	StateIdle       State = "idle"
	StateHasHistory State = "has_history"
)

// ChartWindow is how many of the newest records the trend chart plots.
const ChartWindow = 5

// ChartMinRecords is the history length at which the chart appears.
const ChartMinRecords = 2

type CachedRate struct {
	Snapshot entities.RateSnapshot `json:"snapshot"`
	StoredAt time.Time             `json:"stored_at"`
}

// Session is owned by a single writer at a time; the service serialises
// access per ID. Fields are exported for the storage adapters only.
type Session struct {
	ID        string                               `json:"id"`
	CreatedAt time.Time                            `json:"created_at"`
	Records   []entities.HistoryRecord             `json:"records"`
	Rates     map[entities.CurrencyCode]CachedRate `json:"rates"`
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Rates:     make(map[entities.CurrencyCode]CachedRate),
	}
}

func (s *Session) State() State {
	if len(s.Records) == 0 {
		return StateIdle
	}
	return StateHasHistory
}

func (s *Session) Len() int {
	return len(s.Records)
}

func (s *Session) Append(record entities.HistoryRecord) {
	s.Records = append(s.Records, record)
}

// History returns the records in insertion order. The slice is a copy.
func (s *Session) History() []entities.HistoryRecord {
	out := make([]entities.HistoryRecord, len(s.Records))
	copy(out, s.Records)
	return out
}

func (s *Session) ChartVisible() bool {
	return len(s.Records) >= ChartMinRecords
}

// ChartRecords returns the newest min(len, ChartWindow) records, oldest first,
// or nil when the chart is hidden.
func (s *Session) ChartRecords() []entities.HistoryRecord {
	if !s.ChartVisible() {
		return nil
	}
	start := len(s.Records) - ChartWindow
	if start < 0 {
		start = 0
	}
	out := make([]entities.HistoryRecord, len(s.Records)-start)
	copy(out, s.Records[start:])
	return out
}

// CachedSnapshot returns the snapshot for base if it was stored less than ttl
// before now.
func (s *Session) CachedSnapshot(base entities.CurrencyCode, now time.Time, ttl time.Duration) (*entities.RateSnapshot, bool) {
	entry, ok := s.Rates[base]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.StoredAt) >= ttl {
		return nil, false
	}
	snapshot := entry.Snapshot
	return &snapshot, true
}

func (s *Session) StoreSnapshot(snapshot *entities.RateSnapshot, now time.Time) {
	if s.Rates == nil {
		s.Rates = make(map[entities.CurrencyCode]CachedRate)
	}
	s.Rates[snapshot.Base] = CachedRate{
		Snapshot: *snapshot,
		StoredAt: now,
	}
}

// Clone deep-copies the session so stores never share memory with callers.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Records:   s.History(),
		Rates:     make(map[entities.CurrencyCode]CachedRate, len(s.Rates)),
	}
	for base, entry := range s.Rates {
		rates := make(map[string]float64, len(entry.Snapshot.Rates))
		for code, value := range entry.Snapshot.Rates {
			rates[code] = value
		}
		entry.Snapshot.Rates = rates
		out.Rates[base] = entry
	}
	return out
}
