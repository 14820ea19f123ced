package entities

import "time"

// HistoryRecord is one successful conversion. Records are never mutated after
// they are appended to a session.
type HistoryRecord struct {
	Timestamp time.Time    `json:"timestamp"`
	From      CurrencyCode `json:"from"`
	To        CurrencyCode `json:"to"`
	Amount    float64      `json:"amount"`
	Converted float64      `json:"converted"`
	Rate      float64      `json:"rate"`
}
