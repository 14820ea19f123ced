package entities

import "time"

// RateSnapshot is the result of one provider call for a single base currency.
type RateSnapshot struct {
	Base       CurrencyCode       `json:"base"`
	Rates      map[string]float64 `json:"rates"`
	LastUpdate string             `json:"last_update"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

func NewRateSnapshot(base CurrencyCode, rates map[string]float64, lastUpdate string, fetchedAt time.Time) (*RateSnapshot, error) {
	if len(rates) == 0 {
		return nil, ErrDataUnavailable
	}

	copied := make(map[string]float64, len(rates))
	for code, value := range rates {
		copied[code] = value
	}

	return &RateSnapshot{
		Base:       base,
		Rates:      copied,
		LastUpdate: lastUpdate,
		FetchedAt:  fetchedAt,
	}, nil
}

// Rate returns the multiplier for target, false if the provider did not quote it.
func (s *RateSnapshot) Rate(target CurrencyCode) (float64, bool) {
	if s == nil {
		return 0, false
	}
	rate, ok := s.Rates[target.String()]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}
