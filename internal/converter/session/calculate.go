package session

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/langowen/fxconverter/internal/entities"
)

// Calculate converts amount of snapshot.Base into target. The returned record
// keeps full float64 precision; rounding is a presentation concern.
func Calculate(snapshot *entities.RateSnapshot, target entities.CurrencyCode, amount float64, now time.Time) (entities.HistoryRecord, error) {
	const op = "session.Calculate"

	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return entities.HistoryRecord{}, errors.Wrapf(entities.ErrInvalidInput, "%s: amount %v", op, amount)
	}

	rate, ok := snapshot.Rate(target)
	if !ok {
		return entities.HistoryRecord{}, errors.Wrapf(entities.ErrDataUnavailable, "%s: no rate for %s", op, target)
	}

	converted := amount * rate
	if math.IsNaN(converted) || math.IsInf(converted, 0) {
		return entities.HistoryRecord{}, errors.Wrapf(entities.ErrInvalidInput, "%s: amount %v overflows at rate %v", op, amount, rate)
	}

	return entities.HistoryRecord{
		Timestamp: now,
		From:      snapshot.Base,
		To:        target,
		Amount:    amount,
		Converted: converted,
		Rate:      rate,
	}, nil
}
