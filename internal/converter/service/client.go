package service

import (
	"context"

	"github.com/langowen/fxconverter/internal/entities"
)

type RateClient interface {
	Fetch(ctx context.Context, base entities.CurrencyCode) (*entities.RateSnapshot, error)
}
