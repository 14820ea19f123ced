package service

import (
	"context"

	"github.com/langowen/fxconverter/internal/converter/session"
)

type Storage interface {
	Load(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, sess *session.Session) error
	Delete(ctx context.Context, id string) error
}
