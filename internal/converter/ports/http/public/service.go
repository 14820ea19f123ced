package public

import (
	"context"

	"github.com/langowen/fxconverter/internal/converter/service"
	"github.com/langowen/fxconverter/internal/converter/session"
)

type Service interface {
	Session(ctx context.Context, id string) (*session.Session, error)
	Convert(ctx context.Context, id string, req service.ConvertRequest) (*service.ConvertResult, error)
	EndSession(ctx context.Context, id string) error
}
