package converterApp

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	redisPack "github.com/redis/go-redis/v9"

	"github.com/langowen/fxconverter/deploy/config"
	"github.com/langowen/fxconverter/internal/converter/adapter/api_client/open_er"
	"github.com/langowen/fxconverter/internal/converter/adapter/storage/memory"
	"github.com/langowen/fxconverter/internal/converter/adapter/storage/redis"
	"github.com/langowen/fxconverter/internal/converter/ports/http/public"
	"github.com/langowen/fxconverter/internal/converter/service"
	"github.com/langowen/fxconverter/internal/metrics"
)

const janitorInterval = time.Minute

type ConverterApp struct {
	cfg     *config.Config
	closers []func() error
}

func NewConverterApp(cfg *config.Config) *ConverterApp {
	return &ConverterApp{cfg: cfg}
}

func (a *ConverterApp) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting server")

	m := metrics.NewMetrics()

	storage := a.initStorage(ctx)
	slog.Info("Storage initialized", "store", a.cfg.Session.Store)

	client := a.initClient()
	slog.Info("Rate client initialized", "url", a.cfg.Fetcher.URL)

	converter := service.NewService(storage, client, m, a.cfg.Cache.TTL)
	slog.Info("Service initialized")

	serverDone := public.StartServer(ctx, converter, m, a.cfg)
	slog.Info("server started")

	done := make(chan struct{})
	go func() {
		<-serverDone
		for _, closeFn := range a.closers {
			if err := closeFn(); err != nil {
				slog.Error("Failed to close resource", "error", err)
			}
		}
		close(done)
	}()

	return done
}

func (a *ConverterApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     a.cfg.LogLevel(),
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *ConverterApp) initStorage(ctx context.Context) service.Storage {
	if a.cfg.Session.Store == config.StoreRedis {
		return a.initRedis(ctx)
	}

	storage := memory.NewStorage(a.cfg.Session.TTL)
	go storage.RunJanitor(ctx, janitorInterval)

	return storage
}

func (a *ConverterApp) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options, a.cfg.Redis.Prefix, a.cfg.Session.TTL)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}
	a.closers = append(a.closers, rdStorage.Close)

	return rdStorage
}

func (a *ConverterApp) initClient() *open_er.HTTPClient {
	return open_er.NewHTTPClient(a.cfg.Fetcher.URL, a.cfg.Fetcher.Timeout)
}
