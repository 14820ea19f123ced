package public

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/langowen/fxconverter/deploy/config"
	mwLogger "github.com/langowen/fxconverter/internal/converter/ports/http/public/middleware/logger"
	"github.com/langowen/fxconverter/internal/converter/ports/http/public/middleware/sessionid"
	"github.com/langowen/fxconverter/internal/metrics"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type Server struct {
	Server   *http.Server
	cfg      *config.Config
	service  Service
	metrics  *metrics.Metrics
	cookie   *sessionid.Cookie
	validate *validator.Validate
}

func NewServer(cfg *config.Config, service Service, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		metrics:  m,
		cookie:   sessionid.New(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.CookieSecure),
		validate: newValidator(),
	}

	s.Server = &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      s.Router(),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(instrument(s.metrics))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/health", s.Health)

	r.Group(func(r chi.Router) {
		r.Use(s.cookie.Handler)

		r.Get("/", s.Index)
		r.Post("/convert", s.Convert)
		r.Post("/session/end", s.EndSession)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/currencies", s.Currencies)
			r.Post("/convert", s.ConvertJSON)
			r.Get("/history", s.History)
		})
	})

	return r
}

func StartServer(ctx context.Context, service Service, m *metrics.Metrics, cfg *config.Config) <-chan struct{} {
	server := NewServer(cfg, service, m)

	doneChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "addr", server.Server.Addr)
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func sessionID(r *http.Request) string {
	id, _ := sessionid.FromContext(r.Context())
	return id
}
