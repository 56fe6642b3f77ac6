package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/MikeSquared-Agency/leadlens/internal/export"
	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
	"github.com/MikeSquared-Agency/leadlens/internal/processor"
	"github.com/MikeSquared-Agency/leadlens/internal/report"
)

// Deps are the collaborators the HTTP surface serves.
type Deps struct {
	Processor *processor.Processor
	Reports   *report.Writer
	Exporter  *export.Exporter
	Settings  SettingsStore // nil keeps settings in memory
	Defaults  Defaults
	MaxUpload int64
	Logger    *slog.Logger
}

// Defaults apply when a setting has never been stored.
type Defaults struct {
	AvgTicket    decimal.Decimal
	ReportAPIKey string
}

type Server struct {
	router    *chi.Mux
	httpSrv   *http.Server
	proc      *processor.Processor
	agg       *kpi.Aggregator
	reports   *report.Writer
	exporter  *export.Exporter
	settings  SettingsStore
	defaults  Defaults
	maxUpload int64
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewServer(port int, apiToken string, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	settings := deps.Settings
	if settings == nil {
		settings = newMemorySettings()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:    router,
		proc:      deps.Processor,
		agg:       kpi.NewAggregator(deps.Processor.Parser()),
		reports:   deps.Reports,
		exporter:  deps.Exporter,
		settings:  settings,
		defaults:  deps.Defaults,
		maxUpload: deps.MaxUpload,
		validate:  validator.New(),
		logger:    logger,
	}
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Five reports per minute per client.
	reportLimiter := NewIPRateLimiter(rate.Limit(5.0/60.0), 5, logger)

	router.Get("/health", s.health)
	router.Get("/api/v1/leadlens/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/kpis", s.kpis)
		r.Get("/comparison", s.comparison)
		r.Get("/exports/leads.csv", s.exportLeads)
		r.Get("/settings", s.getSettings)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(apiToken))
			r.Post("/chats/upload", s.upload)
			r.Delete("/chats", s.clear)
			r.With(reportLimiter.Middleware).Post("/report", s.report)
			r.Put("/settings", s.putSettings)
		})
	})

	return s
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.proc.Current()
	body := map[string]any{
		"service": "leadlens",
		"chats":   len(snap.Chats),
	}
	if !snap.IngestedAt.IsZero() {
		body["snapshot_id"] = snap.ID.String()
		body["ingested_at"] = snap.IngestedAt
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
