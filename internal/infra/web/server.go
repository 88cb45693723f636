package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"decor-studio/internal/poller"
	"decor-studio/internal/usecase"
)

// IntakeHandler claims a pending job for processing. The processor in
// infra/worker is the production implementation.
type IntakeHandler interface {
	Intake(ctx context.Context, jobID string) error
}

// ResultAwaiter blocks until a job is terminal and, for completed jobs, its
// side effects are settled. The poller package is the production
// implementation.
type ResultAwaiter interface {
	Poll(ctx context.Context, jobID string) (*poller.Result, error)
}

type Server struct {
	jobUC    usecase.JobUseCase
	creditUC usecase.CreditUseCase
	intake   IntakeHandler
	awaiter  ResultAwaiter
	log      *zerolog.Logger
}

func NewServer(
	jobUC usecase.JobUseCase,
	creditUC usecase.CreditUseCase,
	intake IntakeHandler,
	awaiter ResultAwaiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		jobUC:    jobUC,
		creditUC: creditUC,
		intake:   intake,
		awaiter:  awaiter,
		log:      logger,
	}
}

// Router builds the full route tree, including health and metrics.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/jobs", s.handleSubmit)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Get("/jobs/{jobID}/result", s.handleAwaitResult)
	r.Post("/internal/process", s.handleProcess)
	r.Get("/credits", s.handleBalance)
	r.Post("/credits/deduct", s.handleDeduct)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Msg("http request")
	})
}
