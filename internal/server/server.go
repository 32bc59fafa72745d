// Package server exposes dungeon generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/generator"
	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/ui"
)

// MaxCandidates bounds the candidates query parameter.
const MaxCandidates = 256

// Server serves generated dungeons. Every request runs its own generator.
type Server struct {
	router chi.Router
	cfg    *config.Config
	opts   generator.Options
	log    *zap.Logger
}

// New creates a server over cfg. opts supplies defaults that query
// parameters may override.
func New(cfg *config.Config, opts generator.Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		opts:   opts,
		log:    logging.OrNop(opts.Logger),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.health)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/dungeon", s.dungeonJSON)
		r.Get("/dungeon.txt", s.dungeonText)
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) dungeonJSON(w http.ResponseWriter, r *http.Request) {
	report, ok := s.generate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *Server) dungeonText(w http.ResponseWriter, r *http.Request) {
	report, ok := s.generate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := ui.WriteReport(w, report.Dungeon); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

// generate runs one selection from the request's query parameters. It
// writes the error response itself and reports whether the caller should
// continue.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (generator.Report, bool) {
	opts, seed, err := s.requestOptions(r)
	if err != nil {
		renderError(w, http.StatusBadRequest, err)
		return generator.Report{}, false
	}

	rng, runSeed, err := generator.NewRand(seed)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err)
		return generator.Report{}, false
	}

	out, err := generator.FromConfig(s.cfg, opts).Best(r.Context(), rng)
	if err != nil {
		s.log.Error("generate dungeon", zap.Int64("run_seed", runSeed), zap.Error(err))
		renderError(w, http.StatusInternalServerError, err)
		return generator.Report{}, false
	}
	return out.Report(runSeed), true
}

func (s *Server) requestOptions(r *http.Request) (generator.Options, int64, error) {
	opts := s.opts
	q := r.URL.Query()

	var seed int64
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, 0, fmt.Errorf("invalid seed %q", v)
		}
		seed = n
	}
	if v := q.Get("candidates"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxCandidates {
			return opts, 0, fmt.Errorf("candidates must be between 1 and %d", MaxCandidates)
		}
		opts.Candidates = n
	}
	opts.NoNarrative = true
	if v := q.Get("narrate"); v != "" {
		narrate, err := strconv.ParseBool(v)
		if err != nil {
			return opts, 0, fmt.Errorf("invalid narrate %q", v)
		}
		opts.NoNarrative = !narrate || s.opts.NoNarrative
	}
	return opts, seed, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func renderError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    http.StatusText(status),
	})
}
