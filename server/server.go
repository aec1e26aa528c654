// Package server publishes the latest ARR computation over HTTP.
//
// The server holds at most one published result. A refresh recomputes the
// rollforward from the ledger source and only replaces the published result
// when the new one is authoritative, so that dashboards never switch to
// numbers that failed reconciliation.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/etnz/arr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoResult is returned while no result has been published yet.
var ErrNoResult = eris.New("no ARR result has been published")

// Server serves the published result of the engine.
type Server struct {
	source  arr.LedgerSource
	opts    arr.Options
	origins []string
	log     *zap.Logger

	published atomic.Pointer[arr.Result]
	refresh   sync.Mutex // serializes refreshes
}

// New creates a server computing results from 'source'. Nothing is published
// until the first Refresh.
func New(source arr.LedgerSource, opts arr.Options, origins []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{source: source, opts: opts, origins: origins, log: log}
}

// Result returns the published result.
func (s *Server) Result() (*arr.Result, error) {
	res := s.published.Load()
	if res == nil {
		return nil, ErrNoResult
	}
	return res, nil
}

// Refresh recomputes the result from the source.
//
// A non authoritative result is published only when nothing was published
// before or when 'force' is set. The computed result is returned in any case,
// along with whether it was published.
func (s *Server) Refresh(ctx context.Context, force bool) (*arr.Result, bool, error) {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	ledger, err := s.source.Load(ctx)
	if err != nil {
		return nil, false, eris.Wrap(err, "failed to load ledger")
	}
	opts := s.opts
	opts.Logger = s.log
	res, err := arr.Compute(ctx, ledger, opts)
	if err != nil {
		return nil, false, eris.Wrap(err, "failed to compute rollforward")
	}

	current := s.published.Load()
	if !res.Authoritative && current != nil && !force {
		s.log.Warn("keeping the published result, the new one is not authoritative",
			zap.Stringer("through", res.Through),
			zap.Int("findings", len(res.Findings)))
		return res, false, nil
	}
	s.published.Store(res)
	s.log.Info("published ARR result",
		zap.Stringer("through", res.Through),
		zap.Bool("authoritative", res.Authoritative),
		zap.Stringer("arr", res.KPIs.CurrentARR))
	return res, true, nil
}

// Handler returns the http routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         3600,
	}))

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/kpis", s.kpis)
		r.Get("/waterfall", s.waterfall)
		r.Get("/trend", s.trend)
		r.Get("/segments", s.segments)
		r.Get("/findings", s.findings)
		r.Get("/rollforward", s.rollforward)
		r.Get("/result", s.result)
		r.Post("/refresh", s.refreshHandler)
	})
	return r
}

// logRequests logs every request once served.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on 'addr' until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrapf(err, "failed to listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "failed to shut down server")
	}
	return nil
}
