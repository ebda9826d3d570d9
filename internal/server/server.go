// Package server exposes the validation pipeline over HTTP for CI hooks
// and the marketplace submission bot.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkarlsen/subvet/internal/pipeline"
	"github.com/mkarlsen/subvet/internal/scanner"
	"github.com/mkarlsen/subvet/internal/submission"
)

// maxRequestBody caps the request read well above the content size policy
// limit so the policy check produces the authoritative rejection.
const maxRequestBody = 1 << 20

type Server struct {
	opts   pipeline.Options
	log    *zap.SugaredLogger
	router *mux.Router
}

func New(opts pipeline.Options, log *zap.SugaredLogger) *Server {
	s := &Server{opts: opts, log: log, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/v1/validate", s.handleValidate).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Infow("listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		validationErrors.Inc()
		s.writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	doc, err := submission.Parse(raw)
	if err != nil {
		validationErrors.Inc()
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := pipeline.Run(r.Context(), doc, s.opts)
	if err != nil {
		validationErrors.Inc()
		if errors.Is(err, scanner.ErrContentTooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.log.Errorw("validation failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	validationsTotal.WithLabelValues(report.Verdict.Decision).Inc()
	validationDuration.Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		s.log.Errorw("write response", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"rules":  len(s.opts.Rules),
		"index":  s.opts.Index.Len(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
