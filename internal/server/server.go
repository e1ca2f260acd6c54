package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/engine"
	"github.com/KaramelBytes/salesdash/internal/export"
	"github.com/KaramelBytes/salesdash/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options configures the HTTP adapter.
type Options struct {
	Logger     *logger.Logger
	Theme      dashboard.Theme
	AssetsHost string
}

// Server exposes an Engine over HTTP.
type Server struct {
	eng    *engine.Engine
	log    *logger.Logger
	opt    Options
	router chi.Router
}

// New wires the routes for eng.
func New(eng *engine.Engine, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = logger.Discard()
	}
	if opt.Theme == "" {
		opt.Theme = dashboard.Light
	}
	s := &Server{eng: eng, log: opt.Logger, opt: opt}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/dimensions", s.handleDimensions)
	r.Get("/api/run", s.handleRun)
	r.Get("/export.csv", s.handleExportCSV)
	r.Get("/export.xlsx", s.handleExportXLSX)
	r.Get("/", s.handleDashboard)
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithRequest(r).WithFields(logrus.Fields{
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	})
}

func (s *Server) handleDimensions(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string][]string, len(dataset.Dimensions))
	for _, d := range dataset.Dimensions {
		out[d.String()] = s.eng.DistinctValues(d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.run(w, r)
	if !ok {
		return
	}
	attachment(w, "text/csv; charset=utf-8", export.CSVFilename)
	_, _ = w.Write(snap.Export)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.run(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap.View); err != nil {
		s.log.WithRequest(r).WithError(err).Error("xlsx export failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	attachment(w, xlsxContentType, export.XLSXFilename)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.run(w, r)
	if !ok {
		return
	}
	theme := s.opt.Theme
	if t := r.URL.Query().Get("theme"); t != "" {
		theme = dashboard.ParseTheme(t)
	}
	var buf bytes.Buffer
	if err := dashboard.Render(&buf, snap, dashboard.Options{Theme: theme, AssetsHost: s.opt.AssetsHost}); err != nil {
		s.log.WithRequest(r).WithError(err).Error("dashboard render failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// run parses the selection from the query and executes one pass, writing an error
// response itself when it fails.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*engine.Snapshot, bool) {
	sel, err := ParseSelection(r.URL.Query(), s.eng.DefaultSelection())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	snap, err := s.eng.Run(sel)
	if err != nil {
		s.log.WithRequest(r).WithError(err).Error("pass failed")
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return snap, true
}

// ParseSelection overlays query parameters on base. A dimension parameter that is
// absent keeps base's values; one that is present replaces them, and a present but
// empty parameter (region=) selects nothing. none=<dim> also selects nothing.
func ParseSelection(q url.Values, base engine.Selection) (engine.Selection, error) {
	sel := base.Clone()
	for _, d := range dataset.FilterDimensions {
		raw, ok := q[d.String()]
		if !ok {
			continue
		}
		vals := make([]string, 0, len(raw))
		for _, v := range raw {
			if v != "" {
				vals = append(vals, v)
			}
		}
		sel.Set(d, vals)
	}
	for _, name := range q["none"] {
		d, err := dataset.ParseDimension(name)
		if err != nil {
			return engine.Selection{}, err
		}
		if d == dataset.Color {
			return engine.Selection{}, fmt.Errorf("dimension %s is not filterable", d)
		}
		sel.Set(d, nil)
	}
	return sel, nil
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
