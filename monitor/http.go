package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/selector"
)

// Handler builds the HTTP surface: artifacts under /screenshots/ and a
// small JSON API under /api/.
func (m *Monitor) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Artifacts are served straight from the cache directory under their
	// logical path.
	r.Handle("/screenshots/*", http.StripPrefix("/screenshots/",
		http.FileServer(http.Dir(m.cfg.CacheDir))))

	r.Get("/api/captures", m.handleListCaptures)
	r.Get("/api/stats", m.handleStats)
	r.Post("/api/capture", m.handleCapture)
	r.Post("/api/sweep", m.handleSweep)

	return r
}

// Serve runs the HTTP server until ctx is cancelled. Addr "off" disables
// the surface entirely.
func (m *Monitor) Serve(ctx context.Context) error {
	if m.cfg.HTTP.Addr == "off" {
		return nil
	}

	srv := &http.Server{
		Addr:              m.cfg.HTTP.Addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	m.logger.Info("monitor: http listening", "addr", m.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *Monitor) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := m.Captures(r.Context(), r.URL.Query().Get("page"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (m *Monitor) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := m.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type captureRequest struct {
	URL      string   `json:"url"`
	Selector []string `json:"selector,omitempty"`
	FullPage bool     `json:"full_page,omitempty"`
	Format   string   `json:"format,omitempty"`
	Quality  int      `json:"quality,omitempty"`
}

func (m *Monitor) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	res := m.CaptureURL(r.Context(), req.URL, selector.NewChain(req.Selector...), capture.ImageOptions{
		Format:   req.Format,
		Quality:  req.Quality,
		FullPage: req.FullPage,
	})
	writeJSON(w, http.StatusOK, res)
}

func (m *Monitor) handleSweep(w http.ResponseWriter, r *http.Request) {
	removed, pruned := m.Sweep(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"pruned":  pruned,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("monitor: write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
