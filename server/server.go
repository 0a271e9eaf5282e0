// Package server exposes the controller as a small HTTP preview API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ByLCY/mdpages/app"
	"github.com/ByLCY/mdpages/layout"
)

// maxMarkdownBytes caps PUT /api/markdown bodies.
const maxMarkdownBytes = 1 << 20

// Server routes preview requests to a single Controller.
type Server struct {
	ctrl   *app.Controller
	logger *slog.Logger
	router *chi.Mux
}

// New builds the router for ctrl.
func New(ctrl *app.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ctrl: ctrl, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Get("/state", s.handleState)
		r.Put("/markdown", s.handleMarkdown)
		r.Put("/settings", s.handleSettings)
		r.Put("/page/{index}", s.handleSelectPage)
		r.Get("/page.png", s.handleCurrentPNG)
		r.Get("/pages/{index}.png", s.handlePagePNG)
		r.Get("/layout", s.handleLayout)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stopping preview server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type presetsResponse struct {
	AspectRatios []string `json:"aspectRatios"`
	MinFontSize  int      `json:"minFontSize"`
	MaxFontSize  int      `json:"maxFontSize"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{
		AspectRatios: layout.AspectRatios(),
		MinFontSize:  layout.MinFontSize,
		MaxFontSize:  layout.MaxFontSize,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMarkdownBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if err := s.ctrl.SetMarkdown(string(body)); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

type settingsRequest struct {
	AspectRatio *string `json:"aspectRatio"`
	FontSize    *int    `json:"fontSize"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid settings: %w", err))
		return
	}
	if req.AspectRatio != nil {
		if err := s.ctrl.SetAspectRatio(*req.AspectRatio); err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
	}
	if req.FontSize != nil {
		if err := s.ctrl.SetFontSize(*req.FontSize); err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	index, err := pageParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.ctrl.SelectPage(index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleCurrentPNG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := s.ctrl.WriteCurrentPage(w); err != nil {
		s.logger.Error("write page failed", "error", err)
	}
}

func (s *Server) handlePagePNG(w http.ResponseWriter, r *http.Request) {
	index, err := pageParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// 先写入内存，出错时仍可返回 JSON 错误。
	var buf bytes.Buffer
	if err := s.ctrl.WritePage(&buf, index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", app.PageFilename(index)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.ctrl.Layout()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := layout.EncodeDebugJSON(w, res); err != nil {
		s.logger.Error("encode layout failed", "error", err)
	}
}

func pageParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", app.ErrInvalidPage, raw)
	}
	return index, nil
}

// statusFor maps validation errors to 400 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, layout.ErrUnknownAspectRatio),
		errors.Is(err, layout.ErrFontSizeOutOfRange),
		errors.Is(err, app.ErrInvalidPage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
