// Package api отдаёт расписание недели по HTTP только для чтения
package api

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Display источник данных расписания
type Display interface {
	BuildView(ctx context.Context) (*model.WeekView, error)
	Pointer(ctx context.Context) (*model.DisplayPointer, error)
}

// HealthCheck проверка зависимости, например ping базы
type HealthCheck func(ctx context.Context) error

type Handler struct {
	display Display
	checks  map[string]HealthCheck
	logger  *zap.Logger

	Mux *chi.Mux
}

func NewHandler(display Display, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	h := &Handler{
		display: display,
		checks:  checks,
		logger:  logger,
		Mux:     chi.NewRouter(),
	}
	h.RegisterRoutes()
	return h
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Health)

	h.Mux.Route("/api/sessions", func(r chi.Router) {
		r.Get("/week", h.GetWeek)
		r.Get("/pointer", h.GetPointer)
	})
}

// Health проверяет зависимости. Любая ошибка даёт 503
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	failed := make(map[string]string)
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GetWeek возвращает текущее окно недели в том виде, в котором его рисует бот
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	view, err := h.display.BuildView(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, view)
}

// GetPointer возвращает указатель на опубликованное сообщение
func (h *Handler) GetPointer(w http.ResponseWriter, r *http.Request) {
	pointer, err := h.display.Pointer(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if pointer == nil {
		h.errorResponse(w, r, http.StatusNotFound, "sessions display is not published")
		return
	}
	h.writeJSON(w, r, http.StatusOK, pointer)
}
