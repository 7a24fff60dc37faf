// Package rest exposes the recommendation engine over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

// ProfileService is the slice of the engine the HTTP layer needs.
type ProfileService interface {
	GenerateProfile(ctx context.Context, userID string) (domain.TasteProfile, error)
	ProfileFor(ctx context.Context, userID string, maxAge time.Duration) (domain.TasteProfile, error)
}

// Handler manages the HTTP interface for the service.
type Handler struct {
	svc      ProfileService
	cacheTTL time.Duration
	log      *zap.Logger
	router   chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc ProfileService, cacheTTL time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		cacheTTL: cacheTTL,
		log:      log,
		router:   chi.NewRouter(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.Recoverer)

	h.router.Get("/health", h.HealthCheck)
	h.router.Route("/api/v1/users/{id}", func(r chi.Router) {
		r.Get("/profile", h.GetProfile)
		r.Post("/profile/refresh", h.RefreshProfile)
	})
}

// HealthCheck verifies the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetProfile serves a cached profile when one is fresh enough, generating a
// new one otherwise.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	profile, err := h.svc.ProfileFor(r.Context(), userID, h.cacheTTL)
	if err != nil {
		h.writeProfileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// RefreshProfile forces a full rebuild, bypassing the cache.
func (h *Handler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	profile, err := h.svc.GenerateProfile(r.Context(), userID)
	if err != nil {
		h.writeProfileError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeProfileError(w http.ResponseWriter, userID string, err error) {
	h.log.Error("profile generation failed", zap.String("user", userID), zap.Error(err))
	if errors.Is(err, ports.ErrSampleUnavailable) {
		http.Error(w, "unable to analyze preferences", http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
