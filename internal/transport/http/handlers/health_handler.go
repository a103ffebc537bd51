package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["postgres"] = "down"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["redis"] = "down"
		}
	}

	httperrors.Write(w, http.StatusOK, status)
}
