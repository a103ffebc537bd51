package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub hands out exactly one Manager (and one DeviceSource) per user, so a
// remounting consumer never spawns a duplicate watch. Managers are created
// lazily and initialized on first use.
type Hub struct {
	store        ProfileLocationStore
	intents      IntentStore
	logger       *zap.Logger
	pollInterval time.Duration

	mu       sync.Mutex
	sources  map[uuid.UUID]*DeviceSource
	managers map[uuid.UUID]*Manager
}

func NewHub(store ProfileLocationStore, intents IntentStore, logger *zap.Logger, pollInterval time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		store:        store,
		intents:      intents,
		logger:       logger,
		pollInterval: pollInterval,
		sources:      make(map[uuid.UUID]*DeviceSource),
		managers:     make(map[uuid.UUID]*Manager),
	}
}

// ManagerFor returns the user's manager, creating and initializing it on
// first access. Initialization restores tracking when the persisted intent
// says sharing is on.
func (h *Hub) ManagerFor(ctx context.Context, userID uuid.UUID) (*Manager, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidIdentity
	}

	h.mu.Lock()
	if mgr, ok := h.managers[userID]; ok {
		h.mu.Unlock()
		return mgr, nil
	}
	src := h.sourceLocked(userID)
	mgr := NewManager(src, h.store, h.intents, h.logger, h.pollInterval)
	h.managers[userID] = mgr
	h.mu.Unlock()

	log := h.logger.With(zap.String("user_id", userID.String()))
	err := mgr.Initialize(ctx, userID,
		func(pos *Position) {
			if pos == nil {
				log.Debug("location cleared")
				return
			}
			log.Debug("location bucket changed",
				zap.Float64("lat", pos.Latitude),
				zap.Float64("lon", pos.Longitude),
			)
		},
		func(err error) {
			log.Warn("location session error", zap.Error(err))
		},
	)
	if err != nil {
		h.mu.Lock()
		delete(h.managers, userID)
		h.mu.Unlock()
		return nil, err
	}

	return mgr, nil
}

// Report feeds a raw device sample into the user's position source.
func (h *Hub) Report(userID uuid.UUID, pos Position) error {
	if userID == uuid.Nil {
		return ErrInvalidIdentity
	}

	h.mu.Lock()
	src := h.sourceLocked(userID)
	h.mu.Unlock()

	return src.Report(pos)
}

// Drop tears the user's manager down and forgets it, the logout path. The
// persisted intent is cleared even when no manager is live: the user may be
// logging out of a session that predates this process.
func (h *Hub) Drop(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidIdentity
	}

	h.mu.Lock()
	mgr := h.managers[userID]
	delete(h.managers, userID)
	delete(h.sources, userID)
	h.mu.Unlock()

	if mgr != nil {
		return mgr.ClearPersistedState(ctx)
	}
	if h.intents != nil {
		if err := h.intents.Clear(ctx, userID); err != nil {
			return fmt.Errorf("clear sharing intent: %w", ErrStorageWrite)
		}
	}
	return nil
}

func (h *Hub) sourceLocked(userID uuid.UUID) *DeviceSource {
	src, ok := h.sources[userID]
	if !ok {
		src = NewDeviceSource(0)
		h.sources[userID] = src
	}
	return src
}
