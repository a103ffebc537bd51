package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileLocationStore persists the shared coordinate. SaveLocation writes
// both fields, ClearLocation nulls both: the pair is never half-set.
type ProfileLocationStore interface {
	SaveLocation(ctx context.Context, userID uuid.UUID, lat, lon float64, at time.Time) error
	ClearLocation(ctx context.Context, userID uuid.UUID) error
}

// IntentStore keeps the user's on/off choice across sessions, independent of
// whatever coordinates are currently persisted.
type IntentStore interface {
	Get(ctx context.Context, userID uuid.UUID) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, enabled bool) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Snapshot is a copy of the manager state; mutating it never touches the
// manager.
type Snapshot struct {
	UserID   uuid.UUID
	Enabled  bool
	Tracking bool
	Degraded bool
	Current  *Position
}

// Manager owns the location-sharing lifecycle for one user: permission-style
// capability checks, acquisition, bucketed persistence, the live watch plus a
// periodic poller, and change notification. Two update sources (watch events
// and poller ticks) funnel through a single gate, handleSample, which only
// persists and notifies when the bucket actually changed.
type Manager struct {
	geo          GeoProvider
	store        ProfileLocationStore
	intents      IntentStore
	logger       *zap.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu        sync.Mutex
	userID    uuid.UUID
	onUpdate  func(*Position)
	onError   func(error)
	enabled   bool
	tracking  bool
	degraded  bool
	current   *Position
	stopWatch func()
	pollStop  chan struct{}
	// gen invalidates in-flight writes: a sample persisted before TurnOff
	// must not resurrect coordinates after they were nulled.
	gen uint64
}

const defaultPollInterval = time.Minute

func NewManager(geo GeoProvider, store ProfileLocationStore, intents IntentStore, logger *zap.Logger, pollInterval time.Duration) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Manager{
		geo:          geo,
		store:        store,
		intents:      intents,
		logger:       logger,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Initialize binds the manager to a user and its notification callbacks. When
// the persisted intent says sharing is on, it restores live tracking without
// an explicit TurnOn. Restoration failure is reported through onError but the
// intent is preserved: only the live session failed, not the user's choice.
func (m *Manager) Initialize(ctx context.Context, userID uuid.UUID, onUpdate func(*Position), onError func(error)) error {
	if userID == uuid.Nil {
		return ErrInvalidIdentity
	}

	m.mu.Lock()
	m.userID = userID
	m.onUpdate = onUpdate
	m.onError = onError
	m.mu.Unlock()

	if m.intents == nil {
		return nil
	}

	wantEnabled, err := m.intents.Get(ctx, userID)
	if err != nil {
		m.logger.Warn("read persisted location intent", zap.Error(err))
		return nil
	}
	if !wantEnabled {
		return nil
	}

	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()

	if err := m.restore(ctx); err != nil {
		m.notifyError(err)
	}
	return nil
}

// TurnOn enables sharing. Idempotent: when already enabled it only makes sure
// tracking is live and never re-acquires a fresh permission. Any failure
// aborts the whole transition and leaves the manager off.
func (m *Manager) TurnOn(ctx context.Context) error {
	m.mu.Lock()
	if m.userID == uuid.Nil {
		m.mu.Unlock()
		return ErrInvalidIdentity
	}
	if m.enabled {
		var err error
		if !m.tracking {
			err = m.startTrackingLocked()
		}
		m.mu.Unlock()
		return err
	}
	if m.geo == nil {
		m.mu.Unlock()
		return ErrUnsupported
	}
	userID := m.userID
	m.mu.Unlock()

	pos, err := m.geo.Current(ctx)
	if err != nil {
		return err
	}
	if err := ValidateCoordinates(pos.Latitude, pos.Longitude); err != nil {
		return err
	}
	rounded := pos.Rounded()

	if err := m.store.SaveLocation(ctx, userID, rounded.Latitude, rounded.Longitude, m.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if m.intents != nil {
		if err := m.intents.Set(ctx, userID, true); err != nil {
			return fmt.Errorf("persist sharing intent: %w", ErrStorageWrite)
		}
	}

	m.mu.Lock()
	m.enabled = true
	m.degraded = false
	m.current = &rounded
	m.gen++
	err = m.startTrackingLocked()
	if err != nil {
		m.enabled = false
		m.current = nil
		m.mu.Unlock()
		if m.intents != nil {
			_ = m.intents.Set(ctx, userID, false)
		}
		return err
	}
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		copyPos := rounded
		cb(&copyPos)
	}
	return nil
}

// TurnOff disables sharing. Idempotent. Tracking is torn down before the
// coordinates are nulled; if that clearing write fails the manager enters an
// explicit degraded state (tracking stopped, intent still on) that the caller
// can detect in the snapshot and retry.
func (m *Manager) TurnOff(ctx context.Context) error {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return nil
	}
	m.stopTrackingLocked()
	m.gen++
	userID := m.userID
	m.mu.Unlock()

	if err := m.store.ClearLocation(ctx, userID); err != nil {
		m.mu.Lock()
		m.degraded = true
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	m.mu.Lock()
	m.enabled = false
	m.degraded = false
	m.current = nil
	cb := m.onUpdate
	m.mu.Unlock()

	if m.intents != nil {
		if err := m.intents.Set(ctx, userID, false); err != nil {
			m.logger.Warn("persist sharing intent off", zap.Error(err))
		}
	}
	if cb != nil {
		cb(nil)
	}
	return nil
}

// RefreshLocation re-acquires the position on demand. Only valid while
// sharing is enabled; the change gate decides whether anything is written.
func (m *Manager) RefreshLocation(ctx context.Context) error {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return ErrDisabled
	}
	if m.geo == nil {
		m.mu.Unlock()
		return ErrUnsupported
	}
	m.mu.Unlock()

	pos, err := m.geo.Current(ctx)
	if err != nil {
		return err
	}
	m.handleSample(ctx, pos)
	return nil
}

func (m *Manager) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UserID:   m.userID,
		Enabled:  m.enabled,
		Tracking: m.tracking,
		Degraded: m.degraded,
	}
	if m.current != nil {
		cur := *m.current
		snap.Current = &cur
	}
	return snap
}

func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// SetCallbacks swaps the notification callbacks without disturbing tracking,
// for when the consuming surface is recreated but the manager lives on.
func (m *Manager) SetCallbacks(onUpdate func(*Position), onError func(error)) {
	m.mu.Lock()
	m.onUpdate = onUpdate
	m.onError = onError
	m.mu.Unlock()
}

// Cleanup stops live tracking and detaches callbacks but keeps the enabled
// flag and last location, so a later Initialize can resume the session.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	m.stopTrackingLocked()
	m.gen++
	m.onUpdate = nil
	m.onError = nil
	m.mu.Unlock()
}

// ClearPersistedState wipes the persisted intent and resets the manager, the
// logout path. Contrast with Cleanup, which deliberately keeps the intent.
func (m *Manager) ClearPersistedState(ctx context.Context) error {
	m.mu.Lock()
	m.stopTrackingLocked()
	m.gen++
	m.enabled = false
	m.degraded = false
	m.current = nil
	userID := m.userID
	m.mu.Unlock()

	if m.intents == nil || userID == uuid.Nil {
		return nil
	}
	if err := m.intents.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear sharing intent: %w", ErrStorageWrite)
	}
	return nil
}

// restore re-establishes a live session for an already-enabled manager.
func (m *Manager) restore(ctx context.Context) error {
	if m.geo == nil {
		return ErrUnsupported
	}

	pos, err := m.geo.Current(ctx)
	if err != nil {
		return err
	}
	rounded := pos.Rounded()

	m.mu.Lock()
	userID := m.userID
	m.mu.Unlock()

	if err := m.store.SaveLocation(ctx, userID, rounded.Latitude, rounded.Longitude, m.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	m.mu.Lock()
	m.current = &rounded
	m.gen++
	err = m.startTrackingLocked()
	cb := m.onUpdate
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if cb != nil {
		copyPos := rounded
		cb(&copyPos)
	}
	return nil
}

// handleSample is the single entry point for every position sample, whether
// from the watch or the poller. Bucket equality suppresses sub-cell jitter;
// the persist happens before the in-memory location is advanced, and a
// generation check drops writes that lost a race with TurnOff.
func (m *Manager) handleSample(ctx context.Context, pos Position) {
	if err := ValidateCoordinates(pos.Latitude, pos.Longitude); err != nil {
		m.logger.Debug("dropping invalid position sample", zap.Error(err))
		return
	}
	rounded := pos.Rounded()

	m.mu.Lock()
	if !m.enabled || m.userID == uuid.Nil {
		m.mu.Unlock()
		return
	}
	if m.current != nil && SameBucket(*m.current, rounded) {
		m.mu.Unlock()
		return
	}
	gen := m.gen
	userID := m.userID
	m.mu.Unlock()

	if err := m.store.SaveLocation(ctx, userID, rounded.Latitude, rounded.Longitude, m.now()); err != nil {
		m.notifyError(fmt.Errorf("%w: %v", ErrStorageWrite, err))
		return
	}

	m.mu.Lock()
	if m.gen != gen || !m.enabled {
		// turned off (or restarted) while the write was in flight
		m.mu.Unlock()
		return
	}
	m.current = &rounded
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		copyPos := rounded
		cb(&copyPos)
	}
}

func (m *Manager) startTrackingLocked() error {
	if m.tracking {
		return nil
	}
	if m.geo == nil {
		return ErrUnsupported
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	stop, err := m.geo.Watch(watchCtx, func(pos Position) {
		m.handleSample(context.Background(), pos)
	})
	if err != nil {
		cancel()
		return err
	}
	m.stopWatch = func() {
		cancel()
		stop()
	}

	stopCh := make(chan struct{})
	m.pollStop = stopCh
	go m.pollLoop(stopCh)

	m.tracking = true
	return nil
}

func (m *Manager) stopTrackingLocked() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	if m.pollStop != nil {
		close(m.pollStop)
		m.pollStop = nil
	}
	m.tracking = false
}

// pollLoop is the second update source: a fixed-interval re-check covering
// devices whose watch callbacks go quiet.
func (m *Manager) pollLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			pos, err := m.geo.Current(context.Background())
			if err != nil {
				m.notifyError(err)
				continue
			}
			m.handleSample(context.Background(), pos)
		}
	}
}

func (m *Manager) notifyError(err error) {
	m.mu.Lock()
	cb := m.onError
	m.mu.Unlock()

	if cb != nil {
		cb(err)
	} else {
		m.logger.Warn("location update failed", zap.Error(err))
	}
}
