package location

import (
	"context"
	"sync"
	"time"
)

// GeoProvider is the position capability the manager consumes: a one-shot
// read plus a subscription. Implementations classify their failures into this
// package's sentinel errors.
type GeoProvider interface {
	Current(ctx context.Context) (Position, error)
	Watch(ctx context.Context, fn func(Position)) (stop func(), err error)
}

// DeviceSource is the server-side stand-in for a device's geolocation: the
// client streams raw position reports in, Current hands out the latest one
// and Watch fans every report out to subscribers. One source per user.
type DeviceSource struct {
	mu       sync.Mutex
	latest   *Position
	maxAge   time.Duration
	now      func() time.Time
	nextSub  int
	watchers map[int]func(Position)
}

const defaultReportMaxAge = 2 * time.Minute

func NewDeviceSource(maxAge time.Duration) *DeviceSource {
	if maxAge <= 0 {
		maxAge = defaultReportMaxAge
	}
	return &DeviceSource{
		maxAge:   maxAge,
		now:      time.Now,
		watchers: make(map[int]func(Position)),
	}
}

// Report records a raw sample from the device and notifies watchers.
func (s *DeviceSource) Report(pos Position) error {
	if err := ValidateCoordinates(pos.Latitude, pos.Longitude); err != nil {
		return err
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = s.now()
	}

	s.mu.Lock()
	s.latest = &pos
	fns := make([]func(Position), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(pos)
	}
	return nil
}

func (s *DeviceSource) Current(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, ErrTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return Position{}, ErrPositionUnavailable
	}
	if s.maxAge > 0 && s.now().Sub(s.latest.Timestamp) > s.maxAge {
		return Position{}, ErrPositionUnavailable
	}
	return *s.latest, nil
}

func (s *DeviceSource) Watch(ctx context.Context, fn func(Position)) (func(), error) {
	if fn == nil {
		return nil, ErrValidation
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = fn
	s.mu.Unlock()

	stop := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return stop, nil
}
