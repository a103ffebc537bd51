package radar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenlit/backend/internal/domain/model"
	locsvc "github.com/zenlit/backend/internal/services/location"
)

// MatchStore answers proximity queries over published profile coordinates.
type MatchStore interface {
	UsersInBucket(ctx context.Context, callerID *uuid.UUID, lat, lon float64) ([]model.NearbyUser, error)
	UsersWithinRadius(ctx context.Context, callerID *uuid.UUID, lat, lon, radiusKM float64, limit int) ([]model.NearbyUser, error)
	BucketPopulation(ctx context.Context, lat, lon float64) (int64, error)
}

type Service struct {
	store           MatchStore
	logger          *zap.Logger
	defaultRadiusKM float64
	maxRadiusKM     float64
	defaultLimit    int
}

func NewService(store MatchStore, logger *zap.Logger, defaultRadiusKM, maxRadiusKM float64, defaultLimit int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultRadiusKM <= 0 {
		defaultRadiusKM = 5
	}
	if maxRadiusKM <= 0 {
		maxRadiusKM = 50
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}

	return &Service{
		store:           store,
		logger:          logger,
		defaultRadiusKM: defaultRadiusKM,
		maxRadiusKM:     maxRadiusKM,
		defaultLimit:    defaultLimit,
	}
}

// FindBucketMatches returns everyone whose published coordinates round into
// the same 2-decimal bucket as the given point. Bucket equality is the match
// criterion; distance is not computed for this mode.
func (s *Service) FindBucketMatches(ctx context.Context, callerID uuid.UUID, lat, lon float64) ([]model.NearbyUser, error) {
	if s.store == nil {
		return nil, fmt.Errorf("radar store is nil")
	}
	if err := locsvc.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	lat = locsvc.RoundCoord(lat)
	lon = locsvc.RoundCoord(lon)

	var caller *uuid.UUID
	if callerID != uuid.Nil {
		caller = &callerID
	}

	users, err := s.store.UsersInBucket(ctx, caller, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("users in bucket: %w", err)
	}

	if ce := s.logger.Check(zap.DebugLevel, "bucket match"); ce != nil {
		population, popErr := s.store.BucketPopulation(ctx, lat, lon)
		if popErr != nil {
			population = -1
		}
		ce.Write(
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Int("matches", len(users)),
			zap.Int64("bucket_population", population),
		)
	}

	return users, nil
}

// FindNearby returns profiles within radiusKM of the given point, nearest
// first, with distances computed in storage.
func (s *Service) FindNearby(ctx context.Context, callerID uuid.UUID, lat, lon, radiusKM float64, limit int) ([]model.NearbyUser, error) {
	if s.store == nil {
		return nil, fmt.Errorf("radar store is nil")
	}
	if err := locsvc.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	if radiusKM <= 0 {
		radiusKM = s.defaultRadiusKM
	}
	if radiusKM > s.maxRadiusKM {
		radiusKM = s.maxRadiusKM
	}
	if limit <= 0 || limit > s.defaultLimit {
		limit = s.defaultLimit
	}

	var caller *uuid.UUID
	if callerID != uuid.Nil {
		caller = &callerID
	}

	users, err := s.store.UsersWithinRadius(ctx, caller, lat, lon, radiusKM, limit)
	if err != nil {
		return nil, fmt.Errorf("users within radius: %w", err)
	}

	return users, nil
}
