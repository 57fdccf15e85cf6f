package service

import (
	"context"
	"time"

	"etuitions-server/internal/models"
	"etuitions-server/internal/util"

	"go.uber.org/zap"
)

// Listing sizes for the landing-page endpoints
const (
	latestTuitionCount = 4
	latestTutorCount   = 3
)

// Cache keys for the hot listings
const (
	cacheKeyLatestTuitions = "tuitions:latest"
	cacheKeyLatestTutors   = "tutors:latest"
)

// TuitionStore persists tuition postings
type TuitionStore interface {
	InsertTuition(ctx context.Context, tuition *models.Tuition) error
	LatestTuitions(ctx context.Context, limit int) ([]models.Tuition, error)
	ListTuitions(ctx context.Context) ([]models.Tuition, error)
	GetTuitionByID(ctx context.Context, id int64) (*models.Tuition, error)
	UpdateTuition(ctx context.Context, id int64, tuition *models.Tuition) error
	DeleteTuition(ctx context.Context, id int64) error
}

// TutorCatalogStore persists tutor profiles
type TutorCatalogStore interface {
	InsertTutor(ctx context.Context, tutor *models.Tutor) error
	LatestTutors(ctx context.Context, limit int) ([]models.Tutor, error)
	ListTutors(ctx context.Context) ([]models.Tutor, error)
	GetTutorByID(ctx context.Context, id int64) (*models.Tutor, error)
}

// ListingCache caches listing responses. A nil cache disables caching.
type ListingCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService handles tuition postings and tutor profiles
type CatalogService struct {
	tuitions TuitionStore
	tutors   TutorCatalogStore
	cache    ListingCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(tuitions TuitionStore, tutors TutorCatalogStore, cache ListingCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		tuitions: tuitions,
		tutors:   tutors,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// CreateTuition creates a tuition posting
func (cs *CatalogService) CreateTuition(ctx context.Context, tuition *models.Tuition) error {
	if err := cs.tuitions.InsertTuition(ctx, tuition); err != nil {
		return err
	}
	cs.invalidate(ctx, cacheKeyLatestTuitions)
	return nil
}

// LatestTuitions returns the newest postings for the landing page
func (cs *CatalogService) LatestTuitions(ctx context.Context) ([]models.Tuition, error) {
	var cached []models.Tuition
	if cs.cacheGet(ctx, cacheKeyLatestTuitions, &cached, "tuitions") {
		return cached, nil
	}

	tuitions, err := cs.tuitions.LatestTuitions(ctx, latestTuitionCount)
	if err != nil {
		return nil, err
	}
	cs.cacheSet(ctx, cacheKeyLatestTuitions, tuitions)
	return tuitions, nil
}

// ListTuitions returns all postings
func (cs *CatalogService) ListTuitions(ctx context.Context) ([]models.Tuition, error) {
	return cs.tuitions.ListTuitions(ctx)
}

// GetTuition returns one posting by id
func (cs *CatalogService) GetTuition(ctx context.Context, id int64) (*models.Tuition, error) {
	return cs.tuitions.GetTuitionByID(ctx, id)
}

// UpdateTuition replaces the mutable fields of a posting
func (cs *CatalogService) UpdateTuition(ctx context.Context, id int64, tuition *models.Tuition) error {
	if err := cs.tuitions.UpdateTuition(ctx, id, tuition); err != nil {
		return err
	}
	cs.invalidate(ctx, cacheKeyLatestTuitions)
	return nil
}

// DeleteTuition removes a posting
func (cs *CatalogService) DeleteTuition(ctx context.Context, id int64) error {
	if err := cs.tuitions.DeleteTuition(ctx, id); err != nil {
		return err
	}
	cs.invalidate(ctx, cacheKeyLatestTuitions)
	return nil
}

// CreateTutor creates a tutor profile
func (cs *CatalogService) CreateTutor(ctx context.Context, tutor *models.Tutor) error {
	if err := cs.tutors.InsertTutor(ctx, tutor); err != nil {
		return err
	}
	cs.invalidate(ctx, cacheKeyLatestTutors)
	return nil
}

// LatestTutors returns the newest tutor profiles for the landing page
func (cs *CatalogService) LatestTutors(ctx context.Context) ([]models.Tutor, error) {
	var cached []models.Tutor
	if cs.cacheGet(ctx, cacheKeyLatestTutors, &cached, "tutors") {
		return cached, nil
	}

	tutors, err := cs.tutors.LatestTutors(ctx, latestTutorCount)
	if err != nil {
		return nil, err
	}
	cs.cacheSet(ctx, cacheKeyLatestTutors, tutors)
	return tutors, nil
}

// ListTutors returns all tutor profiles
func (cs *CatalogService) ListTutors(ctx context.Context) ([]models.Tutor, error) {
	return cs.tutors.ListTutors(ctx)
}

// GetTutor returns one tutor profile by id
func (cs *CatalogService) GetTutor(ctx context.Context, id int64) (*models.Tutor, error) {
	return cs.tutors.GetTutorByID(ctx, id)
}

// cacheGet reads a listing from the cache. Cache failures fall through to
// the store.
func (cs *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}, listing string) bool {
	if cs.cache == nil {
		return false
	}
	hit, err := cs.cache.GetJSON(ctx, key, dest)
	if err != nil {
		cs.logger.Warn("Listing cache read failed, falling back to store",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	if hit {
		util.ListingCacheHitsTotal.WithLabelValues(listing).Inc()
		return true
	}
	util.ListingCacheMissesTotal.WithLabelValues(listing).Inc()
	return false
}

func (cs *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.SetJSON(ctx, key, value, cs.cacheTTL); err != nil {
		cs.logger.Warn("Listing cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (cs *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.Invalidate(ctx, keys...); err != nil {
		cs.logger.Warn("Listing cache invalidation failed", zap.Error(err))
	}
}
