package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// questionCacheTTL bounds staleness after a reseed; sessions hold their own
// copy so a refresh never disturbs one in flight.
const questionCacheTTL = 6 * time.Hour

// CatalogService serves the test catalog and validated question pools. Pools
// are cached in Redis as JSON so session creation does not hit PostgreSQL on
// the hot path.
type CatalogService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListTests returns all tests in the catalog.
func (s *CatalogService) ListTests(ctx context.Context) ([]model.Test, error) {
	return s.testRepo.List(ctx)
}

// GetTest returns one test by ID.
func (s *CatalogService) GetTest(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.testRepo.GetByID(ctx, id)
}

// GetTestBySlug returns one test by its URL slug.
func (s *CatalogService) GetTestBySlug(ctx context.Context, slug string) (*model.Test, error) {
	return s.testRepo.GetBySlug(ctx, slug)
}

// QuestionPool returns the validated question pool for a test, cache-first.
// Questions with no usable choices and no image placeholder are dropped here,
// before any session sees them.
func (s *CatalogService) QuestionPool(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	key := config.CacheKey.TestQuestionsKey(testID.String())

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var questions []model.Question
		if err := json.Unmarshal([]byte(cached), &questions); err == nil {
			return questions, nil
		}
		s.log.Warn().Str("test_id", testID.String()).Msg("Corrupt question cache, refetching")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Question cache read failed, falling back to database")
	}

	return s.loadAndCache(ctx, testID, key)
}

func (s *CatalogService) loadAndCache(ctx context.Context, testID uuid.UUID, key string) ([]model.Question, error) {
	all, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	valid := make([]model.Question, 0, len(all))
	for _, q := range all {
		if q.Answerable() || q.HasImagePlaceholder() {
			valid = append(valid, q)
		}
	}
	if dropped := len(all) - len(valid); dropped > 0 {
		s.log.Warn().
			Str("test_id", testID.String()).
			Int("dropped", dropped).
			Msg("Dropped invalid questions from pool")
	}

	if raw, err := json.Marshal(valid); err == nil {
		if err := s.rdb.Set(ctx, key, raw, questionCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Question cache write failed")
		}
	}
	return valid, nil
}

// Prewarm loads every test's question pool into the cache. Called once at
// startup so the first session of the day is not the slow one.
func (s *CatalogService) Prewarm(ctx context.Context) error {
	tests, err := s.testRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list tests: %w", err)
	}
	for _, t := range tests {
		key := config.CacheKey.TestQuestionsKey(t.ID.String())
		if _, err := s.loadAndCache(ctx, t.ID, key); err != nil {
			return fmt.Errorf("prewarm test %s: %w", t.Slug, err)
		}
	}
	s.log.Info().Int("tests", len(tests)).Msg("Question cache prewarmed")
	return nil
}

// InvalidatePool drops a test's cached pool. Called after reseeding.
func (s *CatalogService) InvalidatePool(ctx context.Context, testID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.TestQuestionsKey(testID.String())).Err()
}
