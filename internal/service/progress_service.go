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
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrResultNotFound = errors.New("mock result not found")

// studyStatsTTL keeps the aggregate cheap to render without going stale for
// long; the worker writes lag answers by at most a few seconds anyway.
const studyStatsTTL = 30 * time.Second

// ProgressService reads durable progress: study records and aggregates, and
// the mock result history. All writes flow through the persist queues.
type ProgressService struct {
	studyRepo *repository.StudyProgressRepository
	mockRepo  *repository.MockResultRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(studyRepo *repository.StudyProgressRepository, mockRepo *repository.MockResultRepository, rdb *redis.Client, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		studyRepo: studyRepo,
		mockRepo:  mockRepo,
		rdb:       rdb,
		log:       log.With().Str("component", "progress_service").Logger(),
	}
}

// StudyProgress returns the user's per-question study records for one test.
func (s *ProgressService) StudyProgress(ctx context.Context, userID int, testID uuid.UUID) ([]model.StudyProgress, error) {
	return s.studyRepo.ListByUserAndTest(ctx, userID, testID)
}

// StudyStats returns the user's study aggregate for one test, cached briefly.
func (s *ProgressService) StudyStats(ctx context.Context, userID int, testID uuid.UUID) (*model.StudyStats, error) {
	key := config.CacheKey.StudyStatsKey(userID, testID.String())

	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		stats := &model.StudyStats{}
		if err := json.Unmarshal([]byte(raw), stats); err == nil {
			return stats, nil
		}
	}

	stats, err := s.studyRepo.StatsByUserAndTest(ctx, userID, testID)
	if err != nil {
		return nil, fmt.Errorf("study stats: %w", err)
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, raw, studyStatsTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Study stats cache write failed")
		}
	}
	return stats, nil
}

// ResetStudy wipes the user's durable study history for one test.
func (s *ProgressService) ResetStudy(ctx context.Context, userID int, testID uuid.UUID) error {
	if err := s.studyRepo.DeleteByUserAndTest(ctx, userID, testID); err != nil {
		return fmt.Errorf("reset study: %w", err)
	}
	if err := s.rdb.Del(ctx, config.CacheKey.StudyStatsKey(userID, testID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Study stats cache delete failed")
	}
	return nil
}

// MockHistory returns the user's mock results for one test, newest first.
func (s *ProgressService) MockHistory(ctx context.Context, userID int, testID uuid.UUID, limit, offset int) ([]model.MockResult, int, error) {
	return s.mockRepo.ListPaginated(ctx, userID, testID, limit, offset)
}

// MockDetail returns one mock result with its per-question answers joined to
// question content for historical review.
func (s *ProgressService) MockDetail(ctx context.Context, userID int, resultID uuid.UUID) (*model.MockResult, []model.MockReviewAnswer, error) {
	result, err := s.mockRepo.GetByID(ctx, userID, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, fmt.Errorf("get result: %w", err)
	}

	answers, err := s.mockRepo.ListAnswers(ctx, resultID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answers: %w", err)
	}
	return result, answers, nil
}
