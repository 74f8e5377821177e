package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common session errors.
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrTestNotFound    = errors.New("test not found")
)

// EventPublisher fans a session event out to the owning user's live
// subscribers. The WebSocket hub implements it.
type EventPublisher interface {
	Publish(userID int, ev quiz.Event)
}

// ActiveSessionMarker is the resumability record kept in Redis for the
// lifetime of a session, so a returning client can discover an attempt was in
// flight even after a reload or a new device.
type ActiveSessionMarker struct {
	SessionID uuid.UUID `json:"session_id"`
	TestID    uuid.UUID `json:"test_id"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionService owns the in-memory session lifecycle: one live session per
// user, Redis resumability markers, and the wiring between the quiz engine,
// the progress synchronizer, and the event hub.
type SessionService struct {
	cfg       *config.Config
	manager   *quiz.Manager
	catalog   *CatalogService
	studyRepo *repository.StudyProgressRepository
	sink      quiz.ProgressSink
	publisher EventPublisher
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	manager *quiz.Manager,
	catalog *CatalogService,
	studyRepo *repository.StudyProgressRepository,
	sink quiz.ProgressSink,
	publisher EventPublisher,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		cfg:       cfg,
		manager:   manager,
		catalog:   catalog,
		studyRepo: studyRepo,
		sink:      sink,
		publisher: publisher,
		rdb:       rdb,
		log:       log.With().Str("component", "session_service").Logger(),
	}
}

// Create builds a new session for the user, superseding any prior one, and
// writes the resumability marker. The session starts in NOT_STARTED; the
// client calls Start separately once its UI is ready.
func (s *SessionService) Create(ctx context.Context, userID int, req *model.CreateSessionRequest) (*quiz.Session, error) {
	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		return nil, ErrTestNotFound
	}

	mode := quiz.Mode(req.Mode)
	if !mode.Valid() {
		return nil, quiz.ErrUnknownMode
	}

	pool, err := s.catalog.QuestionPool(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, quiz.ErrNoQuestions
	}

	var prior []model.StudyProgress
	if mode == quiz.ModeStudy {
		prior, err = s.studyRepo.ListByUserAndTest(ctx, userID, testID)
		if err != nil {
			return nil, fmt.Errorf("load study progress: %w", err)
		}
	}

	session, err := quiz.NewSession(pool, quiz.Config{
		UserID:        userID,
		TestID:        testID,
		Mode:          mode,
		QuestionCount: req.QuestionCount,
		PageSize:      s.cfg.PracticePageSize,
		TickInterval:  time.Second,
		PriorProgress: prior,
		Sink:          s.sink,
		Notify: func(ev quiz.Event) {
			if s.publisher != nil {
				s.publisher.Publish(userID, ev)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.manager.Put(userID, session)
	s.writeMarker(ctx, userID, session)

	s.log.Info().
		Int("user_id", userID).
		Str("test_id", testID.String()).
		Str("mode", req.Mode).
		Str("session_id", session.ID().String()).
		Msg("Session created")
	return session, nil
}

// Get returns the user's live session or ErrNoActiveSession.
func (s *SessionService) Get(userID int) (*quiz.Session, error) {
	session := s.manager.Get(userID)
	if session == nil {
		return nil, ErrNoActiveSession
	}
	return session, nil
}

// End tears down the user's live session and clears the resumability marker.
func (s *SessionService) End(ctx context.Context, userID int) error {
	if s.manager.Get(userID) == nil {
		return ErrNoActiveSession
	}
	s.manager.Remove(userID)
	s.clearMarker(ctx, userID)
	s.log.Info().Int("user_id", userID).Msg("Session ended")
	return nil
}

// ActiveMarker reads the resumability marker, or nil when none exists.
func (s *SessionService) ActiveMarker(ctx context.Context, userID int) (*ActiveSessionMarker, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ActiveSessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	marker := &ActiveSessionMarker{}
	if err := json.Unmarshal([]byte(raw), marker); err != nil {
		return nil, err
	}
	return marker, nil
}

func (s *SessionService) writeMarker(ctx context.Context, userID int, session *quiz.Session) {
	marker := ActiveSessionMarker{
		SessionID: session.ID(),
		TestID:    session.TestID(),
		Mode:      string(session.Mode()),
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(marker)
	if err == nil {
		err = s.rdb.Set(ctx, config.CacheKey.ActiveSessionKey(userID), raw, s.cfg.JWTExpiry).Err()
	}
	if err != nil {
		// Marker is a convenience; the in-memory session stays authoritative.
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Resumability marker write failed")
	}
}

func (s *SessionService) clearMarker(ctx context.Context, userID int) {
	if err := s.rdb.Del(ctx, config.CacheKey.ActiveSessionKey(userID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Resumability marker delete failed")
	}
}

// Shutdown tears down every live session.
func (s *SessionService) Shutdown() {
	s.manager.Shutdown()
}
