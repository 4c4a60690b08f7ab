package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/generator"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/quiz"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// StartQuizRequest opens a quiz session over a deck.
type StartQuizRequest struct {
	Deck    models.Deck `json:"deck" validate:"required,min=1"`
	Shuffle bool        `json:"shuffle"`
}

// QuizService owns the in-process quiz sessions used by the HTTP runner.
type QuizService interface {
	Start(ctx context.Context, req *StartQuizRequest) (*quiz.CardView, error)
	Current(ctx context.Context, sessionID string) (*quiz.CardView, error)
	Submit(ctx context.Context, sessionID string, answer quiz.Answer) (*quiz.AnswerResult, error)
	Next(ctx context.Context, sessionID string) (*quiz.CardView, error)
	Previous(ctx context.Context, sessionID string) (*quiz.CardView, error)
	Finish(ctx context.Context, sessionID string) (*models.QuizStats, error)
	Reset(ctx context.Context, sessionID string) (*quiz.CardView, error)
	Shuffle(ctx context.Context, sessionID string) (*quiz.CardView, error)
	Stats(ctx context.Context, sessionID string) (*models.QuizStats, error)
	Deck(ctx context.Context, sessionID string) (models.Deck, error)
	Delete(ctx context.Context, sessionID string) error
	ActiveSessions() int
}

type sessionEntry struct {
	session *quiz.Session
	touched time.Time
}

type quizService struct {
	mu         sync.Mutex
	sessions   map[string]*sessionEntry
	sessionTTL time.Duration
	rng        generator.RandomSource
	publisher  events.EventPublisher
	logger     *slog.Logger
	validator  *validator.Validator
	svcLogger  *ServiceLogger
	now        func() time.Time
}

func NewQuizService(rng generator.RandomSource, publisher events.EventPublisher, sessionTTL time.Duration, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		sessions:   make(map[string]*sessionEntry),
		sessionTTL: sessionTTL,
		rng:        rng,
		publisher:  publisher,
		logger:     logger,
		validator:  validator,
		svcLogger:  NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "quiz"}),
		now:        time.Now,
	}
}

func (s *quizService) Start(ctx context.Context, req *StartQuizRequest) (*quiz.CardView, error) {
	op := s.svcLogger.WithOperation(ctx, "start_quiz")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", "quiz_session", err)
		return nil, err
	}
	if errs := s.validator.Deck().ValidateDeck(req.Deck); len(errs) > 0 {
		op.LogResult("", "quiz_session", errs)
		return nil, errs
	}

	session, err := quiz.NewSession(uuid.NewString(), req.Deck)
	if err != nil {
		op.LogResult("", "quiz_session", err)
		return nil, err
	}
	if req.Shuffle {
		session.Shuffle(s.rng.Shuffle)
	}

	s.mu.Lock()
	s.evictExpired()
	s.sessions[session.ID] = &sessionEntry{session: session, touched: s.now()}
	s.mu.Unlock()

	view := session.View()
	op.LogResult(session.ID, "quiz_session", nil, slog.Int("cards", session.Len()))
	return &view, nil
}

func (s *quizService) Current(ctx context.Context, sessionID string) (*quiz.CardView, error) {
	var view quiz.CardView
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		view = session.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *quizService) Submit(ctx context.Context, sessionID string, answer quiz.Answer) (*quiz.AnswerResult, error) {
	op := s.svcLogger.WithOperation(ctx, "submit_answer")

	var result quiz.AnswerResult
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		var err error
		result, err = session.Submit(answer)
		return err
	})
	op.LogResult(sessionID, "quiz_session", err, slog.Bool("correct", result.Correct))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *quizService) Next(ctx context.Context, sessionID string) (*quiz.CardView, error) {
	return s.move(sessionID, (*quiz.Session).Next)
}

func (s *quizService) Previous(ctx context.Context, sessionID string) (*quiz.CardView, error) {
	return s.move(sessionID, (*quiz.Session).Previous)
}

func (s *quizService) Reset(ctx context.Context, sessionID string) (*quiz.CardView, error) {
	return s.move(sessionID, func(session *quiz.Session) error {
		session.Reset()
		return nil
	})
}

func (s *quizService) Shuffle(ctx context.Context, sessionID string) (*quiz.CardView, error) {
	return s.move(sessionID, func(session *quiz.Session) error {
		session.Shuffle(s.rng.Shuffle)
		return nil
	})
}

func (s *quizService) move(sessionID string, step func(*quiz.Session) error) (*quiz.CardView, error) {
	var view quiz.CardView
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		if err := step(session); err != nil {
			return err
		}
		view = session.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *quizService) Finish(ctx context.Context, sessionID string) (*models.QuizStats, error) {
	op := s.svcLogger.WithOperation(ctx, "finish_quiz")

	var stats models.QuizStats
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		if session.Completed() {
			return ErrSessionCompleted
		}
		stats = session.Finish()
		return nil
	})
	if err != nil {
		op.LogResult(sessionID, "quiz_session", err)
		return nil, err
	}

	op.LogResult(sessionID, "quiz_session", nil,
		slog.Int("score", stats.Score),
		slog.Int("answered", stats.Answered),
		slog.Float64("accuracy", stats.Accuracy),
	)

	event := events.NewDeckEvent(events.EventQuizCompleted, events.QuizCompletedEvent{
		SessionID: stats.SessionID,
		Total:     stats.Total,
		Answered:  stats.Answered,
		Score:     stats.Score,
		Accuracy:  stats.Accuracy,
		Feedback:  stats.Feedback,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz completed event", "session_id", sessionID, "error", err)
	}
	return &stats, nil
}

func (s *quizService) Stats(ctx context.Context, sessionID string) (*models.QuizStats, error) {
	var stats models.QuizStats
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		stats = session.Stats()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *quizService) Deck(ctx context.Context, sessionID string) (models.Deck, error) {
	var deck models.Deck
	err := s.withSession(sessionID, func(session *quiz.Session) error {
		deck = session.Deck()
		return nil
	})
	return deck, err
}

func (s *quizService) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.logger.Info("Quiz session deleted", "session_id", sessionID)
	return nil
}

func (s *quizService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// withSession runs fn on a live session while holding the store lock.
func (s *quizService) withSession(sessionID string, fn func(*quiz.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[sessionID]
	if !exists || s.expired(entry) {
		delete(s.sessions, sessionID)
		return ErrSessionNotFound
	}
	entry.touched = s.now()
	return fn(entry.session)
}

func (s *quizService) expired(entry *sessionEntry) bool {
	return s.sessionTTL > 0 && s.now().Sub(entry.touched) > s.sessionTTL
}

// evictExpired must be called with mu held.
func (s *quizService) evictExpired() {
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			s.logger.Debug("Quiz session expired", "session_id", id)
		}
	}
}
