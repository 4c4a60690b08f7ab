package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/quiz"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

func newTestQuizService(publisher events.EventPublisher) *quizService {
	return NewQuizService(reverseSource{}, publisher, time.Hour, testLogger(), validator.New()).(*quizService)
}

func option(v int) *int    { return &v }
func boolean(v bool) *bool { return &v }

func TestQuizService_FullSession(t *testing.T) {
	publisher := events.NewMockEventPublisher(testLogger())
	service := newTestQuizService(publisher)
	ctx := context.Background()

	view, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 1, service.ActiveSessions())
	id := view.SessionID

	result, err := service.Submit(ctx, id, quiz.Answer{Option: option(1)})
	require.NoError(t, err)
	assert.True(t, result.Correct)

	_, err = service.Submit(ctx, id, quiz.Answer{Option: option(1)})
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.True(t, IsConflict(err))

	view, err = service.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CardTrueFalse, view.Type)

	result, err = service.Submit(ctx, id, quiz.Answer{Value: boolean(false)})
	require.NoError(t, err)
	assert.True(t, result.Correct)

	_, err = service.Next(ctx, id)
	require.NoError(t, err)
	result, err = service.Submit(ctx, id, quiz.Answer{Text: "glucose"})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, "respiration", result.CorrectAnswer)

	_, err = service.Next(ctx, id)
	assert.ErrorIs(t, err, ErrNoNextCard)

	stats, err := service.Finish(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Answered)
	assert.Equal(t, 2, stats.Score)
	assert.True(t, stats.Completed)
	assert.Equal(t, "Keep studying! Review the material and try again.", stats.Feedback)

	_, err = service.Finish(ctx, id)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizCompleted, published[0].Type)
	payload := published[0].Data.(events.QuizCompletedEvent)
	assert.Equal(t, id, payload.SessionID)
	assert.Equal(t, 2, payload.Score)
}

func TestQuizService_StartValidation(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	_, err := service.Start(ctx, &StartQuizRequest{})
	assert.True(t, IsValidation(err))

	deck := sampleDeck()
	deck[0].Options = []string{"mitochondria"}
	_, err = service.Start(ctx, &StartQuizRequest{Deck: deck})
	assert.True(t, IsValidation(err))
	assert.Zero(t, service.ActiveSessions())
}

func TestQuizService_ShuffleAndReset(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	view, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck(), Shuffle: true})
	require.NoError(t, err)
	assert.Equal(t, models.CardFillBlank, view.Type)
	id := view.SessionID

	_, err = service.Submit(ctx, id, quiz.Answer{Text: "respiration"})
	require.NoError(t, err)

	view, err = service.Shuffle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CardMCQ, view.Type)
	assert.False(t, view.Answered)

	_, err = service.Submit(ctx, id, quiz.Answer{Option: option(0)})
	require.NoError(t, err)
	view, err = service.Reset(ctx, id)
	require.NoError(t, err)
	assert.False(t, view.Answered)

	stats, err := service.Stats(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, stats.Answered)

	deck, err := service.Deck(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sampleDeck(), deck)
}

func TestQuizService_Navigation(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	view, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)
	id := view.SessionID

	_, err = service.Previous(ctx, id)
	assert.ErrorIs(t, err, ErrNoPreviousCard)

	_, err = service.Next(ctx, id)
	require.NoError(t, err)
	view, err = service.Previous(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Index)

	current, err := service.Current(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.Question, current.Question)
}

func TestQuizService_UnknownAndDeletedSessions(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	_, err := service.Current(ctx, "missing")
	assert.True(t, IsNotFound(err))

	view, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, view.SessionID))
	assert.ErrorIs(t, service.Delete(ctx, view.SessionID), ErrSessionNotFound)

	_, err = service.Submit(ctx, view.SessionID, quiz.Answer{Option: option(1)})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizService_SessionsExpire(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = service.Current(ctx, first.SessionID)
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)
	_, err = service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)
	assert.Equal(t, 1, service.ActiveSessions())

	_, err = service.Current(ctx, first.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizService_ConcurrentAnswers(t *testing.T) {
	service := newTestQuizService(events.NewMockEventPublisher(testLogger()))
	ctx := context.Background()

	view, err := service.Start(ctx, &StartQuizRequest{Deck: sampleDeck()})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Submit(ctx, view.SessionID, quiz.Answer{Option: option(1)}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	stats, err := service.Stats(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Score)
}
