package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/quiz"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// SessionResponse is the full state of a quiz session.
type SessionResponse struct {
	Current *quiz.CardView    `json:"current"`
	Stats   *models.QuizStats `json:"stats"`
}

// StartSession handles POST /quiz/sessions
func (h *QuizHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting quiz session")

	var req services.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.quizService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /quiz/sessions/:id
func (h *QuizHandler) GetSession(c *gin.Context) {
	h.LogRequest(c, "Getting quiz session")

	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	ctx := c.Request.Context()
	view, err := h.quizService.Current(ctx, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	stats, err := h.quizService.Stats(ctx, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Current: view, Stats: stats})
}

// GetCurrentCard handles GET /quiz/sessions/:id/current
func (h *QuizHandler) GetCurrentCard(c *gin.Context) {
	h.viewAction(c, "Getting current card", h.quizService.Current)
}

// GetDeck handles GET /quiz/sessions/:id/deck
func (h *QuizHandler) GetDeck(c *gin.Context) {
	h.LogRequest(c, "Getting quiz deck")

	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	deck, err := h.quizService.Deck(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deck)
}

// SubmitAnswer handles POST /quiz/sessions/:id/answer
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Submitting answer", "session_id", id)

	var answer quiz.Answer
	if err := c.ShouldBindJSON(&answer); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), id, answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// NextCard handles POST /quiz/sessions/:id/next
func (h *QuizHandler) NextCard(c *gin.Context) {
	h.viewAction(c, "Moving to next card", h.quizService.Next)
}

// PreviousCard handles POST /quiz/sessions/:id/previous
func (h *QuizHandler) PreviousCard(c *gin.Context) {
	h.viewAction(c, "Moving to previous card", h.quizService.Previous)
}

// ResetSession handles POST /quiz/sessions/:id/reset
func (h *QuizHandler) ResetSession(c *gin.Context) {
	h.viewAction(c, "Resetting quiz session", h.quizService.Reset)
}

// ShuffleSession handles POST /quiz/sessions/:id/shuffle
func (h *QuizHandler) ShuffleSession(c *gin.Context) {
	h.viewAction(c, "Shuffling quiz session", h.quizService.Shuffle)
}

// FinishSession handles POST /quiz/sessions/:id/finish
func (h *QuizHandler) FinishSession(c *gin.Context) {
	h.statsAction(c, "Finishing quiz session", h.quizService.Finish)
}

// GetStats handles GET /quiz/sessions/:id/stats
func (h *QuizHandler) GetStats(c *gin.Context) {
	h.statsAction(c, "Getting quiz stats", h.quizService.Stats)
}

// DeleteSession handles DELETE /quiz/sessions/:id
func (h *QuizHandler) DeleteSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Deleting quiz session", "session_id", id)

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz session deleted successfully", gin.H{"session_id": id})
}

func (h *QuizHandler) viewAction(c *gin.Context, message string, action func(context.Context, string) (*quiz.CardView, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, message, "session_id", id)

	view, err := action(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *QuizHandler) statsAction(c *gin.Context, message string, action func(context.Context, string) (*models.QuizStats, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, message, "session_id", id)

	stats, err := action(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
