package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
)

type HandlerManager struct {
	deckHandler  *DeckHandler
	quizHandler  *QuizHandler
	quizService  services.QuizService
	cacheService cache.CacheService
}

func NewHandlerManager(
	flashcardService services.FlashcardService,
	importExportService services.ImportExportService,
	quizService services.QuizService,
	cacheService cache.CacheService,
	maxUploadBytes int64,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		deckHandler:  NewDeckHandler(flashcardService, importExportService, maxUploadBytes, logger),
		quizHandler:  NewQuizHandler(quizService, logger),
		quizService:  quizService,
		cacheService: cacheService,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		decks := v1.Group("/decks")
		{
			decks.POST("/generate", hm.deckHandler.GenerateDeck)
			decks.POST("/upload", hm.deckHandler.UploadDocument)
			decks.POST("/export", hm.deckHandler.ExportDeck)
			decks.POST("/import", hm.deckHandler.ImportDeck)
			decks.DELETE("/analyses", hm.deckHandler.InvalidateAnalyses)
		}

		sessions := v1.Group("/quiz/sessions")
		{
			sessions.POST("", hm.quizHandler.StartSession)
			sessions.GET("/:id", hm.quizHandler.GetSession)
			sessions.DELETE("/:id", hm.quizHandler.DeleteSession)
			sessions.GET("/:id/current", hm.quizHandler.GetCurrentCard)
			sessions.GET("/:id/deck", hm.quizHandler.GetDeck)
			sessions.GET("/:id/stats", hm.quizHandler.GetStats)
			sessions.POST("/:id/answer", hm.quizHandler.SubmitAnswer)
			sessions.POST("/:id/next", hm.quizHandler.NextCard)
			sessions.POST("/:id/previous", hm.quizHandler.PreviousCard)
			sessions.POST("/:id/finish", hm.quizHandler.FinishSession)
			sessions.POST("/:id/reset", hm.quizHandler.ResetSession)
			sessions.POST("/:id/shuffle", hm.quizHandler.ShuffleSession)
		}
	}
}

// HealthCheck handles GET /health. In-process caches also report their
// size and hit rate.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":          "healthy",
		"service":         "flashcard-service",
		"active_sessions": hm.quizService.ActiveSessions(),
	}
	if stats, ok := hm.cacheService.(cache.StatsReporter); ok {
		body["cache"] = gin.H{
			"entries":  stats.Size(),
			"hit_rate": stats.HitRate(),
		}
	}
	c.JSON(http.StatusOK, body)
}
