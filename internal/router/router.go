package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/handler"
	"github.com/kelasid/ruangkelas-backend/internal/middleware"
	"github.com/kelasid/ruangkelas-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz   *handler.QuizHandler
	Assist *handler.AssistHandler
	Room   *handler.RoomHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Unknown routes get the standard envelope instead of Gin's bare 404.
	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Rate limiter for AI-assisted routes (they fan out to the LLM).
	assistLimiter := middleware.NewRateLimiter(cfg.AssistRatePerMinute, time.Minute)

	// ─── 1. Room Group ─────────────────────────────────────────────────
	rooms := router.Group("/api/v1/rooms")
	{
		rooms.POST("/token", handlers.Room.IssueToken)
		rooms.DELETE("/:room_name", handlers.Room.DeleteRoom)
		rooms.GET("/:room_name/quizzes", handlers.Quiz.ListRoomQuizzes)
	}

	// ─── 2. Quiz Group ─────────────────────────────────────────────────
	quizzes := router.Group("/api/v1/quizzes")
	{
		quizzes.POST("", assistLimiter.Middleware(), handlers.Quiz.GenerateQuiz)
		quizzes.GET("/:quiz_id", handlers.Quiz.GetQuiz)
		quizzes.POST("/:quiz_id/submissions", handlers.Quiz.SubmitQuiz)
		quizzes.GET("/:quiz_id/results", handlers.Quiz.GetQuizResults)
	}

	// ─── 3. Assist Group (Rate Limited) ────────────────────────────────
	assist := router.Group("/api/v1/assist")
	assist.Use(assistLimiter.Middleware())
	{
		assist.POST("/answer", handlers.Assist.AnswerQuestion)
		assist.POST("/extract-questions", handlers.Assist.ExtractQuestions)
		assist.POST("/summary", handlers.Assist.Summarize)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/quizzes/:quiz_id/monitor", handlers.WS.MonitorQuizStream)
	}

	return router
}
