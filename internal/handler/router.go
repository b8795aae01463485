package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mycrochip/trivia-api/internal/metrics"
	"github.com/mycrochip/trivia-api/internal/middleware"
)

// RouterConfig содержит всё, из чего собирается HTTP роутер
type RouterConfig struct {
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Category *CategoryHandler
	Question *QuestionHandler
	Quiz     *QuizHandler
	Health   *HealthHandler
	// RateLimit: nil отключает ограничение частоты
	RateLimit    gin.HandlerFunc
	AllowOrigins []string
}

// NewRouter собирает gin.Engine со всеми маршрутами API
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(NoRoute)
	router.NoMethod(NoMethod)

	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(gin.CustomRecovery(Recovery))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}

	// Настройка CORS
	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 1 && allowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", cfg.Health.Healthz)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("")
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit)
	}

	api.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/categories")
	})

	categories := api.Group("/categories")
	{
		categories.GET("", cfg.Category.GetCategories)

		categoryWithID := categories.Group("/:category_id")
		categoryWithID.Use(middleware.ExtractUintParam("category_id", "categoryID"))
		{
			categoryWithID.GET("", cfg.Category.GetCategory)
			categoryWithID.GET("/questions", cfg.Category.GetCategoryQuestions)
		}
	}

	questions := api.Group("/questions")
	{
		questions.GET("", cfg.Question.GetQuestions)
		questions.POST("", cfg.Question.PostQuestions)
		questions.POST("/import", cfg.Question.ImportQuestions)
		questions.GET("/export", cfg.Question.ExportQuestions)

		questionWithID := questions.Group("/:id")
		questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
		{
			questionWithID.GET("", cfg.Question.GetQuestion)
			questionWithID.PATCH("", cfg.Question.PatchQuestion)
			questionWithID.DELETE("", cfg.Question.DeleteQuestion)
		}
	}

	api.POST("/quizzes", cfg.Quiz.PlayQuiz)

	return router
}
