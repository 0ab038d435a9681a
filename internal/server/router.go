package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/learnloop/learnloop-backend/internal/handlers"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/middleware"
	"github.com/learnloop/learnloop-backend/internal/observability"
)

type RouterConfig struct {
	Log               *logger.Logger
	DomainHandler     *handlers.DomainHandler
	OnboardingHandler *handlers.OnboardingHandler
	TOCHandler        *handlers.TOCHandler
	ModuleHandler     *handlers.ModuleHandler
	ConceptHandler    *handlers.ConceptHandler
	CoachHandler      *handlers.CoachHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Log))
	router.Use(otelgin.Middleware("learnloop-backend"))
	router.Use(observability.MetricsMiddleware())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.GET("/metrics", observability.MetricsHandler())

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/domains", cfg.DomainHandler.List)

		api.POST("/onboarding/generate-questions", cfg.OnboardingHandler.GenerateQuestions)

		toc := api.Group("/toc")
		{
			toc.POST("/generate", cfg.TOCHandler.Generate)
			toc.GET("/session/:session_id", cfg.TOCHandler.Get)
			toc.POST("/learning-path", cfg.TOCHandler.CreateLearningPath)
			toc.PUT("/learning-path", cfg.TOCHandler.UpdateLearningPath)
			toc.GET("/learning-path/:session_id", cfg.TOCHandler.GetLearningPath)
			toc.GET("/user/:user_id/learning-paths", cfg.TOCHandler.ListUserPaths)
			toc.GET("/topic/:session_id/:topic_id", cfg.TOCHandler.TopicDetails)
			toc.GET("/statistics", cfg.TOCHandler.Statistics)
		}

		modules := api.Group("/modules")
		{
			modules.POST("/generate", cfg.ModuleHandler.Generate)
			modules.GET("/session/:session_id", cfg.ModuleHandler.ListForSession)
			modules.GET("/session/:session_id/topic/:topic_id", cfg.ModuleHandler.Get)
			modules.POST("/session/:session_id/select", cfg.ModuleHandler.Select)
			modules.GET("/session/:session_id/current", cfg.ModuleHandler.Current)
			modules.GET("/session/:session_id/navigation", cfg.ModuleHandler.Navigation)
		}

		concepts := api.Group("/concepts")
		{
			concepts.POST("/generate", cfg.ConceptHandler.Generate)
			concepts.POST("/content", cfg.ConceptHandler.GenerateContent)
			concepts.POST("/notes", cfg.ConceptHandler.GenerateNotes)
			concepts.GET("/session/:session_id/module/:module_id", cfg.ConceptHandler.Get)
			concepts.GET("/session/:session_id/concept/:concept_id", cfg.ConceptHandler.GetConcept)
			concepts.POST("/session/:session_id/concept/:concept_id/progress", cfg.ConceptHandler.UpdateProgress)
			concepts.GET("/session/:session_id/navigation", cfg.ConceptHandler.Navigation)
		}

		coach := api.Group("/coach")
		{
			coach.POST("/hint", cfg.CoachHandler.Hint)
			coach.GET("/motivation", cfg.CoachHandler.Motivation)
		}
	}

	return router
}
