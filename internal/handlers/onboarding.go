package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
	"github.com/learnloop/learnloop-backend/internal/services"
)

type OnboardingHandler struct {
	log               *logger.Logger
	onboardingService services.OnboardingService
}

func NewOnboardingHandler(log *logger.Logger, onboardingService services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		log:               log.With("handler", "OnboardingHandler"),
		onboardingService: onboardingService,
	}
}

type generateQuestionsRequest struct {
	LearningTopic string `json:"learning_topic" binding:"required"`
	DailyTime     string `json:"daily_time"`
	TotalDuration string `json:"total_duration"`
}

func (h *OnboardingHandler) GenerateQuestions(c *gin.Context) {
	var req generateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "learning_topic is required")
		return
	}
	questions, message, err := h.onboardingService.GenerateQuestions(c.Request.Context(), req.LearningTopic, req.DailyTime, req.TotalDuration)
	if err != nil {
		h.log.Error("GenerateQuestions failed", "error", err, "topic", req.LearningTopic)
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"questions": questions}, message)
}
