package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
	"github.com/learnloop/learnloop-backend/internal/services"
)

type CoachHandler struct {
	log          *logger.Logger
	coachService services.CoachService
}

func NewCoachHandler(log *logger.Logger, coachService services.CoachService) *CoachHandler {
	return &CoachHandler{
		log:          log.With("handler", "CoachHandler"),
		coachService: coachService,
	}
}

func (h *CoachHandler) Hint(c *gin.Context) {
	var req services.HintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid hint request body")
		return
	}
	hint, err := h.coachService.Hint(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Hint failed", "error", err, "exercise", req.ExerciseTitle)
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"hint": hint}, "")
}

func (h *CoachHandler) Motivation(c *gin.Context) {
	domainID := c.DefaultQuery("domain", "data_science")
	stage := c.DefaultQuery("stage", "progress")
	message, err := h.coachService.Motivation(domainID, stage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": message, "stage": stage}, "")
}
