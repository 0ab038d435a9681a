package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
	"github.com/learnloop/learnloop-backend/internal/services"
)

type ModuleHandler struct {
	log               *logger.Logger
	moduleService     services.ModuleService
	navigationService services.NavigationService
}

func NewModuleHandler(log *logger.Logger, moduleService services.ModuleService, navigationService services.NavigationService) *ModuleHandler {
	return &ModuleHandler{
		log:               log.With("handler", "ModuleHandler"),
		moduleService:     moduleService,
		navigationService: navigationService,
	}
}

type generateModulesRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	TopicID   string `json:"topic_id" binding:"required"`
}

func (h *ModuleHandler) Generate(c *gin.Context) {
	var req generateModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id and topic_id are required")
		return
	}
	tm, already, err := h.moduleService.Generate(c.Request.Context(), req.SessionID, req.TopicID)
	if err != nil {
		h.log.Error("Generate failed", "error", err, "session_id", req.SessionID, "topic_id", req.TopicID)
		response.Error(c, err)
		return
	}
	message := fmt.Sprintf("Generated %d modules", len(tm.Modules))
	if already {
		message = "Modules already generated"
	}
	response.OK(c, tm, message)
}

func (h *ModuleHandler) Get(c *gin.Context) {
	tm, err := h.moduleService.Get(c.Request.Context(), c.Param("session_id"), c.Param("topic_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tm, "")
}

func (h *ModuleHandler) ListForSession(c *gin.Context) {
	topics, err := h.moduleService.ListForSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"topics": topics, "count": len(topics)}, "")
}

type selectModuleRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
}

func (h *ModuleHandler) Select(c *gin.Context) {
	var req selectModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "module_id is required")
		return
	}
	module, err := h.moduleService.Select(c.Request.Context(), c.Param("session_id"), req.ModuleID)
	if err != nil {
		h.log.Error("Select failed", "error", err, "session_id", c.Param("session_id"), "module_id", req.ModuleID)
		response.Error(c, err)
		return
	}
	response.OK(c, module, "Module selected")
}

func (h *ModuleHandler) Current(c *gin.Context) {
	module, err := h.moduleService.Current(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, module, "")
}

func (h *ModuleHandler) Navigation(c *gin.Context) {
	tree, err := h.navigationService.Tree(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tree, "")
}
