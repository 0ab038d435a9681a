package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
	"github.com/learnloop/learnloop-backend/internal/services"
)

type ConceptHandler struct {
	log               *logger.Logger
	conceptService    services.ConceptService
	navigationService services.NavigationService
}

func NewConceptHandler(log *logger.Logger, conceptService services.ConceptService, navigationService services.NavigationService) *ConceptHandler {
	return &ConceptHandler{
		log:               log.With("handler", "ConceptHandler"),
		conceptService:    conceptService,
		navigationService: navigationService,
	}
}

type generateConceptsRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ModuleID  string `json:"module_id" binding:"required"`
}

func (h *ConceptHandler) Generate(c *gin.Context) {
	var req generateConceptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id and module_id are required")
		return
	}
	mc, already, err := h.conceptService.Generate(c.Request.Context(), req.SessionID, req.ModuleID)
	if err != nil {
		h.log.Error("Generate failed", "error", err, "session_id", req.SessionID, "module_id", req.ModuleID)
		response.Error(c, err)
		return
	}
	message := fmt.Sprintf("Generated %d concepts", len(mc.Concepts))
	if already {
		message = "Concepts already generated"
	}
	response.OK(c, mc, message)
}

type conceptContentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ConceptID string `json:"concept_id" binding:"required"`
}

func (h *ConceptHandler) GenerateContent(c *gin.Context) {
	var req conceptContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id and concept_id are required")
		return
	}
	concept, already, err := h.conceptService.GenerateContent(c.Request.Context(), req.SessionID, req.ConceptID)
	if err != nil {
		h.log.Error("GenerateContent failed", "error", err, "session_id", req.SessionID, "concept_id", req.ConceptID)
		response.Error(c, err)
		return
	}
	message := fmt.Sprintf("Generated content with %d blocks", len(concept.ContentBlocks))
	if already {
		message = "Content already generated"
	}
	response.OK(c, concept, message)
}

func (h *ConceptHandler) GenerateNotes(c *gin.Context) {
	var req conceptContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id and concept_id are required")
		return
	}
	concept, already, err := h.conceptService.GenerateNotes(c.Request.Context(), req.SessionID, req.ConceptID)
	if err != nil {
		h.log.Error("GenerateNotes failed", "error", err, "session_id", req.SessionID, "concept_id", req.ConceptID)
		response.Error(c, err)
		return
	}
	message := "Generated notes summary"
	if already {
		message = "Notes already generated"
	}
	response.OK(c, concept, message)
}

func (h *ConceptHandler) Get(c *gin.Context) {
	mc, err := h.conceptService.Get(c.Request.Context(), c.Param("session_id"), c.Param("module_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, mc, "")
}

func (h *ConceptHandler) GetConcept(c *gin.Context) {
	concept, module, err := h.conceptService.GetConcept(c.Request.Context(), c.Param("session_id"), c.Param("concept_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"concept": concept, "module": module}, "")
}

type progressRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ConceptHandler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	concept, err := h.conceptService.UpdateProgress(c.Request.Context(), c.Param("session_id"), c.Param("concept_id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, concept, "Progress updated")
}

func (h *ConceptHandler) Navigation(c *gin.Context) {
	tree, err := h.navigationService.Tree(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tree, "")
}
