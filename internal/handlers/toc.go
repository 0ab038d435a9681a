package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
	"github.com/learnloop/learnloop-backend/internal/services"
)

type TOCHandler struct {
	log         *logger.Logger
	tocService  services.TOCService
	pathService services.PathService
}

func NewTOCHandler(log *logger.Logger, tocService services.TOCService, pathService services.PathService) *TOCHandler {
	return &TOCHandler{
		log:         log.With("handler", "TOCHandler"),
		tocService:  tocService,
		pathService: pathService,
	}
}

type generateTOCRequest struct {
	Domain      string         `json:"domain" binding:"required"`
	UserID      string         `json:"user_id"`
	Preferences map[string]any `json:"preferences"`
}

func (h *TOCHandler) Generate(c *gin.Context) {
	var req generateTOCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "domain is required")
		return
	}
	sessionID, toc, err := h.tocService.Generate(c.Request.Context(), req.Domain, req.Preferences)
	if err != nil {
		h.log.Error("Generate failed", "error", err, "domain", req.Domain)
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "toc": toc},
		fmt.Sprintf("Generated table of contents with %d topics", len(toc.Topics)))
}

func (h *TOCHandler) Get(c *gin.Context) {
	toc, err := h.tocService.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toc, "")
}

type createPathRequest struct {
	UserID           string         `json:"user_id" binding:"required"`
	SessionID        string         `json:"session_id" binding:"required"`
	SelectedTopicIDs []string       `json:"selected_topic_ids" binding:"required"`
	Preferences      map[string]any `json:"preferences"`
}

func (h *TOCHandler) CreateLearningPath(c *gin.Context) {
	var req createPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "user_id, session_id and selected_topic_ids are required")
		return
	}
	path, err := h.pathService.Create(c.Request.Context(), req.UserID, req.SessionID, req.SelectedTopicIDs, req.Preferences)
	if err != nil {
		h.log.Error("CreateLearningPath failed", "error", err, "session_id", req.SessionID)
		response.Error(c, err)
		return
	}
	response.OK(c, path, "Learning path created")
}

type updatePathRequest struct {
	SessionID        string   `json:"session_id" binding:"required"`
	SelectedTopicIDs []string `json:"selected_topic_ids" binding:"required"`
}

func (h *TOCHandler) UpdateLearningPath(c *gin.Context) {
	var req updatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id and selected_topic_ids are required")
		return
	}
	path, err := h.pathService.Update(c.Request.Context(), req.SessionID, req.SelectedTopicIDs)
	if err != nil {
		h.log.Error("UpdateLearningPath failed", "error", err, "session_id", req.SessionID)
		response.Error(c, err)
		return
	}
	response.OK(c, path, "Learning path updated")
}

func (h *TOCHandler) GetLearningPath(c *gin.Context) {
	path, err := h.pathService.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, path, "")
}

func (h *TOCHandler) ListUserPaths(c *gin.Context) {
	paths, err := h.pathService.ListForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"learning_paths": paths, "count": len(paths)}, "")
}

func (h *TOCHandler) TopicDetails(c *gin.Context) {
	details, err := h.tocService.TopicDetails(c.Request.Context(), c.Param("session_id"), c.Param("topic_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, details, "")
}

func (h *TOCHandler) Statistics(c *gin.Context) {
	stats, err := h.tocService.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, "")
}
