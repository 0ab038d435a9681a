package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/response"
)

type DomainHandler struct {
	log      *logger.Logger
	registry *domains.Registry
}

func NewDomainHandler(log *logger.Logger, registry *domains.Registry) *DomainHandler {
	return &DomainHandler{
		log:      log.With("handler", "DomainHandler"),
		registry: registry,
	}
}

func (h *DomainHandler) List(c *gin.Context) {
	list := h.registry.List()
	out := make([]gin.H, 0, len(list))
	for _, dom := range list {
		out = append(out, gin.H{
			"id":          dom.ID(),
			"name":        dom.Name(),
			"description": dom.Description(),
		})
	}
	response.OK(c, gin.H{"domains": out}, "")
}
