package handlers

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/response"
)

const Version = "1.0.0"

func HealthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":             "healthy",
		"version":            Version,
		"api_key_configured": strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")) != "",
	}, "")
}
