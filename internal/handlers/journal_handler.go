package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.dailyreflect/internal/prompt"
	"io.winapps.dailyreflect/internal/store"
)

type JournalHandler struct {
	cache     *prompt.Cache
	responses store.ResponseStore
	logger    *zap.SugaredLogger
}

// NewJournalHandler creates the handler behind all journal routes.
func NewJournalHandler(cache *prompt.Cache, responses store.ResponseStore, logger *zap.SugaredLogger) *JournalHandler {
	return &JournalHandler{
		cache:     cache,
		responses: responses,
		logger:    logger,
	}
}

// sessionID extracts the session identifier set by the session middleware.
func sessionID(c *gin.Context) (string, bool) {
	sid := c.GetString("sid")
	return sid, sid != ""
}
