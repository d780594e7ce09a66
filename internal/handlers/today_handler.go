package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.dailyreflect/internal/store"
)

// Today renders the day's prompt together with the session's existing answer,
// if one has been saved.
func (h *JournalHandler) Today(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid session context"})
		return
	}

	ctx := c.Request.Context()

	promptText, err := h.cache.Today(ctx)
	if err != nil {
		h.logError(c, err, "failed to resolve today's prompt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load today's prompt"})
		return
	}

	response := ""
	entry, err := h.responses.Get(ctx, sid, h.cache.TodayKey())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logError(c, err, "failed to read today's answer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load today's answer"})
		return
	}
	if err == nil {
		response = entry.Response
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"prompt":   promptText,
		"response": response,
	})
}
