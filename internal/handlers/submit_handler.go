package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	submitmodels "io.winapps.dailyreflect/internal/models/submit"
)

// Submit saves the session's answer for today. A blank answer is rejected
// without touching storage; a repeat submission for the same day overwrites
// the earlier one.
func (h *JournalHandler) Submit(c *gin.Context) {
	var req submitmodels.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sid, ok := sessionID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid session context"})
		return
	}

	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		c.JSON(http.StatusOK, submitmodels.SubmitResponse{
			Success: false,
			Message: "No response submitted.",
		})
		return
	}

	ctx := c.Request.Context()

	// The prompt is resolved before the write so the stored entry keeps a
	// copy of the exact question it answers.
	promptText, err := h.cache.Today(ctx)
	if err != nil {
		h.logError(c, err, "failed to resolve today's prompt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save response"})
		return
	}

	entry := journalmodels.Entry{
		Prompt:   promptText,
		Response: answer,
	}
	if err := h.responses.Put(ctx, sid, h.cache.TodayKey(), entry); err != nil {
		h.logError(c, err, "failed to save answer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save response"})
		return
	}

	c.JSON(http.StatusOK, submitmodels.SubmitResponse{
		Success: true,
		Message: "Response saved.",
	})
}
