package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// History renders the session's past entries, most recent first. Entries are
// scoped to the requesting session only.
func (h *JournalHandler) History(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid session context"})
		return
	}

	entries, err := h.responses.List(c.Request.Context(), sid)
	if err != nil {
		h.logError(c, err, "failed to list history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.HTML(http.StatusOK, "history.html", gin.H{
		"entries": entries,
	})
}
