package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumikid/tutor-backend/internal/tutor"
)

type chatReq struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message"`
}

func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please send a sessionId and a message.")
		return
	}

	res, err := h.Svc.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, tutor.ErrSessionNotFound):
			fail(c, http.StatusBadRequest, "Your session has expired. Please start a new one!")
		case errors.Is(err, tutor.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, "It looks like your message was empty. What would you like to ask?")
		case errors.Is(err, tutor.ErrInteractionLimit):
			fail(c, http.StatusTooManyRequests, "You've done so much learning today! Start a new session to keep going.")
		default:
			log.Printf("[Chat] unexpected error session=%s err=%v", req.SessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "Something went wrong on our side.",
				"fallback": "I'm having a little trouble right now. Could you try asking again?",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":      res.Text,
		"subject":       res.Subject,
		"suggestions":   res.Suggestions,
		"encouragement": res.Encouragement,
		"status":        res.Status,
		"sessionStats": gin.H{
			"totalWarnings":   res.Stats.TotalWarnings,
			"topicsDiscussed": res.Stats.TopicsDiscussed,
		},
	})
}
