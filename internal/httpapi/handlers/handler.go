package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumikid/tutor-backend/internal/session"
	"github.com/lumikid/tutor-backend/internal/tutor"
)

type Handler struct {
	Store *session.Store
	Svc   *tutor.Service
}

func NewHandler(store *session.Store, svc *tutor.Service) *Handler {
	return &Handler{Store: store, Svc: svc}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"activeSessions": h.Store.Len(),
		"uptime":         h.Store.Uptime().Round(time.Second).String(),
	})
}
