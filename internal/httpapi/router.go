package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumikid/tutor-backend/internal/httpapi/handlers"
	"github.com/lumikid/tutor-backend/internal/httpapi/middleware"
	"github.com/lumikid/tutor-backend/internal/observability"
	"github.com/lumikid/tutor-backend/internal/session"
	"github.com/lumikid/tutor-backend/internal/tutor"
)

func NewRouter(store *session.Store, svc *tutor.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(store, svc)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	r.POST("/session/start", h.StartSession)
	r.POST("/chat", h.Chat)
	r.GET("/session/:id/summary", h.SessionSummary)
	r.POST("/session/:id/end", h.EndSession)
	r.GET("/session/:id/status", h.SessionStatus)

	return r
}
