package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery turns panics into a friendly 500 with a fallback string; internal
// detail stays in the logs.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Recovery] panic: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":    "Something went wrong on our side.",
					"fallback": "I'm having a little trouble right now. Please try again in a moment!",
				})
			}
		}()
		c.Next()
	}
}
