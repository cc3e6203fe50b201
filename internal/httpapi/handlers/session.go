package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumikid/tutor-backend/internal/tutor"
)

type startSessionReq struct {
	StudentName string   `json:"studentName"`
	Grade       string   `json:"grade"`
	Subjects    []string `json:"subjects"`
}

func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please send a studentName and grade to get started.")
		return
	}

	sess, welcome, err := h.Svc.StartSession(req.StudentName, req.Grade, req.Subjects)
	if err != nil {
		fail(c, http.StatusInternalServerError, "We couldn't start your session. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":      sess.ID,
		"welcomeMessage": welcome,
		"status":         "started",
		"sessionInfo": gin.H{
			"studentName": sess.StudentName,
			"grade":       sess.Grade,
			"subjects":    sess.Subjects,
		},
	})
}

func (h *Handler) SessionSummary(c *gin.Context) {
	sum, err := h.Svc.Summarize(c.Param("id"))
	if err != nil {
		if errors.Is(err, tutor.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, "We couldn't find that session.")
			return
		}
		fail(c, http.StatusInternalServerError, "We couldn't build your summary. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"duration":          sum.Duration,
		"totalInteractions": sum.TotalInteractions,
		"totalWarnings":     sum.TotalWarnings,
		"topicsExplored":    sum.TopicsExplored,
		"studentName":       sum.StudentName,
		"grade":             sum.Grade,
		"highlights":        sum.Highlights,
		"suggestions":       sum.Suggestions,
		"achievements":      sum.Achievements,
		"nextSteps":         sum.NextSteps,
	})
}

func (h *Handler) EndSession(c *gin.Context) {
	msg, err := h.Svc.End(c.Param("id"))
	if err != nil {
		if errors.Is(err, tutor.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, "We couldn't find that session.")
			return
		}
		fail(c, http.StatusInternalServerError, "We couldn't end your session. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ended",
		"message": msg,
	})
}

func (h *Handler) SessionStatus(c *gin.Context) {
	st, err := h.Svc.SessionStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, tutor.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, "We couldn't find that session.")
			return
		}
		fail(c, http.StatusInternalServerError, "We couldn't check your session. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":       st.Active,
		"duration":     st.Duration,
		"interactions": st.Interactions,
		"topics":       st.Topics,
	})
}
