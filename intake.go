package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/protein-plate-api/internal/session"
)

// maxIntakeGrams caps a single logged amount; anything larger is a typo.
const maxIntakeGrams = 1000

func (h *Handler) intakeSummary(s *session.Session) intakeResponse {
	return intakeResponse{
		Date:          h.now().Format("2006-01-02"),
		DailyProgress: s.Progress(),
	}
}

// getIntake returns protein consumed today against the active target.
// GET /api/intake. Target is 0 until a baseline exists.
func (h *Handler) getIntake(c *gin.Context) {
	s, ok := h.viewSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.intakeSummary(s))
}

// addIntake logs protein eaten today.
// POST /api/intake. Body: { "protein_g": 30 }.
func (h *Handler) addIntake(c *gin.Context) {
	var body struct {
		ProteinG int `json:"protein_g"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ProteinG <= 0 || body.ProteinG > maxIntakeGrams {
		apiError(c, http.StatusBadRequest, "protein_g must be between 1 and 1000")
		return
	}

	s, ok := h.updateSession(c, func(s *session.Session) error {
		return s.AddConsumedProtein(body.ProteinG)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, h.intakeSummary(s))
}

// resetIntake zeroes today's consumed protein. The nightly job does the same
// for every session.
// DELETE /api/intake.
func (h *Handler) resetIntake(c *gin.Context) {
	s, ok := h.updateSession(c, func(s *session.Session) error {
		s.ResetConsumedProtein()
		return nil
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.intakeSummary(s))
}
