package main

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/protein-plate-api/internal/nutrition"
	"lg/protein-plate-api/internal/session"
)

// getTarget returns the active nutrition target with its display strings.
// GET /api/target. 409 while the profile is still incomplete.
func (h *Handler) getTarget(c *gin.Context) {
	s, ok := h.viewSession(c)
	if !ok {
		return
	}
	if s.Target == nil {
		apiError(c, http.StatusConflict, "profile incomplete")
		return
	}
	c.JSON(http.StatusOK, newTargetResponse(*s.Target))
}

// adjustTarget overrides one macro and rebalances the others.
// POST /api/target/adjust. Body: { "field": "carb", "value": 500 }.
// A change that would push the other macro under its floor is not an error:
// the response has applied=false and the unchanged target.
func (h *Handler) adjustTarget(c *gin.Context) {
	var body adjustTargetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	field, err := nutrition.ParseField(body.Field)
	if err != nil {
		apiError(c, http.StatusBadRequest, "field must be one of: protein, carb, fat")
		return
	}
	if body.Value == nil || *body.Value < 0 {
		apiError(c, http.StatusBadRequest, "value must be a non-negative number of grams")
		return
	}

	var applied bool
	s, ok := h.updateSession(c, func(s *session.Session) error {
		var err error
		applied, err = s.AdjustMacro(field, *body.Value)
		return err
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, adjustTargetResponse{
		Applied: applied,
		Target:  newTargetResponse(*s.Target),
	})
}

// adjustProtein moves protein away from the baseline and reprojects the goal
// date. POST /api/target/adjust-protein. Body: { "delta_grams": 27 }.
func (h *Handler) adjustProtein(c *gin.Context) {
	var body adjustProteinRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.DeltaGrams == nil {
		apiError(c, http.StatusBadRequest, "delta_grams is required")
		return
	}

	var (
		adj    nutrition.ProteinAdjustment
		warned bool
	)
	s, ok := h.updateSession(c, func(s *session.Session) error {
		var err error
		adj, warned, err = s.AdjustProtein(*body.DeltaGrams)
		return err
	})
	if !ok {
		return
	}

	resp := adjustProteinResponse{
		Target:           newTargetResponse(*s.Target),
		PercentDeviation: adj.PercentDeviation,
		ExceedsThreshold: adj.ExceedsThreshold,
	}
	if warned {
		resp.Warning = thresholdWarning(adj.PercentDeviation)
	}
	c.JSON(http.StatusOK, resp)
}

func thresholdWarning(pct float64) string {
	direction := "above"
	if pct < 0 {
		direction = "below"
	}
	return fmt.Sprintf("Your protein target is %.0f%% %s the recommended amount", math.Abs(pct), direction)
}
