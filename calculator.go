package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lg/protein-plate-api/internal/nutrition"
)

// calculatorRequest is the body for POST /api/calculator: a full profile in
// one go plus an optional g/kg multiplier picked on the slider.
type calculatorRequest struct {
	patchProfileRequest
	GramsPerKg *float64 `json:"grams_per_kg"`
}

type calculatorResponse struct {
	targetResponse
	// MultiplierProteinG is weight * grams_per_kg, clamped to the slider's
	// range; only set when grams_per_kg was sent.
	MultiplierProteinG *int `json:"multiplier_protein_g,omitempty"`
}

// ageOn returns the age in whole years on the given day.
func ageOn(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// missingSimpleFields names the simple-mode inputs p still lacks.
func missingSimpleFields(p nutrition.Profile) []string {
	var missing []string
	if p.Weight == nil {
		missing = append(missing, "weight")
	}
	if p.Height == nil {
		missing = append(missing, "height")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.Gender == nil {
		missing = append(missing, "gender")
	}
	if p.ActivityLevel == nil {
		missing = append(missing, "activity_level")
	}
	if p.Goal == nil {
		missing = append(missing, "goal")
	}
	return missing
}

// calculate runs the baseline calculator without touching the session.
// POST /api/calculator. Returns 400 listing the missing fields when the
// profile is not sufficient for any mode.
func (h *Handler) calculate(c *gin.Context) {
	var body calculatorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := body.toProfile(h.now())
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	t, err := nutrition.ComputeBaseline(p, h.now())
	if err != nil {
		if errors.Is(err, nutrition.ErrIncompleteProfile) {
			apiError(c, http.StatusBadRequest, "missing fields: "+strings.Join(missingSimpleFields(p), ", "))
			return
		}
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp := calculatorResponse{targetResponse: newTargetResponse(t)}
	if body.GramsPerKg != nil {
		weight := p.Weight
		if weight == nil {
			weight = p.CurrentWeight
		}
		if weight != nil {
			g := nutrition.ProteinForMultiplier(weight.Kg(), *body.GramsPerKg)
			resp.MultiplierProteinG = &g
		}
	}
	c.JSON(http.StatusOK, resp)
}
