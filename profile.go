package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/protein-plate-api/internal/session"
)

// getSession returns the whole session: profile, target, onboarding step,
// today's intake and the derived state.
// GET /api/session.
func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.viewSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

// patchProfile merges the provided onboarding answers into the profile.
// PATCH /api/session/profile. Uses pointer fields in the request body to
// distinguish "not provided" from zero. Any accepted change replaces the
// target: a fresh baseline when the profile is sufficient, otherwise none.
func (h *Handler) patchProfile(c *gin.Context) {
	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.isEmpty() {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	// Validate enums and units before touching the session so a bad value
	// never leaves a half-applied patch behind.
	patch, err := body.toProfile(h.now())
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	s, ok := h.updateSession(c, func(s *session.Session) error {
		return s.UpdateProfile(patch)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

// putStep records the onboarding step the UI is showing.
// PUT /api/session/step. Body: { "step": 3 }.
func (h *Handler) putStep(c *gin.Context) {
	var body struct {
		Step *int `json:"step"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Step == nil {
		apiError(c, http.StatusBadRequest, "step is required")
		return
	}

	s, ok := h.updateSession(c, func(s *session.Session) error {
		return s.SetStep(*body.Step)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

// completeSession finalizes onboarding; the current target becomes the
// daily target. 409 if there is no target yet.
// POST /api/session/complete.
func (h *Handler) completeSession(c *gin.Context) {
	s, ok := h.updateSession(c, (*session.Session).Complete)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

// resetSession wipes the profile, target and intake, keeping the session id.
// POST /api/session/reset.
func (h *Handler) resetSession(c *gin.Context) {
	s, ok := h.updateSession(c, func(s *session.Session) error {
		s.Reset()
		return nil
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}
