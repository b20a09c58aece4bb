package main

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lg/protein-plate-api/internal/nutrition"
	"lg/protein-plate-api/internal/session"
	"lg/protein-plate-api/internal/store"
)

// Handler holds shared dependencies (session store, clock) for all route handlers.
// The app serves a single local profile, so every route works on sessionID.
type Handler struct {
	store     store.Store
	sessionID uuid.UUID
	now       func() time.Time // overridable for tests

	// mu serializes load-modify-save cycles on the session.
	mu sync.Mutex
}

func newHandler(st store.Store, sessionID uuid.UUID, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: st, sessionID: sessionID, now: now}
}

/* ─── Session helpers ─────────────────────────────────────────────────── */

// viewSession loads the session for a read-only handler.
func (h *Handler) viewSession(c *gin.Context) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.store.Load(c, h.sessionID)
	if err != nil {
		sessionError(c, "viewSession", err)
		return nil, false
	}
	return s, true
}

// updateSession loads the session, applies fn and saves the result. If fn
// fails nothing is saved and the error is written as the response.
func (h *Handler) updateSession(c *gin.Context, fn func(s *session.Session) error) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.store.Load(c, h.sessionID)
	if err != nil {
		sessionError(c, "updateSession", err)
		return nil, false
	}
	if err := fn(s); err != nil {
		sessionError(c, "updateSession", err)
		return nil, false
	}
	if err := h.store.Save(c, s); err != nil {
		sessionError(c, "updateSession", err)
		return nil, false
	}
	return s, true
}

// sessionError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500.
func sessionError(c *gin.Context, caller string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		apiError(c, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrNoTarget), errors.Is(err, nutrition.ErrIncompleteProfile):
		apiError(c, http.StatusConflict, "profile incomplete")
	case errors.Is(err, session.ErrCompleted):
		apiError(c, http.StatusConflict, "onboarding already completed; reset to change it")
	case errors.Is(err, nutrition.ErrInvalidProfile),
		errors.Is(err, session.ErrInvalidAmount),
		errors.Is(err, session.ErrInvalidStep):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[%s] %v", caller, err)
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router. There is no auth:
// the server only listens on the local interface.
func (h *Handler) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/session", h.getSession)
	api.PATCH("/session/profile", h.patchProfile)
	api.PUT("/session/step", h.putStep)
	api.POST("/session/complete", h.completeSession)
	api.POST("/session/reset", h.resetSession)
	api.GET("/target", h.getTarget)
	api.POST("/target/adjust", h.adjustTarget)
	api.POST("/target/adjust-protein", h.adjustProtein)
	api.GET("/intake", h.getIntake)
	api.POST("/intake", h.addIntake)
	api.DELETE("/intake", h.resetIntake)
	api.POST("/calculator", h.calculate)
}
