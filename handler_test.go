package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/protein-plate-api/internal/nutrition"
	"lg/protein-plate-api/internal/session"
	"lg/protein-plate-api/internal/store"
)

var testNow = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

const weightGoalBody = `{
	"current_weight": {"value": 70, "unit": "kg"},
	"target_weight": {"value": 77, "unit": "kg"},
	"goal_timeline_months": 6,
	"activity_level": "moderate"
}`

// setupHandlerTest builds a router over an in-memory store holding one fresh
// session. No DB needed.
func setupHandlerTest(t *testing.T) (*gin.Engine, *Handler, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return testNow }
	st := store.NewMemory(session.Options{
		Now:      clock,
		Notifier: session.NotifierFunc(func(session.ThresholdEvent) {}),
	})
	s, err := st.Create(context.Background())
	require.NoError(t, err)

	h := newHandler(st, s.ID, clock)
	router := gin.New()
	h.registerRoutes(router)
	return router, h, s.ID
}

// doRequest sends a request with an optional JSON body.
func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	return decodeBody[map[string]string](t, w)["error"]
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func TestGetTarget_IncompleteProfile(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "GET", "/api/target", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "profile incomplete", errorMessage(t, w))
}

func TestPatchProfile_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"age":`},
		{"empty patch", `{}`},
		{"unknown activity", `{"activity_level": "couch"}`},
		{"unknown goal", `{"goal": "shred"}`},
		{"unknown unit", `{"weight": {"value": 70, "unit": "stone"}}`},
		{"negative weight", `{"weight": {"value": -5}}`},
		{"zero timeline", `{"goal_timeline_months": 0}`},
		{"age and dob", `{"age": 30, "date_of_birth": "1996-01-01"}`},
		{"bad dob", `{"date_of_birth": "01/01/1996"}`},
		{"unknown diet", `{"dietary_preference": "carnivore"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _, _ := setupHandlerTest(t)
			w := doRequest(router, "PATCH", "/api/session/profile", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestPatchProfile_PartialStaysUninitialized(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "PATCH", "/api/session/profile", `{"current_weight": {"value": 154, "unit": "lbs"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "uninitialized", resp["state"])
	assert.Equal(t, "incomplete", resp["mode"])
	assert.Nil(t, resp["target"])
}

func TestPatchProfile_WeightGoalBaseline(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "PATCH", "/api/session/profile", weightGoalBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "baseline", resp["state"])
	assert.Equal(t, "weight-goal", resp["mode"])

	w = doRequest(router, "GET", "/api/target", "")
	require.Equal(t, http.StatusOK, w.Code)
	target := decodeBody[targetResponse](t, w)
	assert.Equal(t, 135, target.ProteinGrams)
	assert.Equal(t, 3240, target.Calories)
	assert.Equal(t, 324, target.CarbGrams)
	assert.Equal(t, 108, target.FatGrams)
	assert.Equal(t, "July 1, 2026", target.GoalDateDisplay)
	assert.Equal(t, 5, target.ChickenBreasts)
	assert.Equal(t, "That's equivalent to 5 chicken breasts per day", target.ProteinDescription)
}

func TestPatchProfile_DateOfBirth(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "PATCH", "/api/session/profile", `{"date_of_birth": "1996-06-15"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[struct {
		Profile nutrition.Profile `json:"profile"`
	}](t, w)
	require.NotNil(t, resp.Profile.Age)
	assert.Equal(t, 29, *resp.Profile.Age)
}

func TestPatchProfile_ResubmitKeepsAdjustedTarget(t *testing.T) {
	router, _, _ := setupHandlerTest(t)
	require.Equal(t, http.StatusOK, doRequest(router, "PATCH", "/api/session/profile", weightGoalBody).Code)
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/target/adjust", `{"field": "carb", "value": 500}`).Code)

	w := doRequest(router, "PATCH", "/api/session/profile", weightGoalBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "adjusted", decodeBody[map[string]any](t, w)["state"])

	w = doRequest(router, "PATCH", "/api/session/profile", `{"dietary_preference": "vegan"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[struct {
		State   nutrition.State   `json:"state"`
		Profile nutrition.Profile `json:"profile"`
	}](t, w)
	assert.Equal(t, nutrition.Adjusted, resp.State)
	require.NotNil(t, resp.Profile.DietaryPreference)
	assert.Equal(t, nutrition.Vegan, *resp.Profile.DietaryPreference)

	w = doRequest(router, "GET", "/api/target", "")
	assert.Equal(t, 500, decodeBody[targetResponse](t, w).CarbGrams)
}

/* ─── Target adjustments ─────────────────────────────────────────────── */

func TestAdjustTarget(t *testing.T) {
	router, _, _ := setupHandlerTest(t)
	require.Equal(t, http.StatusOK, doRequest(router, "PATCH", "/api/session/profile", weightGoalBody).Code)

	// 650g carbs leaves fat under its floor.
	w := doRequest(router, "POST", "/api/target/adjust", `{"field": "carb", "value": 650}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decodeBody[adjustTargetResponse](t, w)
	assert.False(t, rejected.Applied)
	assert.Equal(t, 324, rejected.Target.CarbGrams)
	assert.Equal(t, nutrition.Baseline, rejected.Target.State)

	w = doRequest(router, "POST", "/api/target/adjust", `{"field": "carbs", "value": 500}`)
	require.Equal(t, http.StatusOK, w.Code)
	accepted := decodeBody[adjustTargetResponse](t, w)
	assert.True(t, accepted.Applied)
	assert.Equal(t, 500, accepted.Target.CarbGrams)
	assert.Equal(t, 78, accepted.Target.FatGrams)
	assert.Equal(t, nutrition.Adjusted, accepted.Target.State)

	// The change was persisted.
	w = doRequest(router, "GET", "/api/target", "")
	assert.Equal(t, 78, decodeBody[targetResponse](t, w).FatGrams)
}

func TestAdjustTarget_BadRequests(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "POST", "/api/target/adjust", `{"field": "sugar", "value": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/target/adjust", `{"field": "fat", "value": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/target/adjust", `{"field": "fat"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Well-formed but nothing to adjust yet.
	w = doRequest(router, "POST", "/api/target/adjust", `{"field": "fat", "value": 90}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdjustProtein_WarnsOnce(t *testing.T) {
	router, _, _ := setupHandlerTest(t)
	require.Equal(t, http.StatusOK, doRequest(router, "PATCH", "/api/session/profile", weightGoalBody).Code)

	w := doRequest(router, "POST", "/api/target/adjust-protein", `{"delta_grams": 27}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	small := decodeBody[adjustProteinResponse](t, w)
	assert.Equal(t, 162, small.Target.ProteinGrams)
	assert.InDelta(t, 20.0, small.PercentDeviation, 1e-9)
	assert.False(t, small.ExceedsThreshold)
	assert.Empty(t, small.Warning)
	assert.Equal(t, "May 25, 2026", small.Target.GoalDateDisplay)

	w = doRequest(router, "POST", "/api/target/adjust-protein", `{"delta_grams": -40}`)
	big := decodeBody[adjustProteinResponse](t, w)
	assert.True(t, big.ExceedsThreshold)
	assert.Equal(t, "Your protein target is 30% below the recommended amount", big.Warning)

	w = doRequest(router, "POST", "/api/target/adjust-protein", `{"delta_grams": 50}`)
	again := decodeBody[adjustProteinResponse](t, w)
	assert.True(t, again.ExceedsThreshold)
	assert.Empty(t, again.Warning, "warning fires once per baseline")

	w = doRequest(router, "POST", "/api/target/adjust-protein", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

/* ─── Completion ─────────────────────────────────────────────────────── */

func TestCompleteAndReset(t *testing.T) {
	router, _, id := setupHandlerTest(t)

	w := doRequest(router, "POST", "/api/session/complete", "")
	assert.Equal(t, http.StatusConflict, w.Code, "needs a target first")

	require.Equal(t, http.StatusOK, doRequest(router, "PATCH", "/api/session/profile", weightGoalBody).Code)
	require.Equal(t, http.StatusOK, doRequest(router, "PUT", "/api/session/step", `{"step": 5}`).Code)
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/session/complete", "").Code)

	w = doRequest(router, "PATCH", "/api/session/profile", `{"goal_timeline_months": 3}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doRequest(router, "POST", "/api/target/adjust", `{"field": "fat", "value": 90}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, "POST", "/api/session/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, id.String(), resp["id"])
	assert.Equal(t, "uninitialized", resp["state"])
	assert.Equal(t, false, resp["completed"])
	assert.EqualValues(t, 0, resp["current_step"])
}

func TestPutStep(t *testing.T) {
	router, _, _ := setupHandlerTest(t)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, "PUT", "/api/session/step", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, "PUT", "/api/session/step", `{"step": -1}`).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "PUT", "/api/session/step", `{"step": 2}`).Code)
}

/* ─── Intake ─────────────────────────────────────────────────────────── */

func TestIntake(t *testing.T) {
	router, h, _ := setupHandlerTest(t)
	require.Equal(t, http.StatusOK, doRequest(router, "PATCH", "/api/session/profile", weightGoalBody).Code)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, "POST", "/api/intake", `{"protein_g": 0}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, "POST", "/api/intake", `{"protein_g": 5000}`).Code)

	w := doRequest(router, "POST", "/api/intake", `{"protein_g": 60}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doRequest(router, "POST", "/api/intake", `{"protein_g": 40}`)
	got := decodeBody[intakeResponse](t, w)
	assert.Equal(t, "2026-01-01", got.Date)
	assert.Equal(t, 100, got.ConsumedGrams)
	assert.Equal(t, 135, got.TargetGrams)
	assert.Equal(t, 35, got.RemainingGrams)

	// The nightly job clears it.
	resetIntakeJob(h)()
	w = doRequest(router, "GET", "/api/intake", "")
	assert.Zero(t, decodeBody[intakeResponse](t, w).ConsumedGrams)

	require.Equal(t, http.StatusCreated, doRequest(router, "POST", "/api/intake", `{"protein_g": 20}`).Code)
	w = doRequest(router, "DELETE", "/api/intake", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decodeBody[intakeResponse](t, w).ConsumedGrams)
}

/* ─── Calculator ─────────────────────────────────────────────────────── */

func TestCalculate_Simple(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "POST", "/api/calculator", `{
		"weight": {"value": 70},
		"height": {"value": 175},
		"age": 30,
		"gender": "male",
		"activity_level": "moderate",
		"goal": "maintenance",
		"grams_per_kg": 2.0
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeBody[calculatorResponse](t, w)
	assert.Equal(t, 112, got.ProteinGrams)
	assert.Equal(t, 2688, got.Calories)
	assert.Equal(t, 269, got.CarbGrams)
	assert.Equal(t, 90, got.FatGrams)
	require.NotNil(t, got.BMR)
	assert.Equal(t, 1649, *got.BMR)
	require.NotNil(t, got.TDEE)
	assert.Equal(t, 2556, *got.TDEE)
	assert.Empty(t, got.GoalDateDisplay)
	require.NotNil(t, got.MultiplierProteinG)
	assert.Equal(t, 140, *got.MultiplierProteinG)

	// The calculator never touches the session.
	w = doRequest(router, "GET", "/api/target", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCalculate_MissingFields(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(router, "POST", "/api/calculator", `{"weight": {"value": 70}, "age": 30}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing fields: height, gender, activity_level, goal", errorMessage(t, w))
}

func TestAgeOn(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 35, ageOn(dob, time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 36, ageOn(dob, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
}

/* ─── Startup ────────────────────────────────────────────────────────── */

func TestEnsureSession(t *testing.T) {
	ctx := context.Background()
	opts := session.Options{Now: func() time.Time { return testNow }}
	st := store.NewMemory(opts)

	id := uuid.New()
	got, err := ensureSession(ctx, st, id, opts)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	s, err := st.Load(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.SetStep(2))
	require.NoError(t, st.Save(ctx, s))

	// An existing session is left alone.
	_, err = ensureSession(ctx, st, id, opts)
	require.NoError(t, err)
	s, err = st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentStep)

	created, err := ensureSession(ctx, st, uuid.Nil, opts)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BIND_HOST", "")
	t.Setenv("DB_URL", "")
	t.Setenv("SESSION_ID", "")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, http://127.0.0.1:5173")
	t.Setenv("INTAKE_RESET_SCHEDULE", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", cfg.addr())
	assert.Empty(t, cfg.DBURL)
	assert.Equal(t, uuid.Nil, cfg.SessionID)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "0 0 0 * * *", cfg.IntakeResetSchedule)

	t.Setenv("SESSION_ID", "not-a-uuid")
	_, err = loadConfig()
	assert.Error(t, err)
}

// gatedStore pauses the first Load until release is closed so a test can
// run something between a request's load and save.
type gatedStore struct {
	store.Store
	loaded  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Load(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s, err := g.Store.Load(ctx, id)
	g.once.Do(func() {
		close(g.loaded)
		<-g.release
	})
	return s, err
}

func TestResetIntakeJob_WaitsForInFlightRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	opts := session.Options{Now: func() time.Time { return testNow }}
	mem := store.NewMemory(opts)

	s, err := mem.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AddConsumedProtein(80))
	require.NoError(t, mem.Save(ctx, s))

	gated := &gatedStore{Store: mem, loaded: make(chan struct{}), release: make(chan struct{})}
	h := newHandler(gated, s.ID, opts.Now)
	router := gin.New()
	h.registerRoutes(router)

	requestDone := make(chan int)
	go func() {
		requestDone <- doRequest(router, "PUT", "/api/session/step", `{"step": 3}`).Code
	}()
	<-gated.loaded

	jobDone := make(chan struct{})
	go func() {
		resetIntakeJob(h)()
		close(jobDone)
	}()

	select {
	case <-jobDone:
		t.Fatal("reset ran while a request held a loaded session")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	assert.Equal(t, http.StatusOK, <-requestDone)
	<-jobDone

	loaded, err := mem.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.ConsumedProtein, "midnight reset survives the concurrent save")
	assert.Equal(t, 3, loaded.CurrentStep)
}

func TestStartJobs_RejectsBadSchedule(t *testing.T) {
	h := newHandler(store.NewMemory(session.Options{}), uuid.New(), nil)
	_, err := startJobs(h, "every now and then")
	assert.Error(t, err)
}
