// Package session holds the onboarding/target state the app UI mutates.
// It is the only owner of the active Profile and Target pair; every mutation
// goes through one of the methods below.
package session

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/google/uuid"

	"lg/protein-plate-api/internal/nutrition"
)

// SchemaVersion is bumped whenever the persisted shape changes. Stored
// sessions from another version are discarded on load.
const SchemaVersion = 2

var (
	ErrNoTarget      = errors.New("no nutrition target yet")
	ErrCompleted     = errors.New("onboarding already completed")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidStep   = errors.New("step must not be negative")
)

// ThresholdEvent is raised when a protein slider move strays more than
// nutrition.ThresholdPercent from baseline.
type ThresholdEvent struct {
	SessionID        uuid.UUID
	BaselineProtein  int
	ProteinGrams     int
	PercentDeviation float64
}

// Notifier receives threshold warnings. Implementations must not block.
type Notifier interface {
	ProteinThresholdExceeded(ev ThresholdEvent)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ev ThresholdEvent)

func (f NotifierFunc) ProteinThresholdExceeded(ev ThresholdEvent) { f(ev) }

// LogNotifier writes threshold warnings to the standard logger.
var LogNotifier = NotifierFunc(func(ev ThresholdEvent) {
	log.Printf("[threshold] session %s: protein %dg is %.1f%% off baseline %dg",
		ev.SessionID, ev.ProteinGrams, ev.PercentDeviation, ev.BaselineProtein)
})

// Options injects the clock and warning sink. Zero values fall back to
// time.Now and LogNotifier.
type Options struct {
	Now      func() time.Time
	Notifier Notifier
}

// Session is the persisted app state: the profile being collected, the
// active target, onboarding progress and today's consumed protein.
type Session struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`

	Profile nutrition.Profile `json:"profile"`
	Target  *nutrition.Target `json:"target,omitempty"`

	// BaselineProtein is the protein figure of the last full baseline; slider
	// deltas and threshold warnings are measured against it.
	BaselineProtein    int  `json:"baseline_protein_g"`
	ProteinDelta       int  `json:"protein_delta_g"`
	WarnedThisBaseline bool `json:"warned_this_baseline"`

	CurrentStep     int       `json:"current_step"`
	Completed       bool      `json:"completed"`
	ConsumedProtein int       `json:"consumed_protein_g"`
	UpdatedAt       time.Time `json:"updated_at"`

	now      func() time.Time
	notifier Notifier
}

// New returns an empty, uninitialized session.
func New(id uuid.UUID, opts Options) *Session {
	s := &Session{ID: id, Version: SchemaVersion}
	s.Bind(opts)
	s.touch()
	return s
}

// Bind attaches the clock and notifier, e.g. after decoding from storage.
func (s *Session) Bind(opts Options) {
	s.now = opts.Now
	if s.now == nil {
		s.now = time.Now
	}
	s.notifier = opts.Notifier
	if s.notifier == nil {
		s.notifier = LogNotifier
	}
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Session) touch() {
	s.UpdatedAt = s.clock().UTC()
}

// State is Uninitialized until a baseline exists, then follows the target.
func (s *Session) State() nutrition.State {
	if s.Target == nil {
		return nutrition.Uninitialized
	}
	return s.Target.State
}

// UpdateProfile merges patch into the profile and replaces the target
// wholesale: the session drops back to Uninitialized and, when the merged
// profile is sufficient, a fresh Baseline is computed. An insufficient
// profile is stored as is and leaves the session Uninitialized. A patch that
// leaves the baseline inputs as they were keeps the current target,
// adjustments included.
func (s *Session) UpdateProfile(patch nutrition.Profile) error {
	if s.Completed {
		return ErrCompleted
	}
	merged := s.Profile.Merge(patch)
	if err := merged.Validate(); err != nil {
		return err
	}
	if reflect.DeepEqual(merged, s.Profile) {
		return nil
	}

	defer s.touch()
	inputsChanged := !merged.SameBaselineInputs(s.Profile)
	s.Profile = merged
	if !inputsChanged && s.Target != nil {
		return nil
	}
	s.clearTarget()

	if !merged.IsSufficientForBaseline() {
		return nil
	}
	t, err := nutrition.ComputeBaseline(merged, s.clock())
	if err != nil {
		return fmt.Errorf("compute baseline: %w", err)
	}
	s.Target = &t
	s.BaselineProtein = t.ProteinGrams
	return nil
}

func (s *Session) clearTarget() {
	s.Target = nil
	s.BaselineProtein = 0
	s.ProteinDelta = 0
	s.WarnedThisBaseline = false
}

func (s *Session) checkMutable() error {
	if s.Completed {
		return ErrCompleted
	}
	if s.Target == nil {
		return ErrNoTarget
	}
	return nil
}

// AdjustMacro overrides one macro through the rebalancer. applied is false
// when the change would break a macro floor; the target is then untouched.
// A protein override is the same move as AdjustProtein with the matching
// delta, threshold warning and goal date included.
func (s *Session) AdjustMacro(field nutrition.Field, value int) (applied bool, err error) {
	if err := s.checkMutable(); err != nil {
		return false, err
	}
	if field == nutrition.FieldProtein {
		if value < 0 {
			return false, nil
		}
		s.applyProteinDelta(value - s.BaselineProtein)
		return true, nil
	}
	next, ok := nutrition.Adjust(*s.Target, field, value)
	if !ok {
		return false, nil
	}
	s.Target = &next
	s.touch()
	return true, nil
}

// AdjustProtein moves protein deltaGrams away from baseline and, in
// weight-goal mode, reprojects the goal date. The threshold warning fires at
// most once per baseline; warned reports whether this call raised it.
func (s *Session) AdjustProtein(deltaGrams int) (adj nutrition.ProteinAdjustment, warned bool, err error) {
	if err := s.checkMutable(); err != nil {
		return nutrition.ProteinAdjustment{}, false, err
	}
	adj, warned = s.applyProteinDelta(deltaGrams)
	return adj, warned, nil
}

func (s *Session) applyProteinDelta(deltaGrams int) (adj nutrition.ProteinAdjustment, warned bool) {
	months := 0
	if s.Target.Mode == nutrition.ModeWeightGoal && s.Profile.GoalTimelineMonths != nil {
		months = *s.Profile.GoalTimelineMonths
	}
	next, adj := nutrition.AdjustProteinWithTimeline(*s.Target, s.BaselineProtein, deltaGrams, months, s.clock())
	s.Target = &next
	s.ProteinDelta = deltaGrams
	s.touch()

	if adj.ExceedsThreshold && !s.WarnedThisBaseline {
		s.WarnedThisBaseline = true
		s.notifier.ProteinThresholdExceeded(ThresholdEvent{
			SessionID:        s.ID,
			BaselineProtein:  s.BaselineProtein,
			ProteinGrams:     next.ProteinGrams,
			PercentDeviation: adj.PercentDeviation,
		})
		warned = true
	}
	return adj, warned
}

// SetStep records the onboarding step the UI is on.
func (s *Session) SetStep(step int) error {
	if step < 0 {
		return ErrInvalidStep
	}
	s.CurrentStep = step
	s.touch()
	return nil
}

// Complete finalizes onboarding; the target becomes the active daily target
// and further profile or target changes are refused until Reset.
func (s *Session) Complete() error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.Completed = true
	s.touch()
	return nil
}

// Reset wipes everything but the ID, returning to a fresh onboarding.
func (s *Session) Reset() {
	*s = Session{
		ID:       s.ID,
		Version:  SchemaVersion,
		now:      s.now,
		notifier: s.notifier,
	}
	s.touch()
}

// AddConsumedProtein logs protein eaten today.
func (s *Session) AddConsumedProtein(grams int) error {
	if grams <= 0 {
		return ErrInvalidAmount
	}
	s.ConsumedProtein += grams
	s.touch()
	return nil
}

// ResetConsumedProtein zeroes today's intake.
func (s *Session) ResetConsumedProtein() {
	s.ConsumedProtein = 0
	s.touch()
}

// Progress measures consumed protein against the active target.
func (s *Session) Progress() nutrition.DailyProgress {
	target := 0
	if s.Target != nil {
		target = s.Target.ProteinGrams
	}
	return nutrition.Progress(s.ConsumedProtein, target)
}
