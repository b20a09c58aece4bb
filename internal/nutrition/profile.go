package nutrition

import (
	"errors"
	"fmt"
	"reflect"
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very-active"
)

type Goal string

const (
	Cutting     Goal = "cutting"
	Maintenance Goal = "maintenance"
	Bulking     Goal = "bulking"
)

// WorkoutFrequency is the weekly workout band picked during onboarding.
type WorkoutFrequency string

const (
	WorkoutsLow    WorkoutFrequency = "0-2"
	WorkoutsMedium WorkoutFrequency = "3-5"
	WorkoutsHigh   WorkoutFrequency = "6+"
)

// DietaryPreference is collected during onboarding for meal suggestions. It
// does not feed the baseline.
type DietaryPreference string

const (
	Classic     DietaryPreference = "classic"
	Pescatarian DietaryPreference = "pescatarian"
	Vegetarian  DietaryPreference = "vegetarian"
	Vegan       DietaryPreference = "vegan"
)

// Mode is the baseline formula a profile qualifies for.
type Mode string

const (
	ModeIncomplete Mode = "incomplete"
	ModeSimple     Mode = "simple"
	ModeWeightGoal Mode = "weight-goal"
)

var (
	// ErrIncompleteProfile means the profile lacks the inputs for any baseline mode.
	ErrIncompleteProfile = errors.New("incomplete profile")
	// ErrInvalidProfile wraps a field that is present but out of range.
	ErrInvalidProfile = errors.New("invalid profile")
)

func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case Male, Female, Other:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// ParseActivityLevel also accepts the underscore spelling "very_active".
func ParseActivityLevel(s string) (ActivityLevel, error) {
	if s == "very_active" {
		return VeryActive, nil
	}
	a := ActivityLevel(s)
	if _, ok := activityMultipliers[a]; !ok {
		return "", fmt.Errorf("unknown activity level %q", s)
	}
	return a, nil
}

func ParseGoal(s string) (Goal, error) {
	g := Goal(s)
	if _, ok := proteinPerKgByGoal[g]; !ok {
		return "", fmt.Errorf("unknown goal %q", s)
	}
	return g, nil
}

func ParseDietaryPreference(s string) (DietaryPreference, error) {
	switch d := DietaryPreference(s); d {
	case Classic, Pescatarian, Vegetarian, Vegan:
		return d, nil
	}
	return "", fmt.Errorf("unknown dietary preference %q", s)
}

func ParseWorkoutFrequency(s string) (WorkoutFrequency, error) {
	switch f := WorkoutFrequency(s); f {
	case WorkoutsLow, WorkoutsMedium, WorkoutsHigh:
		return f, nil
	}
	return "", fmt.Errorf("unknown workout frequency %q", s)
}

// Profile accumulates onboarding answers. Every field is optional; the
// With* methods return a modified copy and never touch the receiver.
type Profile struct {
	Weight             *Weight            `json:"weight,omitempty"`
	Height             *Height            `json:"height,omitempty"`
	Age                *int               `json:"age,omitempty"`
	Gender             *Gender            `json:"gender,omitempty"`
	ActivityLevel      *ActivityLevel     `json:"activity_level,omitempty"`
	Goal               *Goal              `json:"goal,omitempty"`
	WorkoutFrequency   *WorkoutFrequency  `json:"workout_frequency,omitempty"`
	CurrentWeight      *Weight            `json:"current_weight,omitempty"`
	TargetWeight       *Weight            `json:"target_weight,omitempty"`
	GoalTimelineMonths *int               `json:"goal_timeline_months,omitempty"`
	DietaryPreference  *DietaryPreference `json:"dietary_preference,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func (p Profile) WithWeight(w Weight) Profile { p.Weight = ptr(w); return p }
func (p Profile) WithHeight(h Height) Profile { p.Height = ptr(h); return p }
func (p Profile) WithAge(age int) Profile { p.Age = ptr(age); return p }
func (p Profile) WithGender(g Gender) Profile { p.Gender = ptr(g); return p }
func (p Profile) WithGoal(g Goal) Profile { p.Goal = ptr(g); return p }
func (p Profile) WithCurrentWeight(w Weight) Profile { p.CurrentWeight = ptr(w); return p }
func (p Profile) WithTargetWeight(w Weight) Profile { p.TargetWeight = ptr(w); return p }
func (p Profile) WithTimelineMonths(m int) Profile { p.GoalTimelineMonths = ptr(m); return p }

func (p Profile) WithActivityLevel(a ActivityLevel) Profile {
	p.ActivityLevel = ptr(a)
	return p
}

func (p Profile) WithDietaryPreference(d DietaryPreference) Profile {
	p.DietaryPreference = ptr(d)
	return p
}

func (p Profile) WithWorkoutFrequency(f WorkoutFrequency) Profile {
	p.WorkoutFrequency = ptr(f)
	return p
}

// Mode reports which baseline formula the profile can run. The weight-goal
// path wins when both sets of inputs are present since it is what the
// onboarding wizard collects.
func (p Profile) Mode() Mode {
	if p.hasWeightGoalInputs() {
		return ModeWeightGoal
	}
	if p.hasSimpleInputs() {
		return ModeSimple
	}
	return ModeIncomplete
}

// IsSufficientForBaseline gates ComputeBaseline.
func (p Profile) IsSufficientForBaseline() bool {
	return p.Mode() != ModeIncomplete
}

func (p Profile) hasSimpleInputs() bool {
	return p.Weight != nil && p.Height != nil && p.Age != nil &&
		p.Gender != nil && p.ActivityLevel != nil && p.Goal != nil
}

func (p Profile) hasWeightGoalInputs() bool {
	if p.CurrentWeight == nil || p.TargetWeight == nil ||
		p.GoalTimelineMonths == nil || p.ActivityLevel == nil {
		return false
	}
	_, ok := weightGoalActivity[*p.ActivityLevel]
	return ok
}

// Validate checks the ranges of whichever fields are present.
func (p Profile) Validate() error {
	if p.Weight != nil && p.Weight.Value <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidProfile)
	}
	if p.CurrentWeight != nil && p.CurrentWeight.Value <= 0 {
		return fmt.Errorf("%w: current weight must be positive", ErrInvalidProfile)
	}
	if p.TargetWeight != nil && p.TargetWeight.Value <= 0 {
		return fmt.Errorf("%w: target weight must be positive", ErrInvalidProfile)
	}
	if p.Height != nil && p.Height.Value <= 0 {
		return fmt.Errorf("%w: height must be positive", ErrInvalidProfile)
	}
	// Guard against implausible ages (typos, DOB-derived negatives)
	if p.Age != nil && (*p.Age < 0 || *p.Age > 130) {
		return fmt.Errorf("%w: age must be between 0 and 130", ErrInvalidProfile)
	}
	if p.GoalTimelineMonths != nil && *p.GoalTimelineMonths < 1 {
		return fmt.Errorf("%w: goal timeline must be at least one month", ErrInvalidProfile)
	}
	return nil
}

// Merge returns p with every non-nil field of patch applied on top.
func (p Profile) Merge(patch Profile) Profile {
	if patch.Weight != nil {
		p.Weight = ptr(*patch.Weight)
	}
	if patch.Height != nil {
		p.Height = ptr(*patch.Height)
	}
	if patch.Age != nil {
		p.Age = ptr(*patch.Age)
	}
	if patch.Gender != nil {
		p.Gender = ptr(*patch.Gender)
	}
	if patch.ActivityLevel != nil {
		p.ActivityLevel = ptr(*patch.ActivityLevel)
	}
	if patch.Goal != nil {
		p.Goal = ptr(*patch.Goal)
	}
	if patch.WorkoutFrequency != nil {
		p.WorkoutFrequency = ptr(*patch.WorkoutFrequency)
	}
	if patch.CurrentWeight != nil {
		p.CurrentWeight = ptr(*patch.CurrentWeight)
	}
	if patch.TargetWeight != nil {
		p.TargetWeight = ptr(*patch.TargetWeight)
	}
	if patch.GoalTimelineMonths != nil {
		p.GoalTimelineMonths = ptr(*patch.GoalTimelineMonths)
	}
	if patch.DietaryPreference != nil {
		p.DietaryPreference = ptr(*patch.DietaryPreference)
	}
	return p
}

// SameBaselineInputs reports whether p and other hold the same values for
// every field ComputeBaseline reads.
func (p Profile) SameBaselineInputs(other Profile) bool {
	p.DietaryPreference = nil
	other.DietaryPreference = nil
	return reflect.DeepEqual(p, other)
}

// IsEmpty reports whether no onboarding answer has been recorded.
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}
