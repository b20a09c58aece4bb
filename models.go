package main

import (
	"fmt"
	"time"

	"lg/protein-plate-api/internal/nutrition"
	"lg/protein-plate-api/internal/session"
)

/* ─── Request bodies ─────────────────────────────────────────────────── */

// weightInput is a weight as the client sends it. Unit defaults to kg.
type weightInput struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (w weightInput) parse() (nutrition.Weight, error) {
	if w.Unit == "" {
		return nutrition.Weight{Value: w.Value, Unit: nutrition.Kilograms}, nil
	}
	u, err := nutrition.ParseWeightUnit(w.Unit)
	if err != nil {
		return nutrition.Weight{}, err
	}
	return nutrition.Weight{Value: w.Value, Unit: u}, nil
}

// heightInput is a height as the client sends it. Unit defaults to cm.
type heightInput struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (h heightInput) parse() (nutrition.Height, error) {
	if h.Unit == "" {
		return nutrition.Height{Value: h.Value, Unit: nutrition.Centimeters}, nil
	}
	u, err := nutrition.ParseHeightUnit(h.Unit)
	if err != nil {
		return nutrition.Height{}, err
	}
	return nutrition.Height{Value: h.Value, Unit: u}, nil
}

// patchProfileRequest is the request body for PATCH /api/session/profile.
// All fields are pointers: only non-nil fields are merged into the profile.
type patchProfileRequest struct {
	Weight             *weightInput `json:"weight"`
	Height             *heightInput `json:"height"`
	Age                *int         `json:"age"`
	DateOfBirth        *string      `json:"date_of_birth"` // YYYY-MM-DD, converted to age
	Gender             *string      `json:"gender"`
	ActivityLevel      *string      `json:"activity_level"`
	Goal               *string      `json:"goal"`
	WorkoutFrequency   *string      `json:"workout_frequency"`
	CurrentWeight      *weightInput `json:"current_weight"`
	TargetWeight       *weightInput `json:"target_weight"`
	GoalTimelineMonths *int         `json:"goal_timeline_months"`
	DietaryPreference  *string      `json:"dietary_preference"`
}

func (r patchProfileRequest) isEmpty() bool {
	return r == patchProfileRequest{}
}

// toProfile parses every provided field into a profile patch. Enum values
// are checked here so an unknown value never reaches the engine.
func (r patchProfileRequest) toProfile(today time.Time) (nutrition.Profile, error) {
	var p nutrition.Profile

	if r.Weight != nil {
		w, err := r.Weight.parse()
		if err != nil {
			return p, err
		}
		p = p.WithWeight(w)
	}
	if r.Height != nil {
		h, err := r.Height.parse()
		if err != nil {
			return p, err
		}
		p = p.WithHeight(h)
	}
	if r.Age != nil && r.DateOfBirth != nil {
		return p, fmt.Errorf("send either age or date_of_birth, not both")
	}
	if r.Age != nil {
		p = p.WithAge(*r.Age)
	}
	if r.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *r.DateOfBirth)
		if err != nil {
			return p, fmt.Errorf("invalid date_of_birth, expected YYYY-MM-DD")
		}
		p = p.WithAge(ageOn(dob, today))
	}
	if r.Gender != nil {
		g, err := nutrition.ParseGender(*r.Gender)
		if err != nil {
			return p, err
		}
		p = p.WithGender(g)
	}
	if r.ActivityLevel != nil {
		a, err := nutrition.ParseActivityLevel(*r.ActivityLevel)
		if err != nil {
			return p, err
		}
		p = p.WithActivityLevel(a)
	}
	if r.Goal != nil {
		g, err := nutrition.ParseGoal(*r.Goal)
		if err != nil {
			return p, err
		}
		p = p.WithGoal(g)
	}
	if r.WorkoutFrequency != nil {
		f, err := nutrition.ParseWorkoutFrequency(*r.WorkoutFrequency)
		if err != nil {
			return p, err
		}
		p = p.WithWorkoutFrequency(f)
	}
	if r.CurrentWeight != nil {
		w, err := r.CurrentWeight.parse()
		if err != nil {
			return p, err
		}
		p = p.WithCurrentWeight(w)
	}
	if r.TargetWeight != nil {
		w, err := r.TargetWeight.parse()
		if err != nil {
			return p, err
		}
		p = p.WithTargetWeight(w)
	}
	if r.GoalTimelineMonths != nil {
		p = p.WithTimelineMonths(*r.GoalTimelineMonths)
	}
	if r.DietaryPreference != nil {
		d, err := nutrition.ParseDietaryPreference(*r.DietaryPreference)
		if err != nil {
			return p, err
		}
		p = p.WithDietaryPreference(d)
	}
	return p, nil
}

// adjustTargetRequest is the request body for POST /api/target/adjust.
type adjustTargetRequest struct {
	Field string `json:"field"`
	Value *int   `json:"value"`
}

// adjustProteinRequest is the request body for POST /api/target/adjust-protein.
// delta_grams is measured from the baseline, not the current value.
type adjustProteinRequest struct {
	DeltaGrams *int `json:"delta_grams"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// targetResponse is a Target plus the display strings the summary screen shows.
type targetResponse struct {
	nutrition.Target
	GoalDateDisplay    string `json:"goal_date_display,omitempty"`
	ChickenBreasts     int    `json:"chicken_breasts"`
	ProteinDescription string `json:"protein_description"`
}

func newTargetResponse(t nutrition.Target) targetResponse {
	return targetResponse{
		Target:             t,
		GoalDateDisplay:    t.FormatGoalDate(),
		ChickenBreasts:     nutrition.ChickenBreastEquivalent(t.ProteinGrams),
		ProteinDescription: nutrition.DescribeProtein(t.ProteinGrams),
	}
}

// sessionResponse is the response shape for GET /api/session.
type sessionResponse struct {
	*session.Session
	State    nutrition.State         `json:"state"`
	Mode     nutrition.Mode          `json:"mode"`
	Progress nutrition.DailyProgress `json:"progress"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		Session:  s,
		State:    s.State(),
		Mode:     s.Profile.Mode(),
		Progress: s.Progress(),
	}
}

type adjustTargetResponse struct {
	Applied bool           `json:"applied"`
	Target  targetResponse `json:"target"`
}

type adjustProteinResponse struct {
	Target           targetResponse `json:"target"`
	PercentDeviation float64        `json:"percent_deviation"`
	ExceedsThreshold bool           `json:"exceeds_threshold"`
	// Warning is set only on the call that first crosses the threshold for
	// the current baseline.
	Warning string `json:"warning,omitempty"`
}

// intakeResponse is the response shape for the /api/intake routes.
type intakeResponse struct {
	Date string `json:"date"`
	nutrition.DailyProgress
}
