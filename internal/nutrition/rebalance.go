package nutrition

import (
	"fmt"
	"math"
	"time"
)

// Field names the macro a user is overriding.
type Field string

const (
	FieldProtein Field = "protein"
	FieldCarb    Field = "carb"
	FieldFat     Field = "fat"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldProtein, FieldCarb, FieldFat:
		return f, nil
	case "carbs":
		return FieldCarb, nil
	case "fats":
		return FieldFat, nil
	}
	return "", fmt.Errorf("unknown macro field %q", s)
}

const (
	// Minimum calorie shares left for the macro being redistributed.
	fatFloorShare  = 0.10
	carbFloorShare = 0.20

	// ThresholdPercent is the protein deviation that triggers a warning.
	ThresholdPercent = 25.0

	daysPerTimelineMonth = 30
)

// Adjust applies a user override to one macro and redistributes the other
// so total calories hold. It returns the previous target and false when the
// change would push the redistributed macro under its floor, when value is
// negative, or when there is no target yet.
//
// Protein overrides do not recompute: the calorie envelope stays at the last
// full derivation and only ProteinGrams moves.
func Adjust(current Target, field Field, value int) (Target, bool) {
	if current.State == Uninitialized || current.State == "" || value < 0 {
		return current, false
	}

	next := current
	proteinCalories := current.ProteinGrams * kcalPerGramProtein
	calories := float64(current.Calories)

	switch field {
	case FieldProtein:
		next.ProteinGrams = value
	case FieldCarb:
		remaining := current.Calories - value*kcalPerGramCarb - proteinCalories
		if float64(remaining) < calories*fatFloorShare {
			return current, false
		}
		next.CarbGrams = value
		next.FatGrams = int(math.Round(float64(remaining) / kcalPerGramFat))
	case FieldFat:
		remaining := current.Calories - value*kcalPerGramFat - proteinCalories
		if float64(remaining) < calories*carbFloorShare {
			return current, false
		}
		next.FatGrams = value
		next.CarbGrams = int(math.Round(float64(remaining) / kcalPerGramCarb))
	default:
		return current, false
	}

	next.State = Adjusted
	return next, true
}

// ProteinAdjustment describes how far a slider move strayed from baseline.
type ProteinAdjustment struct {
	PercentDeviation float64 `json:"percent_deviation"`
	ExceedsThreshold bool    `json:"exceeds_threshold"`
}

// ProteinDeviation is the percentage a delta represents against baseline.
func ProteinDeviation(baselineProtein, deltaGrams int) ProteinAdjustment {
	if baselineProtein <= 0 {
		return ProteinAdjustment{}
	}
	pct := float64(deltaGrams) / float64(baselineProtein) * 100
	return ProteinAdjustment{
		PercentDeviation: pct,
		ExceedsThreshold: math.Abs(pct) > ThresholdPercent,
	}
}

// AdjustProteinWithTimeline backs the onboarding protein slider. Protein
// becomes baselineProtein+deltaGrams (never below zero) inside the fixed
// calorie envelope, and the goal date moves by the percentage deviation:
// more protein pulls it in, less pushes it out. With timelineMonths <= 0 the
// goal date is left as is.
func AdjustProteinWithTimeline(current Target, baselineProtein, deltaGrams, timelineMonths int, today time.Time) (Target, ProteinAdjustment) {
	adj := ProteinDeviation(baselineProtein, deltaGrams)
	if current.State == Uninitialized || current.State == "" {
		return current, adj
	}

	next := current
	next.ProteinGrams = max(baselineProtein+deltaGrams, 0)
	next.State = Adjusted

	if timelineMonths > 0 {
		factor := 1 - adj.PercentDeviation/100
		days := float64(timelineMonths*daysPerTimelineMonth) * factor
		// A deviation past 100% would land the goal in the past.
		goal := Date{startOfDay(today).AddDate(0, 0, max(int(math.Round(days)), 0))}
		next.GoalDate = &goal
	}
	return next, adj
}
