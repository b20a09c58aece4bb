package nutrition

import (
	"math"
	"time"
)

// activityMultipliers maps activity levels to their TDEE multiplier.
// This is the single source of truth for valid activity levels; ParseActivityLevel
// validates against it.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// proteinPerKgByGoal is the simple-mode grams of protein per kg of body weight.
var proteinPerKgByGoal = map[Goal]float64{
	Cutting:     2.2, // higher needs during a caloric deficit
	Maintenance: 1.6,
	Bulking:     1.8,
}

// workoutAdjustment nudges proteinPerKg by weekly workout band.
var workoutAdjustment = map[WorkoutFrequency]float64{
	WorkoutsLow:  -0.1,
	WorkoutsHigh: 0.2,
}

// weightGoalFactors holds the weight-goal formula's per-activity constants.
// Only three levels are offered on that onboarding path.
type weightGoalFactors struct {
	multiplier float64 // scales the weight delta
	addition   float64 // grams per kg of current weight
}

var weightGoalActivity = map[ActivityLevel]weightGoalFactors{
	Sedentary: {multiplier: 0.3, addition: 0.1},
	Moderate:  {multiplier: 0.5, addition: 0.3},
	Active:    {multiplier: 0.7, addition: 0.6},
}

const (
	weightGoalBasePerKg = 1.6
	minGoalProtein      = 100
	maxGoalProtein      = 250
)

// MifflinStJeor returns BMR in kcal/day. For Other the male and female
// results are averaged rather than blending the offsets.
func MifflinStJeor(weightKg, heightCm float64, age int, gender Gender) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case Male:
		return base + 5
	case Female:
		return base - 161
	default:
		return ((base + 5) + (base - 161)) / 2
	}
}

// ProteinPerKg picks grams per kg from the goal, then applies the workout
// frequency nudge when one is set.
func ProteinPerKg(goal Goal, freq *WorkoutFrequency) float64 {
	perKg := proteinPerKgByGoal[goal]
	if freq != nil {
		perKg += workoutAdjustment[*freq]
	}
	return perKg
}

// timelineFactor weights the goal delta by how aggressive the timeline is.
func timelineFactor(months int) float64 {
	switch {
	case months <= 3:
		return 0.08
	case months >= 12:
		return 0.02
	default:
		return 0.04
	}
}

func roundToNearest5(v float64) int {
	return int(math.Round(v/5) * 5)
}

// ComputeBaseline derives a fresh Target from a profile. Returns
// ErrIncompleteProfile when neither formula has its inputs; no defaults are
// substituted. today anchors the goal date so repeated calls agree.
func ComputeBaseline(p Profile, today time.Time) (Target, error) {
	if err := p.Validate(); err != nil {
		return Target{}, err
	}

	var t Target
	switch p.Mode() {
	case ModeSimple:
		t = simpleBaseline(p)
	case ModeWeightGoal:
		t = weightGoalBaseline(p, today)
	default:
		return Target{}, ErrIncompleteProfile
	}

	m := DeriveMacros(t.ProteinGrams)
	t.Calories = m.Calories
	t.CarbGrams = m.CarbGrams
	t.FatGrams = m.FatGrams
	t.State = Baseline
	return t, nil
}

func simpleBaseline(p Profile) Target {
	weightKg := p.Weight.Kg()

	// BMR via Mifflin-St Jeor; TDEE is only surfaced for display and does not
	// gate the protein figure.
	bmrF := MifflinStJeor(weightKg, p.Height.Cm(), *p.Age, *p.Gender)
	tdeeF := bmrF * activityMultipliers[*p.ActivityLevel]

	bmr := int(math.Round(bmrF))
	tdee := int(math.Round(tdeeF))
	return Target{
		ProteinGrams: int(math.Round(weightKg * ProteinPerKg(*p.Goal, p.WorkoutFrequency))),
		BMR:          &bmr,
		TDEE:         &tdee,
		Mode:         ModeSimple,
	}
}

func weightGoalBaseline(p Profile, today time.Time) Target {
	currentKg := p.CurrentWeight.Kg()
	targetKg := p.TargetWeight.Kg()
	months := *p.GoalTimelineMonths
	f := weightGoalActivity[*p.ActivityLevel]

	baseProtein := currentKg * weightGoalBasePerKg
	growthFactor := (targetKg - currentKg) * f.multiplier * timelineFactor(months)
	activityAdjustment := currentKg * f.addition

	protein := roundToNearest5(baseProtein + growthFactor + activityAdjustment)
	protein = min(max(protein, minGoalProtein), maxGoalProtein)

	goal := Date{startOfDay(today).AddDate(0, months, 0)}
	return Target{
		ProteinGrams: protein,
		GoalDate:     &goal,
		Mode:         ModeWeightGoal,
	}
}
