package nutrition

import (
	"fmt"
	"math"
)

const (
	// MinGramsPerKg and MaxGramsPerKg bound the onboarding "g per kg" slider.
	MinGramsPerKg = 1.2
	MaxGramsPerKg = 2.4

	proteinPerChickenBreast = 25.0
)

// ProteinForMultiplier returns round(weightKg * gramsPerKg) with the
// multiplier clamped to the slider's range and snapped to its 0.1 step.
func ProteinForMultiplier(weightKg, gramsPerKg float64) int {
	gramsPerKg = math.Round(min(max(gramsPerKg, MinGramsPerKg), MaxGramsPerKg)*10) / 10
	return int(math.Round(weightKg * gramsPerKg))
}

// ChickenBreastEquivalent expresses a protein target in chicken breasts
// (~25g each), rounded.
func ChickenBreastEquivalent(proteinGrams int) int {
	return int(math.Round(float64(proteinGrams) / proteinPerChickenBreast))
}

// DescribeProtein is the one-line visualization shown under the target.
func DescribeProtein(proteinGrams int) string {
	if proteinGrams <= 0 {
		return ""
	}
	breasts := float64(proteinGrams) / proteinPerChickenBreast
	n := ChickenBreastEquivalent(proteinGrams)
	if breasts < 5 {
		return fmt.Sprintf("That's about %d chicken breasts worth of protein", n)
	}
	return fmt.Sprintf("That's equivalent to %d chicken breasts per day", n)
}

// DailyProgress is consumed protein measured against the day's target.
type DailyProgress struct {
	ConsumedGrams  int     `json:"consumed_g"`
	TargetGrams    int     `json:"target_g"`
	RemainingGrams int     `json:"remaining_g"`
	Percent        float64 `json:"percent"`
	Reached        bool    `json:"reached"`
}

// Progress compares consumed grams with the target. Remaining never goes
// below zero and Percent is capped at 100.
func Progress(consumedGrams, targetGrams int) DailyProgress {
	p := DailyProgress{
		ConsumedGrams:  consumedGrams,
		TargetGrams:    targetGrams,
		RemainingGrams: max(targetGrams-consumedGrams, 0),
		Reached:        targetGrams > 0 && consumedGrams >= targetGrams,
	}
	if targetGrams > 0 {
		p.Percent = min(float64(consumedGrams)/float64(targetGrams)*100, 100)
	}
	return p
}
