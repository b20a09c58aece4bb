package nutrition

import "math"

const (
	caloriesPerProteinGram = 24.0

	carbCalorieShare = 0.40
	fatCalorieShare  = 0.30

	kcalPerGramCarb    = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// Macros is the calorie/carb/fat expansion of a protein target.
type Macros struct {
	Calories  int `json:"calories"`
	CarbGrams int `json:"carbs_g"`
	FatGrams  int `json:"fat_g"`
}

// DeriveMacros expands a protein target into calories, carbs and fats using
// fixed shares: 40% carbs, 30% fat, protein takes the remainder.
func DeriveMacros(proteinGrams int) Macros {
	calories := int(math.Round(float64(proteinGrams) * caloriesPerProteinGram))
	return Macros{
		Calories:  calories,
		CarbGrams: int(math.Round(float64(calories) * carbCalorieShare / kcalPerGramCarb)),
		FatGrams:  int(math.Round(float64(calories) * fatCalorieShare / kcalPerGramFat)),
	}
}
