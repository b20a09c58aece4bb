package nutrition

import (
	"time"
)

// State tracks where a Target sits in its lifecycle.
type State string

const (
	Uninitialized State = "uninitialized"
	Baseline      State = "baseline"
	Adjusted      State = "adjusted"
)

// Date wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type Date struct{ time.Time }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Target is the daily nutrition target owned by the engine. Callers replace
// it wholesale from ComputeBaseline or patch it through the rebalancer;
// nothing else should set fields on it.
type Target struct {
	ProteinGrams int   `json:"protein_g"`
	Calories     int   `json:"calories"`
	CarbGrams    int   `json:"carbs_g"`
	FatGrams     int   `json:"fat_g"`
	GoalDate     *Date `json:"goal_date,omitempty"`

	// Display-only intermediates from simple mode.
	BMR  *int `json:"bmr,omitempty"`
	TDEE *int `json:"tdee,omitempty"`

	Mode  Mode  `json:"mode"`
	State State `json:"state"`
}

// MacroCalories returns carbs*4 + fats*9 + protein*4, which the rebalancer
// keeps within rounding distance of Calories.
func (t Target) MacroCalories() int {
	return t.CarbGrams*4 + t.FatGrams*9 + t.ProteinGrams*4
}

// FormatGoalDate renders the goal date the way the summary screen shows it,
// or "" when there is none.
func (t Target) FormatGoalDate() string {
	if t.GoalDate == nil {
		return ""
	}
	return t.GoalDate.Format("January 2, 2006")
}

// startOfDay drops the clock part so date arithmetic is calendar based.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
