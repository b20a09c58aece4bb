package nutrition

import "fmt"

// WeightUnit is the unit tag carried by a Weight.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
)

// HeightUnit is the unit tag carried by a Height.
type HeightUnit string

const (
	Centimeters HeightUnit = "cm"
	Inches      HeightUnit = "in"
)

const (
	kgPerLb = 0.45359237
	cmPerIn = 2.54
)

// Weight is a unit-tagged body weight.
type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// Kg returns the weight in kilograms. Unknown units are treated as kilograms;
// ParseWeightUnit rejects them before they get this far.
func (w Weight) Kg() float64 {
	if w.Unit == Pounds {
		return w.Value * kgPerLb
	}
	return w.Value
}

// Height is a unit-tagged body height.
type Height struct {
	Value float64    `json:"value"`
	Unit  HeightUnit `json:"unit"`
}

// Cm returns the height in centimeters.
func (h Height) Cm() float64 {
	if h.Unit == Inches {
		return h.Value * cmPerIn
	}
	return h.Value
}

// ParseWeightUnit accepts "kg", "lb" and the front end's "lbs".
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch s {
	case "kg":
		return Kilograms, nil
	case "lb", "lbs":
		return Pounds, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}

// ParseHeightUnit accepts "cm" and "in".
func ParseHeightUnit(s string) (HeightUnit, error) {
	switch s {
	case "cm":
		return Centimeters, nil
	case "in":
		return Inches, nil
	}
	return "", fmt.Errorf("unknown height unit %q", s)
}
