package domain

import "strconv"

const kgToLb = 2.2046226218

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	if from == "kg" && to == "lb" {
		return v * kgToLb
	}
	if from == "lb" && to == "kg" {
		return v / kgToLb
	}
	return v
}

// WeightInKg rewrites a typed weight recorded in unit as kilograms with one
// decimal. Kilogram and unparseable values are returned untouched so that
// the user's own spelling survives.
func WeightInKg(weight, unit string) string {
	if unit == "" || unit == "kg" {
		return weight
	}
	v, ok := ParseMetric(weight)
	if !ok {
		return weight
	}
	return strconv.FormatFloat(ConvertWeight(v, unit, "kg"), 'f', 1, 64)
}
