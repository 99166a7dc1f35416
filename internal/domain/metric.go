package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPrefix matches the longest leading decimal literal, mirroring how
// browsers parse user-typed numbers ("70.5kg" reads as 70.5).
var decimalPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseMetric converts a user-typed metric string into a number. Either "."
// or "," is accepted as decimal separator (only the first comma is
// replaced). ok is false for empty, whitespace-only or non-numeric input.
// "0" is a valid zero.
func ParseMetric(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.Replace(s, ",", ".", 1)
	lit := decimalPrefix.FindString(s)
	if lit == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MetricValue is ParseMetric in pointer form: nil means "not recorded".
func MetricValue(s string) *float64 {
	v, ok := ParseMetric(s)
	if !ok {
		return nil
	}
	return &v
}

// CalculateIMC returns weight(kg) / height(m)^2 formatted with two decimals.
// Height is entered in centimeters. The result is empty unless both inputs
// parse to strictly positive numbers.
func CalculateIMC(weight, height string) string {
	w, okW := ParseMetric(weight)
	h, okH := ParseMetric(height)
	if !okW || !okH || w <= 0 || h <= 0 {
		return ""
	}
	m := h / 100
	return strconv.FormatFloat(w/(m*m), 'f', 2, 64)
}

// ParseDuration reads "HH:MM:SS" or "MM:SS" into total seconds. Parts may
// carry decimals and a blank part counts as zero, so "5:" is five minutes.
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		var n float64
		if p = strings.TrimSpace(p); p != "" {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, false
			}
			n = v
		}
		total = total*60 + n
	}
	return total, true
}

// Trend is the direction of a metric relative to its previous reading.
type Trend string

const (
	TrendNone     Trend = ""
	TrendNew      Trend = "new"
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendSame     Trend = "same"
)

// Compare classifies cur against prev. A nil current yields TrendNone; a nil
// previous yields TrendNew.
func Compare(cur, prev *float64) Trend {
	switch {
	case cur == nil:
		return TrendNone
	case prev == nil:
		return TrendNew
	case *cur > *prev:
		return TrendIncrease
	case *cur < *prev:
		return TrendDecrease
	default:
		return TrendSame
	}
}

// Polarity says which direction of change is desirable for a metric.
type Polarity int

const (
	Neutral Polarity = iota
	LowerIsBetter
	HigherIsBetter
)

// Tone is how a trend should be presented: good, bad or neutral.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
)

// Tone maps a trend to good/bad given the metric polarity.
func (p Polarity) Tone(t Trend) Tone {
	if t != TrendIncrease && t != TrendDecrease {
		return ToneNeutral
	}
	up := t == TrendIncrease
	switch p {
	case LowerIsBetter:
		if up {
			return ToneBad
		}
		return ToneGood
	case HigherIsBetter:
		if up {
			return ToneGood
		}
		return ToneBad
	default:
		// Height and other neutral metrics still read "up is good" on the
		// history card.
		if up {
			return ToneGood
		}
		return ToneBad
	}
}
