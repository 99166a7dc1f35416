package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitlog/internal/domain"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"70,5", 70.5, true},
		{"70.5", 70.5, true},
		{" 80 ", 80, true},
		{"0", 0, true},
		{"080", 80, true},
		{"-1,5", -1.5, true},
		{"72kg", 72, true},
		{"1,2,3", 1.2, true},
		{".5", 0.5, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{",", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := domain.ParseMetric(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestMetricValue(t *testing.T) {
	assert.Nil(t, domain.MetricValue(""))
	v := domain.MetricValue("0")
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)
}

func TestCalculateIMC(t *testing.T) {
	tests := []struct {
		weight, height, want string
	}{
		{"80", "200", "20.00"},
		{"80", "180", "24.69"},
		{"78", "180", "24.07"},
		{"70,5", "173", "23.56"},
		{"0", "180", ""},
		{"80", "", ""},
		{"", "180", ""},
		{"80", "-170", ""},
		{"abc", "180", ""},
	}
	for _, tc := range tests {
		t.Run(tc.weight+"/"+tc.height, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.CalculateIMC(tc.weight, tc.height))
		})
	}
}

func TestCalculateIMC_Idempotent(t *testing.T) {
	a := domain.CalculateIMC("81,3", "176")
	b := domain.CalculateIMC("81,3", "176")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func ptr(v float64) *float64 { return &v }

func TestCompare(t *testing.T) {
	assert.Equal(t, domain.TrendNew, domain.Compare(ptr(70), nil))
	assert.Equal(t, domain.TrendSame, domain.Compare(ptr(70), ptr(70)))
	assert.Equal(t, domain.TrendIncrease, domain.Compare(ptr(71), ptr(70)))
	assert.Equal(t, domain.TrendDecrease, domain.Compare(ptr(69), ptr(70)))
	assert.Equal(t, domain.TrendNone, domain.Compare(nil, ptr(70)))
	assert.Equal(t, domain.TrendNone, domain.Compare(nil, nil))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"01:02:03", 3723, true},
		{"12:30", 750, true},
		{"0:45", 45, true},
		{"5:", 300, true},
		{":30", 30, true},
		{"1:30.5", 90.5, true},
		{"1::", 3600, true},
		{"NaN:1", 0, false},
		{"", 0, false},
		{"30", 0, false},
		{"a:b", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, tc := range tests {
		got, ok := domain.ParseDuration(tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestPolarityTone(t *testing.T) {
	assert.Equal(t, domain.ToneGood, domain.LowerIsBetter.Tone(domain.TrendDecrease))
	assert.Equal(t, domain.ToneBad, domain.LowerIsBetter.Tone(domain.TrendIncrease))
	assert.Equal(t, domain.ToneGood, domain.HigherIsBetter.Tone(domain.TrendIncrease))
	assert.Equal(t, domain.ToneBad, domain.HigherIsBetter.Tone(domain.TrendDecrease))
	assert.Equal(t, domain.ToneNeutral, domain.LowerIsBetter.Tone(domain.TrendSame))
	assert.Equal(t, domain.ToneNeutral, domain.HigherIsBetter.Tone(domain.TrendNew))
}
