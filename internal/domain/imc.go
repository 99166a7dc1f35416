package domain

import "math"

// Severity orders IMC bands for styling consumers; a higher value is never
// presented as healthier than a lower one.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityNormal
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityCritical
)

// Classification is the IMC band an entry falls into.
type Classification struct {
	Label    string   `json:"classification"`
	Severity Severity `json:"severity"`
	Color    string   `json:"color"`
	BgColor  string   `json:"bgColor"`
}

// IMCBand is a left-closed, right-open range [Min, Max).
type IMCBand struct {
	Min, Max float64
	Classification
}

// IMCTable partitions the real line; bands are sorted by Min.
var IMCTable = []IMCBand{
	{math.Inf(-1), 18.5, Classification{"Bajo de Peso", SeverityLow, "text-blue-400", "bg-blue-500/10"}},
	{18.5, 25.08, Classification{"Peso normal", SeverityNormal, "text-green-400", "bg-green-500/10"}},
	{25.08, 30, Classification{"Sobrepeso", SeverityMild, "text-yellow-400", "bg-yellow-500/10"}},
	{30, 35, Classification{"Obesidad Ligera", SeverityModerate, "text-orange-400", "bg-orange-500/10"}},
	{35, 40, Classification{"Obesidad", SeveritySevere, "text-red-400", "bg-red-500/10"}},
	{40, math.Inf(1), Classification{"Obesidad Grave", SeverityCritical, "text-red-600", "bg-red-700/10"}},
}

// LegacyIMCTable is the earlier banding used by the first version of the
// weight page. It leaves gaps (24.9–25, 29.9–30, ...) and is kept only so the
// two tables can be compared; ClassifyIMC never uses it.
var LegacyIMCTable = []IMCBand{
	{math.Inf(-1), 18.5, Classification{"Peso inferior al normal", SeverityLow, "text-blue-400", "bg-blue-500/10"}},
	{18.5, 24.9, Classification{"Peso normal", SeverityNormal, "text-green-400", "bg-green-500/10"}},
	{25, 29.9, Classification{"Sobrepeso", SeverityMild, "text-yellow-400", "bg-yellow-500/10"}},
	{30, 34.9, Classification{"Obesidad I", SeverityModerate, "text-red-400", "bg-red-500/10"}},
	{35, 39.9, Classification{"Obesidad II", SeveritySevere, "text-red-400", "bg-red-500/10"}},
	{40, math.Inf(1), Classification{"Obesidad III", SeverityCritical, "text-red-400", "bg-red-500/10"}},
}

var unclassified = Classification{"N/A", SeverityUnknown, "text-gray-400", "bg-gray-700/20"}

// ClassifyIMC maps an IMC string onto IMCTable. Unparseable input is "N/A".
func ClassifyIMC(imc string) Classification {
	v, ok := ParseMetric(imc)
	if !ok {
		return unclassified
	}
	for _, b := range IMCTable {
		if v >= b.Min && v < b.Max {
			return b.Classification
		}
	}
	return unclassified
}
