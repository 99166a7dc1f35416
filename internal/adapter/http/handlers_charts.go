package adapthttp

import (
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"fitlog/internal/app"
)

func chartParams(r *http.Request) (days int, unit string) {
	days = intQuery(r, "days", 90)
	unit = r.URL.Query().Get("unit")
	if unit == "" {
		unit = "kg"
	}
	return days, unit
}

func (s *Server) handleChartSeries(w http.ResponseWriter, r *http.Request) {
	days, unit := chartParams(r)
	points, err := s.charts.Series(r.Context(), s.userID(r), days, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"unit":  unit,
		"today": s.today(),
		"items": points,
	})
}

// handleChartPage renders the body-composition series as a standalone HTML
// line chart.
func (s *Server) handleChartPage(w http.ResponseWriter, r *http.Request) {
	days, unit := chartParams(r)
	points, err := s.charts.Series(r.Context(), s.userID(r), days, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := weightChart(points, unit).Render(w); err != nil {
		s.fail(w, r, err)
	}
}

func weightChart(points []app.SeriesPoint, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Composición corporal"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)

	days := make([]string, len(points))
	weight := make([]opts.LineData, len(points))
	imc := make([]opts.LineData, len(points))
	fat := make([]opts.LineData, len(points))
	for i, p := range points {
		days[i] = p.Day
		weight[i] = lineValue(p.Weight)
		imc[i] = lineValue(p.IMC)
		fat[i] = lineValue(p.Fat)
	}

	line.SetXAxis(days).
		AddSeries("Peso ("+unit+")", weight).
		AddSeries("IMC", imc).
		AddSeries("Grasa %", fat).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:       opts.Bool(true),
				ShowSymbol:   opts.Bool(true),
				ConnectNulls: opts.Bool(true),
			}),
		)
	return line
}

// lineValue maps a missing reading to "-", which echarts leaves blank.
func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: *v}
}
