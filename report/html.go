package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cwbudde/algo-msquant/pipeline"
	"github.com/cwbudde/algo-msquant/quant"
)

// WriteHTML renders an HTML page with one bar chart per sample group
// (per-sample fractions plus the group mean, in percent) and, when the
// report carries its reference basis, a chart of the normalized basis
// columns per window.
func WriteHTML(path string, rep *pipeline.Report) error {
	page := components.NewPage()

	for _, group := range rep.Groups {
		page.AddCharts(groupChart(rep.Labels, group))
	}

	if rep.Basis != nil {
		page.AddCharts(basisChart(rep.Basis))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func groupChart(labels [2]string, group pipeline.GroupResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    fmt.Sprintf("Group %s", group.Name),
		Subtitle: fmt.Sprintf("%d samples, %d failed", len(group.Files), group.Failed),
	}))

	axis := make([]string, 0, len(group.Files)+1)
	seriesA := make([]opts.BarData, 0, len(group.Files)+1)
	seriesB := make([]opts.BarData, 0, len(group.Files)+1)

	for i, file := range group.Files {
		axis = append(axis, file)

		if group.Fractions[i] == nil {
			seriesA = append(seriesA, opts.BarData{Value: 0})
			seriesB = append(seriesB, opts.BarData{Value: 0})

			continue
		}

		seriesA = append(seriesA, opts.BarData{Value: 100 * group.Fractions[i][0]})
		seriesB = append(seriesB, opts.BarData{Value: 100 * group.Fractions[i][1]})
	}

	if group.Mean != nil {
		axis = append(axis, "mean")
		seriesA = append(seriesA, opts.BarData{Value: 100 * group.Mean[0]})
		seriesB = append(seriesB, opts.BarData{Value: 100 * group.Mean[1]})
	}

	bar.SetXAxis(axis).
		AddSeries(labels[0], seriesA).
		AddSeries(labels[1], seriesB)

	return bar
}

func basisChart(basis *quant.Basis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Reference basis",
		Subtitle: "normalized window maxima per species",
	}))

	labels := basis.Labels()

	axis := make([]string, basis.Rows())
	seriesA := make([]opts.BarData, basis.Rows())
	seriesB := make([]opts.BarData, basis.Rows())

	for i := 0; i < basis.Rows(); i++ {
		axis[i] = fmt.Sprintf("window %d", i)
		seriesA[i] = opts.BarData{Value: basis.At(i, 0)}
		seriesB[i] = opts.BarData{Value: basis.At(i, 1)}
	}

	bar.SetXAxis(axis).
		AddSeries(labels[0], seriesA).
		AddSeries(labels[1], seriesB)

	return bar
}
