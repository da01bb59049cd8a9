// Package chart renders category totals into PNG pie and bar images for
// embedding in PDF reports.
package chart

import (
	"bytes"
	"context"
	"fmt"

	wchart "github.com/wcharczuk/go-chart/v2"

	"finlog/internal/core"
	"finlog/internal/log"
	"finlog/internal/report"
)

const (
	defaultWidth  = 512
	defaultHeight = 512
)

// Renderer draws spending-distribution charts with an in-process engine.
// It is an explicitly constructed handle, injected into the report
// service, so tests can swap in a fake.
type Renderer struct {
	width  int
	height int
	logger *log.Logger
}

func NewRenderer(logger *log.Logger) *Renderer {
	return &Renderer{
		width:  defaultWidth,
		height: defaultHeight,
		logger: logger.WithComponent(log.ComponentChart),
	}
}

// Render produces the pie and bar PNGs for the summary's category
// totals. It always returns whatever it managed to render: if one image
// fails the other is still usable, and the error wraps
// report.ErrChartRender so callers can degrade instead of aborting.
func (r *Renderer) Render(ctx context.Context, summary core.Summary) (report.ChartSet, error) {
	values := make([]wchart.Value, 0, len(summary.CategoryTotals))
	for _, ca := range summary.ByCategory() {
		values = append(values, wchart.Value{
			Label: string(ca.Name),
			Value: float64(ca.Amount.Cents) / 100.0,
		})
	}
	// An empty period still yields valid, empty-looking images.
	if len(values) == 0 {
		values = append(values, wchart.Value{Label: "no data", Value: 1})
	}

	var set report.ChartSet
	var firstErr error

	pie, err := r.renderPie(values)
	if err != nil {
		firstErr = fmt.Errorf("%w: pie: %v", report.ErrChartRender, err)
		r.logger.WarnContext(ctx, "Pie chart rendering failed", log.FieldError, err)
	} else {
		set.Pie = pie
	}

	bar, err := r.renderBar(values)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("%w: bar: %v", report.ErrChartRender, err)
		}
		r.logger.WarnContext(ctx, "Bar chart rendering failed", log.FieldError, err)
	} else {
		set.Bar = bar
	}

	return set, firstErr
}

func (r *Renderer) renderPie(values []wchart.Value) ([]byte, error) {
	pie := wchart.PieChart{
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(wchart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderBar(values []wchart.Value) ([]byte, error) {
	bar := wchart.BarChart{
		Width:    r.width,
		Height:   r.height,
		BarWidth: 50,
		Bars:     values,
	}
	var buf bytes.Buffer
	if err := bar.Render(wchart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
