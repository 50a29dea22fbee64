// Package render draws phase-block maps as interactive HTML line charts.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/grailbio/phaseblocks/interval"
	"github.com/grailbio/phaseblocks/phaseblock"
)

// DefaultLineWidth is the stroke width of a block when Opts.LineWidth is 0.
const DefaultLineWidth = 8

// AnnotationRow is the y coordinate of the annotation track.
const AnnotationRow = -2

const annotationColor = "rgb(128,128,128)"

// palette is the 10-color category scheme; blocks cycle through it.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Opts configures the plot.
type Opts struct {
	// Title overrides the default "Phase block map <region>".
	Title string
	// LineWidth is the block stroke width.  0 means DefaultLineWidth.
	LineWidth int
}

func segment(start, end int64, row int) []opts.LineData {
	return []opts.LineData{
		{Value: []interface{}{start, row}},
		{Value: []interface{}{end, row}},
	}
}

// NewChart builds the chart for sources over region.  Source i is drawn on
// row i; sentinel (empty) sources leave their row blank.  annots are drawn in
// grey on AnnotationRow.
func NewChart(region interval.Region, sources [][]phaseblock.Block, annots []interval.Annotation, o Opts) *charts.Line {
	title := o.Title
	if title == "" {
		title = "Phase block map " + region.String()
	}
	width := o.LineWidth
	if width <= 0 {
		width = DefaultLineWidth
	}

	// The legend lists sources only; annotations are labeled by their tooltip.
	legend := []string{}
	for _, blocks := range sources {
		if !phaseblock.IsEmpty(blocks) && len(blocks) > 0 {
			legend = append(legend, blocks[0].Name)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    fmt.Sprintf("%dpx", 200+40*len(sources)),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "0", Orient: "vertical", Data: legend}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: region.RefName,
			Type: "value",
			Min:  region.Start,
			Max:  region.End,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Individuals",
			Type:      "value",
			Min:       AnnotationRow - 1,
			Max:       len(sources),
			AxisLabel: &opts.AxisLabel{Show: false},
			SplitLine: &opts.SplitLine{Show: false},
		}),
	)

	colorIdx := 0
	for row, blocks := range sources {
		if phaseblock.IsEmpty(blocks) {
			continue
		}
		for _, b := range blocks {
			start, end := region.Clamp(b.Start, b.End)
			color := palette[colorIdx%len(palette)]
			colorIdx++
			// Series sharing a name share one legend entry.
			line.AddSeries(b.Name, segment(start, end, row),
				charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: float32(width)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			)
		}
	}
	for _, a := range annots {
		start, end := region.Clamp(int64(a.Start), int64(a.End))
		line.AddSeries(a.Name, segment(start, end, AnnotationRow),
			charts.WithLineStyleOpts(opts.LineStyle{Color: annotationColor, Width: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: annotationColor}),
		)
	}
	return line
}

// Write renders the chart for sources over region as a standalone HTML page.
func Write(w io.Writer, region interval.Region, sources [][]phaseblock.Block, annots []interval.Annotation, o Opts) error {
	return NewChart(region, sources, annots, o).Render(w)
}
