// Package diagnostics renders post-cleanup marginals of a vdj.Features
// snapshot to SVG, in the manner of the teacher's
// tools/fastqc_mimic/go_num_funcs.go: gonum/plot line plots with a custom
// integer tick marker, written out through plot.WriterTo.
package diagnostics

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"vdjinfer/feature"
	"vdjinfer/vdj"
)

// IntegerTicks labels only whole-number tick positions, matching the
// teacher's tick marker for discrete (gene index / length) axes.
type IntegerTicks struct{}

func (IntegerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i++ {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
	}
	return ticks
}

func lineSVG(title, xLabel, yLabel string, points plotter.XYs) (string, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = IntegerTicks{}

	line, err := plotter.NewLine(points)
	if err != nil {
		return "", fmt.Errorf("diagnostics: %s: %w", title, err)
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add(yLabel, line)
	p.Legend.Top = true

	var buf bytes.Buffer
	writer, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return "", fmt.Errorf("diagnostics: %s: %w", title, err)
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("diagnostics: %s: %w", title, err)
	}
	return buf.String(), nil
}

// VUsageSVG plots P(V) across V gene index.
func VUsageSVG(f *vdj.Features) (string, error) {
	n := f.PV.Dim()
	points := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		points[i].X = float64(i)
		points[i].Y = f.PV.Likelihood(i)
	}
	return lineSVG("V Gene Usage", "V Gene Index", "P(V)", points)
}

// JUsageSVG plots the J marginal of P(D, J), summing out D.
func JUsageSVG(f *vdj.Features) (string, error) {
	nD, nJ := f.PDJ.Dim()
	points := make(plotter.XYs, nJ)
	for j := 0; j < nJ; j++ {
		var sum float64
		for d := 0; d < nD; d++ {
			sum += f.PDJ.Likelihood(d, j)
		}
		points[j] = plotter.XY{X: float64(j), Y: sum}
	}
	return lineSVG("J Gene Usage", "J Gene Index", "P(J)", points)
}

// InsertionLengthSVG plots the VD or DJ insertion length distribution.
func InsertionLengthSVG(junction string, ins *feature.InsertionFeature) (string, error) {
	dist := ins.LengthDistribution()
	points := make(plotter.XYs, len(dist))
	for i, p := range dist {
		points[i] = plotter.XY{X: float64(i), Y: p}
	}
	return lineSVG(fmt.Sprintf("%s Insertion Length", junction), "Insertion Length", "Probability", points)
}

// DeletionProfileSVG plots P(delD3, delD5) for one D gene index, summed
// over delD5 to give a 1-D delD3 profile.
func DeletionProfileSVG(dGeneIndex int, f *vdj.Features) (string, error) {
	if dGeneIndex < 0 || dGeneIndex >= len(f.PDelD3DelD5) {
		return "", fmt.Errorf("diagnostics: d gene index %d out of range", dGeneIndex)
	}
	table := f.PDelD3DelD5[dGeneIndex]
	n3, n5 := table.Dim()
	points := make(plotter.XYs, n3)
	for d3 := 0; d3 < n3; d3++ {
		var sum float64
		for d5 := 0; d5 < n5; d5++ {
			sum += table.Likelihood(d3, d5)
		}
		points[d3] = plotter.XY{X: float64(d3), Y: sum}
	}
	return lineSVG(fmt.Sprintf("D[%d] 3' Deletion Profile", dGeneIndex), "Deletion Length", "Probability", points)
}
