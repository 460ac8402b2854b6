// Package plotting renders evaluation figures for solved inversions.
package plotting

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
)

// Canonical figure names inside a method folder.
const (
	VarianceFile = "variance.png"
	LCurveFile   = "lcurve.png"
)

// VarianceCurve writes a PNG of normalized variance against candidate
// number for one method.
func VarianceCurve(path, method string, variances []float64) error {
	if len(variances) == 0 {
		return errors.New("no candidates to plot")
	}
	pts := make(plotter.XYs, len(variances))
	for i, v := range variances {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	p := plot.New()
	p.Title.Text = method + " misfit"
	p.X.Label.Text = "candidate"
	p.Y.Label.Text = "normalized variance"
	p.Add(plotter.NewGrid())
	if err := plotutil.AddLinePoints(p, method, pts); err != nil {
		return errors.Wrap(err, "variance curve")
	}
	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "variance curve %s", path)
}

// LCurve writes the damped least-squares trade-off curve: solution
// seminorm against residual norm, one labelled point per damping value.
func LCurve(path string, lambdas, residuals, seminorms []float64) error {
	if len(lambdas) == 0 {
		return errors.New("no damping values to plot")
	}
	if len(residuals) != len(lambdas) || len(seminorms) != len(lambdas) {
		return errors.Errorf("L-curve needs one residual and one seminorm per damping value, got %d and %d for %d",
			len(residuals), len(seminorms), len(lambdas))
	}
	pts := make(plotter.XYs, len(lambdas))
	labels := make([]string, len(lambdas))
	for i := range lambdas {
		pts[i].X = residuals[i]
		pts[i].Y = seminorms[i]
		labels[i] = maths.Ftoa(lambdas[i])
	}
	p := plot.New()
	p.Title.Text = "L-curve"
	p.X.Label.Text = "residual norm"
	p.Y.Label.Text = "solution seminorm"
	p.Add(plotter.NewGrid())
	if err := plotutil.AddLinePoints(p, "lambda sweep", pts); err != nil {
		return errors.Wrap(err, "L-curve")
	}
	tags, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return errors.Wrap(err, "L-curve")
	}
	p.Add(tags)
	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "L-curve %s", path)
}
