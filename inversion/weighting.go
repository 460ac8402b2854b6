package inversion

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Weighting is the per-timewindow scale applied jointly to the rows of A and
// the entries of d. The same value must multiply both sides, or the
// assembled system no longer describes the weighted residuals.
type Weighting struct {
	factors []float64
}

// NewWeighting copies the per-window factors into an immutable value.
func NewWeighting(factors []float64) Weighting {
	f := make([]float64, len(factors))
	copy(f, factors)
	return Weighting{factors: f}
}

// Len returns the number of windows covered.
func (w Weighting) Len() int {
	return len(w.factors)
}

// Get returns the factor of window i.
func (w Weighting) Get(i int) float64 {
	return w.factors[i]
}

// Scheme names one of the rules that derive a window's weight from its
// waveforms.
type Scheme uint8

const (
	// SchemeIdentity weighs every window the same.
	SchemeIdentity Scheme = iota
	// SchemeReciprocal equalizes peak amplitudes: 1 / max|obs|.
	SchemeReciprocal
	// SchemeNorm equalizes energies: 1 / ‖obs‖.
	SchemeNorm
	// SchemeRatio scales by the square root of the synthetic-to-observed
	// amplitude ratio.
	SchemeRatio
	// SchemeDistance compensates geometric spreading with sqrt(sin Δ) on
	// top of amplitude equalization.
	SchemeDistance
)

var schemeNames = [...]string{"identity", "reciprocal", "norm", "ratio", "distance"}

// String returns the scheme's name.
func (s Scheme) String() string {
	if int(s) >= len(schemeNames) {
		return "?"
	}
	return schemeNames[s]
}

// SchemeFromName resolves a scheme by its name.
func SchemeFromName(name string) (Scheme, error) {
	for i, n := range schemeNames {
		if name == n {
			return Scheme(i), nil
		}
	}
	return 0, errors.Errorf("unknown weighting scheme %q", name)
}

// minSinDelta keeps the spreading factor finite for sources right above or
// opposite the receiver.
const minSinDelta = 0.01

// Weigh computes the per-window factors for the paired windows of d. Every
// scheme divides by sqrt(npts) so windows of different length contribute
// comparable per-sample energy.
func (s Scheme) Weigh(d *DVectorBuilder) Weighting {
	factors := make([]float64, d.NumWindows())
	for i := range factors {
		obs, syn := d.Obs(i), d.Syn(i)
		var f float64
		switch s {
		case SchemeReciprocal:
			f = 1 / floats.Norm(obs.Data, math.Inf(1))
		case SchemeNorm:
			f = 1 / floats.Norm(obs.Data, 2)
		case SchemeRatio:
			peakSyn := floats.Norm(syn.Data, math.Inf(1))
			peakObs := floats.Norm(obs.Data, math.Inf(1))
			if peakSyn == 0 {
				f = 1 / peakObs
			} else {
				f = math.Sqrt(peakSyn / peakObs)
			}
		case SchemeDistance:
			delta := obs.Event.Position.EpicentralDistance(obs.Observer.Position)
			sd := math.Sin(delta * math.Pi / 180)
			if sd < minSinDelta {
				sd = minSinDelta
			}
			f = math.Sqrt(sd) / floats.Norm(obs.Data, math.Inf(1))
		default:
			f = 1
		}
		factors[i] = f / math.Sqrt(float64(obs.Npts))
	}
	return Weighting{factors: factors}
}
