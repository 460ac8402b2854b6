package inversion

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
)

// DInfo carries the three scalars the evaluation needs once the waveforms
// themselves are gone: the sample count and the weighted norms of the
// residual and of the observed data.
type DInfo struct {
	NumSamples int
	DNorm      float64
	ObsNorm    float64
}

// Combine merges the statistics of two independent datasets: counts add,
// norms combine as the root of the summed squares.
func (i DInfo) Combine(o DInfo) DInfo {
	return DInfo{
		NumSamples: i.NumSamples + o.NumSamples,
		DNorm:      math.Hypot(i.DNorm, o.DNorm),
		ObsNorm:    math.Hypot(i.ObsNorm, o.ObsNorm),
	}
}

// NormalEquations is the assembled system AᵀA·m = Aᵀd together with the
// dataset statistics, the complete hand-off from arrangement to solving.
type NormalEquations struct {
	ATA  *mat.SymDense
	ATD  *mat.VecDense
	Info DInfo
}

// Dim returns the number of unknowns.
func (n *NormalEquations) Dim() int {
	return n.ATA.SymmetricDim()
}

// Add accumulates another run's system element-wise. Both runs must share
// the same unknowns in the same order; only the dimension can be checked
// here, the parameter lists are compared by the caller.
func (n *NormalEquations) Add(o *NormalEquations) error {
	if n.Dim() != o.Dim() {
		return errors.Errorf("cannot sum systems of %d and %d unknowns", n.Dim(), o.Dim())
	}
	n.ATA.AddSym(n.ATA, o.ATA)
	n.ATD.AddVec(n.ATD, o.ATD)
	n.Info = n.Info.Combine(o.Info)
	return nil
}

// Assemble streams the weighted window blocks of A and d through a Gram
// accumulator, producing AᵀA and Aᵀd without ever holding the full matrix.
// Live memory stays at one window block plus the n×n result.
func Assemble(a *AMatrixBuilder, w Weighting) (*NormalEquations, error) {
	d := a.d
	if err := d.checkWeighting(w); err != nil {
		return nil, err
	}
	acc, err := maths.NewGramAccumulator(a.NumUnknowns())
	if err != nil {
		return nil, err
	}
	var residSq, obsSq float64
	for i := 0; i < d.NumWindows(); i++ {
		block := a.WeightedBlock(i, w)
		resid := d.weightedResidual(i, w)
		if err := acc.Accumulate(block, resid); err != nil {
			return nil, errors.Wrapf(err, "window %d", i)
		}
		residSq += mat.Dot(resid, resid)
		f := w.Get(i)
		for _, v := range d.Obs(i).Data {
			obsSq += f * f * v * v
		}
	}
	return &NormalEquations{
		ATA: acc.ATA(),
		ATD: acc.ATD(),
		Info: DInfo{
			NumSamples: d.Length(),
			DNorm:      math.Sqrt(residSq),
			ObsNorm:    math.Sqrt(obsSq),
		},
	}, nil
}
