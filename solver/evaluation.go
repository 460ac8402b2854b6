package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
)

// DefaultAlphas is the redundancy-factor list evaluated when the caller
// gives none. α divides the raw sample count into an effective number of
// independent data, bracketing how strongly neighboring samples correlate.
var DefaultAlphas = []float64{1, 12.5, 25}

// Evaluation scores candidate models against the dataset its normal
// equations were assembled from. The waveforms themselves are not needed:
// the residual expands as ‖d‖² − 2·mᵀ·Aᵀd + mᵀ·AᵀA·m.
type Evaluation struct {
	ata  *mat.SymDense
	atd  *mat.VecDense
	info inversion.DInfo
}

// NewEvaluation validates the system against its dataset statistics.
func NewEvaluation(ata *mat.SymDense, atd *mat.VecDense, info inversion.DInfo) (*Evaluation, error) {
	if ata == nil || atd == nil {
		return nil, errors.New("evaluation: normal equations missing")
	}
	if ata.SymmetricDim() != atd.Len() {
		return nil, errors.Errorf("evaluation: AᵀA is %d×%d but Aᵀd has %d entries",
			ata.SymmetricDim(), ata.SymmetricDim(), atd.Len())
	}
	if info.NumSamples <= 0 {
		return nil, errors.Errorf("evaluation: dataset reports %d samples", info.NumSamples)
	}
	if !(info.ObsNorm > 0) {
		return nil, errors.Errorf("evaluation: observed norm %g", info.ObsNorm)
	}
	return &Evaluation{ata: ata, atd: atd, info: info}, nil
}

// Variance returns the normalized residual power ‖d − A·m‖²/‖obs‖².
func (e *Evaluation) Variance(m *mat.VecDense) (float64, error) {
	if m.Len() != e.atd.Len() {
		return 0, errors.Errorf("evaluation: model has %d entries, want %d", m.Len(), e.atd.Len())
	}
	var am mat.VecDense
	am.MulVec(e.ata, m)
	v := e.info.DNorm*e.info.DNorm - 2*mat.Dot(m, e.atd) + mat.Dot(m, &am)
	v /= e.info.ObsNorm * e.info.ObsNorm
	// The expansion can dip a hair below zero near a perfect fit.
	if v < 0 {
		v = 0
	}
	return v, nil
}

// AIC returns n·ln(variance) + 2k with n = round(NumSamples/α), the
// penalized-fit score for a candidate of k effective parameters. The
// variance is floored at machine epsilon so a perfect fit scores a finite
// minimum instead of −Inf.
func (e *Evaluation) AIC(variance, alpha float64, k int) float64 {
	if variance < machEps {
		variance = machEps
	}
	n := math.Round(float64(e.info.NumSamples) / alpha)
	return n*math.Log(variance) + 2*float64(k)
}
