package solver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ConjugateGradient iterates on the normal equations, keeping every iterate
// as a candidate model. Successive search directions are conjugate under
// AᵀA, so in exact arithmetic the n-th candidate is the full solution.
type ConjugateGradient struct {
	problem
	m0 *mat.VecDense
	// search directions and their AᵀA energies, kept for the covariance
	dirs     []*mat.VecDense
	energies []float64
}

// NewConjugateGradient configures a CG solve starting from m0, or from the
// zero model when m0 is nil.
func NewConjugateGradient(ata *mat.SymDense, atd *mat.VecDense, m0 *mat.VecDense) (*ConjugateGradient, error) {
	p, err := newProblem(CG, ata, atd)
	if err != nil {
		return nil, err
	}
	cg := &ConjugateGradient{problem: p}
	if m0 != nil {
		if m0.Len() != atd.Len() {
			return nil, errors.Errorf("CG: initial model has %d entries, want %d", m0.Len(), atd.Len())
		}
		cg.m0 = mat.VecDenseCopyOf(m0)
	}
	return cg, nil
}

// Compute runs n iterations, pushing one candidate per step.
func (cg *ConjugateGradient) Compute() error {
	n := cg.Dim()
	m := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, nil)
	if cg.m0 != nil {
		m.CopyVec(cg.m0)
		r.MulVec(cg.ata, m)
	}
	r.SubVec(cg.atd, r)
	p := mat.VecDenseCopyOf(r)
	ap := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		ap.MulVec(cg.ata, p)
		energy := mat.Dot(p, ap)
		if energy <= 0 {
			return errors.Errorf("CG: system not positive definite at iteration %d (pᵀAᵀAp = %g)", k+1, energy)
		}
		alpha := mat.Dot(p, r) / energy
		m.AddScaledVec(m, alpha, p)
		r.AddScaledVec(r, -alpha, ap)
		cg.push(m)
		cg.dirs = append(cg.dirs, mat.VecDenseCopyOf(p))
		cg.energies = append(cg.energies, energy)
		beta := -mat.Dot(r, ap) / energy
		p.AddScaledVec(r, beta, p)
	}
	return nil
}

// Covariance sums the rank-one direction terms up to candidate j:
// σ²·Σ pₖpₖᵀ/(pₖᵀ·AᵀA·pₖ).
func (cg *ConjugateGradient) Covariance(sigmaD float64, j int) (*mat.SymDense, error) {
	if j < 1 || j > len(cg.dirs) {
		return nil, errors.Errorf("CG: no candidate %d, have %d", j, len(cg.dirs))
	}
	cov := mat.NewSymDense(cg.Dim(), nil)
	for k := 0; k < j; k++ {
		cov.SymRankOne(cov, sigmaD*sigmaD/cg.energies[k], cg.dirs[k])
	}
	return cov, nil
}
