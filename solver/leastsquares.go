package solver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
)

// LeastSquares solves the Tikhonov-regularized system
// (AᵀA + λ·TᵀT)·m = Aᵀd − λ·Tᵀη directly. With λ = 0 it reduces to the
// plain normal-equation solution; it produces a single candidate.
type LeastSquares struct {
	problem
	lambda float64
	t      mat.Matrix
	eta    *mat.VecDense
	chol   *mat.Cholesky
}

// NewLeastSquares configures a damped solve. A nil t means the identity
// constraint, a nil eta the zero target.
func NewLeastSquares(ata *mat.SymDense, atd *mat.VecDense, lambda float64, t mat.Matrix, eta *mat.VecDense) (*LeastSquares, error) {
	p, err := newProblem(LS, ata, atd)
	if err != nil {
		return nil, err
	}
	if lambda < 0 {
		return nil, errors.Errorf("LS: negative damping %g", lambda)
	}
	rows := atd.Len()
	if t != nil {
		tr, tc := t.Dims()
		if tc != atd.Len() {
			return nil, errors.Errorf("LS: constraint matrix has %d columns, want %d", tc, atd.Len())
		}
		rows = tr
	}
	if eta != nil && eta.Len() != rows {
		return nil, errors.Errorf("LS: target vector has %d entries, want %d", eta.Len(), rows)
	}
	ls := &LeastSquares{problem: p, lambda: lambda, t: t}
	if eta != nil {
		ls.eta = mat.VecDenseCopyOf(eta)
	}
	return ls, nil
}

// Lambda returns the damping weight.
func (ls *LeastSquares) Lambda() float64 {
	return ls.lambda
}

// Compute factorizes the damped matrix and solves. A singular system is a
// fatal numerical error; it calls for damping, not a retry.
func (ls *LeastSquares) Compute() error {
	n := ls.Dim()
	b := mat.NewSymDense(n, nil)
	b.CopySym(ls.ata)
	rhs := mat.VecDenseCopyOf(ls.atd)
	if ls.lambda > 0 {
		if ls.t == nil {
			for i := 0; i < n; i++ {
				b.SetSym(i, i, b.At(i, i)+ls.lambda)
			}
			if ls.eta != nil {
				rhs.AddScaledVec(rhs, -ls.lambda, ls.eta)
			}
		} else {
			var penalty mat.SymDense
			penalty.SymOuterK(ls.lambda, ls.t.T())
			b.AddSym(b, &penalty)
			if ls.eta != nil {
				var target mat.VecDense
				target.MulVec(ls.t.T(), ls.eta)
				rhs.AddScaledVec(rhs, -ls.lambda, &target)
			}
		}
	}
	chol := new(mat.Cholesky)
	if ok := chol.Factorize(b); !ok {
		return errors.Errorf("LS: damped system singular at λ = %g", ls.lambda)
	}
	var m mat.VecDense
	if err := chol.SolveVecTo(&m, rhs); err != nil {
		return errors.Wrap(err, "LS")
	}
	ls.chol = chol
	ls.push(&m)
	return nil
}

// Covariance returns σ²·B⁻¹·AᵀA·B⁻¹ with B the damped matrix.
func (ls *LeastSquares) Covariance(sigmaD float64, j int) (*mat.SymDense, error) {
	if ls.chol == nil {
		return nil, errors.New("LS: Compute has not run")
	}
	if j != 1 {
		return nil, errors.Errorf("LS: no candidate %d, have 1", j)
	}
	var binvAta mat.Dense
	if err := ls.chol.SolveTo(&binvAta, ls.ata); err != nil {
		return nil, errors.Wrap(err, "LS covariance")
	}
	var cov mat.Dense
	if err := ls.chol.SolveTo(&cov, binvAta.T()); err != nil {
		return nil, errors.Wrap(err, "LS covariance")
	}
	cov.Scale(sigmaD*sigmaD, &cov)
	return maths.Sym(&cov), nil
}
