package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// BiCGStab iterates on the normal equations with the stabilized
// bi-conjugate gradient recurrence, keeping every iterate as a candidate.
// Unlike CG it does not require positive definiteness, but it can break
// down, and breakdown is a fatal numerical error.
type BiCGStab struct {
	problem
}

// NewBiCGStab configures a BiCGStab solve from the zero model.
func NewBiCGStab(ata *mat.SymDense, atd *mat.VecDense) (*BiCGStab, error) {
	p, err := newProblem(BICGSTAB, ata, atd)
	if err != nil {
		return nil, err
	}
	return &BiCGStab{problem: p}, nil
}

// Compute runs at most n iterations, stopping early once the residual
// reaches rounding level.
func (b *BiCGStab) Compute() error {
	n := b.Dim()
	x := mat.NewVecDense(n, nil)
	r := mat.VecDenseCopyOf(b.atd)
	rt := mat.VecDenseCopyOf(r)
	rnorm0 := mat.Norm(r, 2)
	p := mat.NewVecDense(n, nil)
	v := mat.NewVecDense(n, nil)
	s := mat.NewVecDense(n, nil)
	t := mat.NewVecDense(n, nil)
	var rhoPrev, alpha, omega float64
	for k := 0; k < n; k++ {
		if mat.Norm(r, 2) <= machEps*rnorm0 {
			break
		}
		rho := mat.Dot(rt, r)
		if rho < machEps*machEps {
			return errors.Errorf("BICGSTAB: rho breakdown at iteration %d", k+1)
		}
		if k == 0 {
			p.CopyVec(r)
		} else {
			beta := (rho / rhoPrev) * (alpha / omega)
			p.AddScaledVec(p, -omega, v)
			p.ScaleVec(beta, p)
			p.AddVec(p, r)
		}
		v.MulVec(b.ata, p)
		alpha = rho / mat.Dot(rt, v)
		s.AddScaledVec(r, -alpha, v)
		if mat.Norm(s, 2) <= machEps*rnorm0 {
			x.AddScaledVec(x, alpha, p)
			b.push(x)
			return nil
		}
		t.MulVec(b.ata, s)
		omega = mat.Dot(t, s) / mat.Dot(t, t)
		x.AddScaledVec(x, alpha, p)
		x.AddScaledVec(x, omega, s)
		r.AddScaledVec(s, -omega, t)
		b.push(x)
		if mat.Norm(r, 2) <= machEps*rnorm0 {
			return nil
		}
		if math.Abs(omega) < machEps*machEps {
			return errors.Errorf("BICGSTAB: omega breakdown at iteration %d", k+1)
		}
		rhoPrev = rho
	}
	if b.NumAnswers() == 0 {
		b.push(x)
	}
	return nil
}

// Covariance is not defined for the stabilized bi-conjugate iteration.
func (b *BiCGStab) Covariance(sigmaD float64, j int) (*mat.SymDense, error) {
	return nil, errors.New("BICGSTAB: no covariance for the stabilized iteration")
}
