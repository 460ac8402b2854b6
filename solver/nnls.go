package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NNLS solves the normal equations under the constraint m ≥ 0 with the
// active-set iteration of Bro and de Jong, which works from AᵀA and Aᵀd
// alone. It produces a single candidate.
type NNLSSolver struct {
	problem
}

// NewNNLS configures a non-negative solve.
func NewNNLS(ata *mat.SymDense, atd *mat.VecDense) (*NNLSSolver, error) {
	p, err := newProblem(NNLS, ata, atd)
	if err != nil {
		return nil, err
	}
	return &NNLSSolver{problem: p}, nil
}

// Compute grows the passive set one coordinate at a time, backtracking to
// the feasibility boundary whenever an unconstrained subsolve turns a
// passive coordinate negative.
func (p *NNLSSolver) Compute() error {
	n := p.Dim()
	passive := make([]bool, n)
	x := mat.NewVecDense(n, nil)
	w := mat.VecDenseCopyOf(p.atd)
	tol := 10 * float64(n) * machEps * mat.Norm(p.ata, 1)

	for iter := 0; ; iter++ {
		if iter > 3*n {
			return errors.Errorf("NNLS: passive set not settled after %d rounds", iter)
		}
		// Most violated free coordinate of the gradient.
		j := -1
		for i := 0; i < n; i++ {
			if !passive[i] && w.AtVec(i) > tol && (j < 0 || w.AtVec(i) > w.AtVec(j)) {
				j = i
			}
		}
		if j < 0 {
			break
		}
		passive[j] = true
		s, err := p.solvePassive(passive)
		if err != nil {
			return err
		}
		for hasNonPositive(s, passive) {
			// Step x toward s only up to where the first passive
			// coordinate reaches zero, then free it.
			alpha, drop := math.Inf(1), -1
			for i, in := range passive {
				if in && s.AtVec(i) <= 0 {
					if a := x.AtVec(i) / (x.AtVec(i) - s.AtVec(i)); a < alpha {
						alpha, drop = a, i
					}
				}
			}
			for i, in := range passive {
				if in {
					x.SetVec(i, x.AtVec(i)+alpha*(s.AtVec(i)-x.AtVec(i)))
				}
			}
			x.SetVec(drop, 0)
			passive[drop] = false
			for i, in := range passive {
				if in && x.AtVec(i) <= 0 {
					x.SetVec(i, 0)
					passive[i] = false
				}
			}
			if s, err = p.solvePassive(passive); err != nil {
				return err
			}
		}
		x.CopyVec(s)
		w.MulVec(p.ata, x)
		w.SubVec(p.atd, w)
	}
	p.push(x)
	return nil
}

// solvePassive solves the unconstrained subsystem over the passive
// coordinates, zeros elsewhere.
func (p *NNLSSolver) solvePassive(passive []bool) (*mat.VecDense, error) {
	var idx []int
	for i, in := range passive {
		if in {
			idx = append(idx, i)
		}
	}
	s := mat.NewVecDense(p.Dim(), nil)
	if len(idx) == 0 {
		return s, nil
	}
	k := len(idx)
	sub := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	for a, i := range idx {
		rhs.SetVec(a, p.atd.AtVec(i))
		for b := a; b < k; b++ {
			sub.SetSym(a, b, p.ata.At(i, idx[b]))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sub); !ok {
		return nil, errors.New("NNLS: passive subsystem singular")
	}
	var y mat.VecDense
	if err := chol.SolveVecTo(&y, rhs); err != nil {
		return nil, errors.Wrap(err, "NNLS")
	}
	for a, i := range idx {
		s.SetVec(i, y.AtVec(a))
	}
	return s, nil
}

func hasNonPositive(s *mat.VecDense, passive []bool) bool {
	for i, in := range passive {
		if in && s.AtVec(i) <= 0 {
			return true
		}
	}
	return false
}

// Covariance is not defined for the clamped active-set solution.
func (p *NNLSSolver) Covariance(sigmaD float64, j int) (*mat.SymDense, error) {
	return nil, errors.New("NNLS: no covariance for the constrained solution")
}
