// Package solver implements the inverse-problem family over the normal
// equations AᵀA·m = Aᵀd: conjugate gradient, Tikhonov-regularized least
// squares, truncated SVD, non-negative least squares, and BiCGStab. Solvers
// treat their inputs as read-only and keep candidate models as an
// append-only list of vectors.
package solver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// machEps is the unit roundoff of float64 arithmetic.
const machEps = 0x1p-53

// InverseProblem is one configured solver for a normal-equation system.
type InverseProblem interface {
	// Method identifies the solver variant.
	Method() Method
	// Compute runs the solve to completion, populating the candidates.
	Compute() error
	// NumAnswers returns the number of candidate models produced.
	NumAnswers() int
	// Answer returns a copy of the i-th candidate, 1-indexed.
	Answer(i int) (*mat.VecDense, error)
	// Covariance returns the posterior model covariance of the j-th
	// candidate under data noise sigmaD, 1-indexed.
	Covariance(sigmaD float64, j int) (*mat.SymDense, error)
}

// problem carries the system and the answer list shared by all variants.
type problem struct {
	method  Method
	ata     *mat.SymDense
	atd     *mat.VecDense
	answers []*mat.VecDense
}

func newProblem(method Method, ata *mat.SymDense, atd *mat.VecDense) (problem, error) {
	if ata == nil || atd == nil {
		return problem{}, errors.Errorf("%s: normal equations missing", method)
	}
	if ata.SymmetricDim() != atd.Len() {
		return problem{}, errors.Errorf("%s: AᵀA is %d×%d but Aᵀd has %d entries",
			method, ata.SymmetricDim(), ata.SymmetricDim(), atd.Len())
	}
	return problem{method: method, ata: ata, atd: atd}, nil
}

// Method identifies the solver variant.
func (p *problem) Method() Method {
	return p.method
}

// Dim returns the number of unknowns.
func (p *problem) Dim() int {
	return p.ata.SymmetricDim()
}

// push appends a copy of m to the candidate list.
func (p *problem) push(m *mat.VecDense) {
	p.answers = append(p.answers, mat.VecDenseCopyOf(m))
}

// NumAnswers returns the number of candidate models produced.
func (p *problem) NumAnswers() int {
	return len(p.answers)
}

// Answer returns a copy of the i-th candidate, 1-indexed.
func (p *problem) Answer(i int) (*mat.VecDense, error) {
	if i < 1 || i > len(p.answers) {
		return nil, errors.Errorf("%s: no candidate %d, have %d", p.method, i, len(p.answers))
	}
	return mat.VecDenseCopyOf(p.answers[i-1]), nil
}
