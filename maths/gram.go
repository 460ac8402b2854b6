package maths

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// GramAccumulator assembles AᵀA and Aᵀd from row blocks of A and d, so that
// the full system matrix never has to be held in memory at once. Live
// storage is one n×n symmetric matrix, one n-vector, and the current block.
type GramAccumulator struct {
	ata  *mat.SymDense
	atd  *mat.VecDense
	rows int
}

// NewGramAccumulator creates an accumulator over n columns (unknowns).
func NewGramAccumulator(n int) (*GramAccumulator, error) {
	if n < 1 {
		return nil, errors.New("gram accumulator dimension must be positive")
	}
	return &GramAccumulator{
		ata: mat.NewSymDense(n, nil),
		atd: mat.NewVecDense(n, nil),
	}, nil
}

// Dim returns the number of columns.
func (g *GramAccumulator) Dim() int {
	return g.ata.SymmetricDim()
}

// Rows returns the number of rows accumulated so far.
func (g *GramAccumulator) Rows() int {
	return g.rows
}

// Accumulate folds one block of rows of A and the matching entries of d into
// the running sums.
func (g *GramAccumulator) Accumulate(a mat.Matrix, d mat.Vector) error {
	r, c := a.Dims()
	if c != g.Dim() {
		return errors.Errorf("block has %d columns, want %d", c, g.Dim())
	}
	if d.Len() != r {
		return errors.Errorf("block has %d rows but its right-hand side has %d entries", r, d.Len())
	}
	var gram mat.SymDense
	gram.SymOuterK(1, a.T())
	g.ata.AddSym(g.ata, &gram)
	var mom mat.VecDense
	mom.MulVec(a.T(), d)
	g.atd.AddVec(g.atd, &mom)
	g.rows += r
	return nil
}

// ATA returns the accumulated AᵀA.
func (g *GramAccumulator) ATA() *mat.SymDense {
	return g.ata
}

// ATD returns the accumulated Aᵀd.
func (g *GramAccumulator) ATD() *mat.VecDense {
	return g.atd
}
