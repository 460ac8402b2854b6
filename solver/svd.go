package solver

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SVD solves through the eigenbasis of AᵀA. Candidate k is the solution
// truncated to the k largest eigenpairs, so the candidate index is an
// explicit rank control.
type TruncatedSVD struct {
	problem
	// eigenvalues in descending order with their vectors, up to rank
	values  []float64
	vectors *mat.Dense
	rank    int
}

// NewSVD configures a truncated eigenbasis solve.
func NewSVD(ata *mat.SymDense, atd *mat.VecDense) (*TruncatedSVD, error) {
	p, err := newProblem(SVD, ata, atd)
	if err != nil {
		return nil, err
	}
	return &TruncatedSVD{problem: p}, nil
}

// Compute decomposes AᵀA and accumulates the truncated solutions
// m_k = Σ_{i≤k} (vᵢ·Aᵀd/λᵢ)·vᵢ for k = 1..rank.
func (s *TruncatedSVD) Compute() error {
	var es mat.EigenSym
	if ok := es.Factorize(s.ata, true); !ok {
		return errors.New("SVD: eigendecomposition failed")
	}
	n := s.Dim()
	asc := es.Values(nil)
	var ascVecs mat.Dense
	es.VectorsTo(&ascVecs)

	// Flip to descending order and cut the rank where eigenvalues sink
	// into rounding noise of the largest.
	s.values = make([]float64, n)
	s.vectors = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		s.values[i] = asc[n-1-i]
		for k := 0; k < n; k++ {
			s.vectors.Set(k, i, ascVecs.At(k, n-1-i))
		}
	}
	tol := float64(n) * machEps * s.values[0]
	if !(tol > 0) {
		return errors.New("SVD: system has rank zero")
	}
	s.rank = 0
	for s.rank < n && s.values[s.rank] > tol {
		s.rank++
	}

	m := mat.NewVecDense(n, nil)
	for i := 0; i < s.rank; i++ {
		v := s.vectors.ColView(i)
		m.AddScaledVec(m, mat.Dot(v, s.atd)/s.values[i], v)
		s.push(m)
	}
	return nil
}

// Rank returns the number of eigenpairs above the cutoff.
func (s *TruncatedSVD) Rank() int {
	return s.rank
}

// Covariance sums the kept eigenpair terms up to candidate j:
// σ²·Σ vᵢvᵢᵀ/λᵢ.
func (s *TruncatedSVD) Covariance(sigmaD float64, j int) (*mat.SymDense, error) {
	if j < 1 || j > s.rank {
		return nil, errors.Errorf("SVD: no candidate %d, have %d", j, s.rank)
	}
	cov := mat.NewSymDense(s.Dim(), nil)
	for i := 0; i < j; i++ {
		cov.SymRankOne(cov, sigmaD*sigmaD/s.values[i], s.vectors.ColView(i))
	}
	return cov, nil
}
