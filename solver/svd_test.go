package solver

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSVDFullRankMatchesDirect(t *testing.T) {
	rnd := rand.New(rand.NewSource(21))
	ata, atd, want := randomSystem(rnd, 5)
	s, err := NewSVD(ata, atd)
	if err != nil {
		t.Fatalf("NewSVD: %v", err)
	}
	if err := s.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Rank() != 5 {
		t.Fatalf("Rank() = %d, want 5", s.Rank())
	}
	if s.NumAnswers() != 5 {
		t.Fatalf("NumAnswers() = %d, want 5", s.NumAnswers())
	}
	m, err := s.Answer(5)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !mat.EqualApprox(m, want, 1e-9) {
		t.Errorf("full-basis solution %v, want all ones", m.RawVector().Data)
	}
}

// On diag(4, 1) the eigenbasis is axis-aligned, so the truncated answers
// can be written down by hand.
func TestSVDTruncationOrder(t *testing.T) {
	ata := mat.NewSymDense(2, []float64{4, 0, 0, 1})
	atd := mat.NewVecDense(2, []float64{8, 3})
	s, err := NewSVD(ata, atd)
	if err != nil {
		t.Fatalf("NewSVD: %v", err)
	}
	if err := s.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	first, err := s.Answer(1)
	if err != nil {
		t.Fatalf("Answer(1): %v", err)
	}
	if !mat.EqualApprox(first, mat.NewVecDense(2, []float64{2, 0}), 1e-12) {
		t.Errorf("first truncation = %v, want [2 0]", first.RawVector().Data)
	}
	second, err := s.Answer(2)
	if err != nil {
		t.Fatalf("Answer(2): %v", err)
	}
	if !mat.EqualApprox(second, mat.NewVecDense(2, []float64{2, 3}), 1e-12) {
		t.Errorf("second truncation = %v, want [2 3]", second.RawVector().Data)
	}
}

func TestSVDRankDeficient(t *testing.T) {
	// Rank-one system: AᵀA = u·uᵀ with u = [1 1].
	ata := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	atd := mat.NewVecDense(2, []float64{1, 1})
	s, err := NewSVD(ata, atd)
	if err != nil {
		t.Fatalf("NewSVD: %v", err)
	}
	if err := s.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Rank() != 1 {
		t.Fatalf("Rank() = %d, want 1", s.Rank())
	}
	if s.NumAnswers() != 1 {
		t.Fatalf("NumAnswers() = %d, want 1", s.NumAnswers())
	}
	m, err := s.Answer(1)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !mat.EqualApprox(m, mat.NewVecDense(2, []float64{0.5, 0.5}), 1e-12) {
		t.Errorf("minimum-norm solution = %v, want [0.5 0.5]", m.RawVector().Data)
	}
}

func TestSVDZeroRank(t *testing.T) {
	s, err := NewSVD(mat.NewSymDense(2, nil), mat.NewVecDense(2, nil))
	if err != nil {
		t.Fatalf("NewSVD: %v", err)
	}
	if err := s.Compute(); err == nil {
		t.Error("expected error for the zero system")
	}
}

func TestSVDCovariance(t *testing.T) {
	ata := mat.NewSymDense(2, []float64{4, 0, 0, 1})
	atd := mat.NewVecDense(2, []float64{8, 3})
	s, err := NewSVD(ata, atd)
	if err != nil {
		t.Fatalf("NewSVD: %v", err)
	}
	if err := s.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	cov, err := s.Covariance(1, 2)
	if err != nil {
		t.Fatalf("Covariance: %v", err)
	}
	want := mat.NewSymDense(2, []float64{0.25, 0, 0, 1})
	if !mat.EqualApprox(cov, want, 1e-12) {
		t.Errorf("covariance =\n%v\nwant diag(0.25, 1)", mat.Formatted(cov))
	}
	truncated, err := s.Covariance(1, 1)
	if err != nil {
		t.Fatalf("Covariance: %v", err)
	}
	wantTrunc := mat.NewSymDense(2, []float64{0.25, 0, 0, 0})
	if !mat.EqualApprox(truncated, wantTrunc, 1e-12) {
		t.Errorf("truncated covariance =\n%v\nwant diag(0.25, 0)", mat.Formatted(truncated))
	}
	if _, err := s.Covariance(1, 3); err == nil {
		t.Error("expected error past the rank")
	}
}
