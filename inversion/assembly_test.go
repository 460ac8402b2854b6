package inversion

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

func TestAssembleTwoWindowSystem(t *testing.T) {
	d, err := NewDVectorBuilder(twoWindowRecords())
	if err != nil {
		t.Fatalf("NewDVectorBuilder: %v", err)
	}
	unknowns := twoVoxels()
	a, err := NewAMatrixBuilder(twoWindowPartials(unknowns), unknowns, d)
	if err != nil {
		t.Fatalf("NewAMatrixBuilder: %v", err)
	}
	eq, err := Assemble(a, NewWeighting([]float64{1, 1}))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	wantATA := mat.NewSymDense(2, []float64{3, 0, 0, 12})
	if !mat.EqualApprox(eq.ATA, wantATA, 1e-12) {
		t.Errorf("AᵀA =\n%v\nwant diag(3, 12)", mat.Formatted(eq.ATA))
	}
	wantATD := mat.NewVecDense(2, []float64{3, 12})
	if !mat.EqualApprox(eq.ATD, wantATD, 1e-12) {
		t.Errorf("Aᵀd = %v, want [3 12]", eq.ATD.RawVector().Data)
	}
	if eq.Info.NumSamples != 6 {
		t.Errorf("NumSamples = %d, want 6", eq.Info.NumSamples)
	}
	if want := math.Sqrt(15); math.Abs(eq.Info.DNorm-want) > 1e-12 {
		t.Errorf("DNorm = %g, want %g", eq.Info.DNorm, want)
	}
	if want := math.Sqrt(39); math.Abs(eq.Info.ObsNorm-want) > 1e-12 {
		t.Errorf("ObsNorm = %g, want %g", eq.Info.ObsNorm, want)
	}
}

// threeWindowSystem builds a dataset with uneven window lengths, two
// components, and overlapping sensitivities so AᵀA has off-diagonal mass.
func threeWindowSystem(t *testing.T) (*DVectorBuilder, *AMatrixBuilder) {
	t.Helper()
	transverse := func(b seis.BasicID) seis.BasicID {
		b.Component = seis.ComponentT
		return b
	}
	recs := []seis.BasicID{
		makeBasic(seis.Observed, 0, []float64{2, -1, 3}),
		makeBasic(seis.Synthetic, 0, []float64{1, 1, 1}),
		makeBasic(seis.Observed, 100, []float64{3, 0.5, -2, 1}),
		makeBasic(seis.Synthetic, 100, []float64{1, 0.5, -1, 2}),
		transverse(makeBasic(seis.Observed, 50, []float64{-4, 2})),
		transverse(makeBasic(seis.Synthetic, 50, []float64{-3, 1})),
	}
	d, err := NewDVectorBuilder(recs)
	if err != nil {
		t.Fatalf("NewDVectorBuilder: %v", err)
	}
	unknowns := twoVoxels()
	partials := []seis.PartialID{
		makePartial(unknowns[0], 0, []float64{1, 2, -1}),
		makePartial(unknowns[1], 0, []float64{0.5, 0, 1}),
		makePartial(unknowns[0], 100, []float64{2, 1, 0, 1}),
	}
	pT := makePartial(unknowns[1], 50, []float64{1, -1})
	pT.Component = seis.ComponentT
	partials = append(partials, pT)
	a, err := NewAMatrixBuilder(partials, unknowns, d)
	if err != nil {
		t.Fatalf("NewAMatrixBuilder: %v", err)
	}
	return d, a
}

func TestAssembleMatchesDenseProducts(t *testing.T) {
	d, a := threeWindowSystem(t)
	w := SchemeReciprocal.Weigh(d)
	eq, err := Assemble(a, w)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	aw, err := a.BuildWithWeight(w)
	if err != nil {
		t.Fatalf("BuildWithWeight: %v", err)
	}
	dw, err := d.BuildWithWeight(w)
	if err != nil {
		t.Fatalf("BuildWithWeight: %v", err)
	}
	var ata mat.Dense
	ata.Mul(aw.T(), aw)
	var atd mat.VecDense
	atd.MulVec(aw.T(), dw)
	if !mat.EqualApprox(eq.ATA, &ata, 1e-12) {
		t.Errorf("streamed AᵀA differs from dense product:\n%v\nvs\n%v",
			mat.Formatted(eq.ATA), mat.Formatted(&ata))
	}
	if !mat.EqualApprox(eq.ATD, &atd, 1e-12) {
		t.Errorf("streamed Aᵀd differs from dense product")
	}

	if eq.Info.NumSamples != d.Length() {
		t.Errorf("NumSamples = %d, want %d", eq.Info.NumSamples, d.Length())
	}
	if want := mat.Norm(dw, 2); math.Abs(eq.Info.DNorm-want) > 1e-12 {
		t.Errorf("DNorm = %g, want %g", eq.Info.DNorm, want)
	}
	ow, err := d.BuildObsWithWeight(w)
	if err != nil {
		t.Fatalf("BuildObsWithWeight: %v", err)
	}
	if want := mat.Norm(ow, 2); math.Abs(eq.Info.ObsNorm-want) > 1e-12 {
		t.Errorf("ObsNorm = %g, want %g", eq.Info.ObsNorm, want)
	}
}

func TestAssembleRejectsWrongWeighting(t *testing.T) {
	_, a := threeWindowSystem(t)
	if _, err := Assemble(a, NewWeighting([]float64{1})); err == nil {
		t.Error("expected error for weighting of wrong length")
	}
}

func TestDInfoCombine(t *testing.T) {
	got := DInfo{NumSamples: 10, DNorm: 3, ObsNorm: 4}.Combine(DInfo{NumSamples: 5, DNorm: 4, ObsNorm: 3})
	if got.NumSamples != 15 {
		t.Errorf("NumSamples = %d, want 15", got.NumSamples)
	}
	if math.Abs(got.DNorm-5) > 1e-15 {
		t.Errorf("DNorm = %g, want 5", got.DNorm)
	}
	if math.Abs(got.ObsNorm-5) > 1e-15 {
		t.Errorf("ObsNorm = %g, want 5", got.ObsNorm)
	}
}

func TestNormalEquationsAdd(t *testing.T) {
	d, a := threeWindowSystem(t)
	w := SchemeIdentity.Weigh(d)
	eq1, err := Assemble(a, w)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	eq2, err := Assemble(a, w)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var wantATA mat.SymDense
	wantATA.AddSym(eq1.ATA, eq1.ATA)
	var wantATD mat.VecDense
	wantATD.AddVec(eq1.ATD, eq1.ATD)
	if err := eq1.Add(eq2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !mat.EqualApprox(eq1.ATA, &wantATA, 1e-12) {
		t.Errorf("summed AᵀA wrong")
	}
	if !mat.EqualApprox(eq1.ATD, &wantATD, 1e-12) {
		t.Errorf("summed Aᵀd wrong")
	}
	if eq1.Info.NumSamples != 2*eq2.Info.NumSamples {
		t.Errorf("summed NumSamples = %d", eq1.Info.NumSamples)
	}
	if want := math.Sqrt(2) * eq2.Info.DNorm; math.Abs(eq1.Info.DNorm-want) > 1e-12 {
		t.Errorf("summed DNorm = %g, want %g", eq1.Info.DNorm, want)
	}

	other := &NormalEquations{ATA: mat.NewSymDense(3, nil), ATD: mat.NewVecDense(3, nil)}
	if err := eq1.Add(other); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}
