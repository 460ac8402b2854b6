package kibrary

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

func TestSumCombinesFolders(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	unknowns := twoUnknowns()
	writeSystem(t, a,
		[]float64{1, 0, 0, 2}, []float64{1, 2},
		inversion.DInfo{NumSamples: 6, DNorm: math.Sqrt(5), ObsNorm: math.Sqrt(13)},
		unknowns)
	writeSystem(t, b,
		[]float64{1, 0, 0, 1}, []float64{3, 1},
		inversion.DInfo{NumSamples: 4, DNorm: 2, ObsNorm: 3},
		unknowns)

	out := filepath.Join(base, "sum")
	op := Sum{InputDirs: []string{a, b}, OutDir: out}
	if err := op.Run(); err != nil {
		t.Fatalf("Sum: %v", err)
	}

	eq, gotUnknowns, err := dataio.ReadNormalEquations(out)
	if err != nil {
		t.Fatalf("ReadNormalEquations: %v", err)
	}
	if !mat.EqualApprox(eq.ATA, mat.NewSymDense(2, []float64{2, 0, 0, 3}), 1e-12) {
		t.Errorf("summed AᵀA:\n%v", mat.Formatted(eq.ATA))
	}
	if !mat.EqualApprox(eq.ATD, mat.NewVecDense(2, []float64{4, 3}), 1e-12) {
		t.Errorf("summed Aᵀd: %v", eq.ATD.RawVector().Data)
	}
	if eq.Info.NumSamples != 10 {
		t.Errorf("NumSamples = %d, want 10", eq.Info.NumSamples)
	}
	if math.Abs(eq.Info.DNorm-3) > 1e-12 {
		t.Errorf("DNorm = %g, want 3", eq.Info.DNorm)
	}
	if math.Abs(eq.Info.ObsNorm-math.Sqrt(22)) > 1e-12 {
		t.Errorf("ObsNorm = %g, want sqrt(22)", eq.Info.ObsNorm)
	}
	if len(gotUnknowns) != len(unknowns) {
		t.Errorf("unknowns count = %d, want %d", len(gotUnknowns), len(unknowns))
	}
	// Without requested methods the operation stops at the summed system.
	if _, err := os.Stat(filepath.Join(out, "CG")); !os.IsNotExist(err) {
		t.Error("unexpected method folder")
	}
}

func TestSumSolvesCombinedSystem(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	unknowns := twoUnknowns()
	// Halves of the [[4 1] [1 3]]·m = [5 4] system.
	writeSystem(t, a,
		[]float64{2, 0.5, 0.5, 1.5}, []float64{2.5, 2},
		inversion.DInfo{NumSamples: 25, DNorm: 2, ObsNorm: 4},
		unknowns)
	writeSystem(t, b,
		[]float64{2, 0.5, 0.5, 1.5}, []float64{2.5, 2},
		inversion.DInfo{NumSamples: 25, DNorm: math.Sqrt(6), ObsNorm: 3},
		unknowns)

	out := filepath.Join(base, "sum")
	op := Sum{
		InputDirs: []string{a, b},
		OutDir:    out,
		Options:   SolveOptions{Methods: []string{"cg"}},
	}
	if err := op.Run(); err != nil {
		t.Fatalf("Sum: %v", err)
	}
	knowns, err := dataio.ReadKnownsFile(filepath.Join(out, "CG", "cg2.lst"))
	if err != nil {
		t.Fatalf("ReadKnownsFile: %v", err)
	}
	for i, k := range knowns {
		if math.Abs(k.Value-1) > 1e-9 {
			t.Errorf("solved value %d = %g, want 1", i, k.Value)
		}
	}
}

func TestSumRejectsMismatchedFolders(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	c := filepath.Join(base, "c")
	writeSystem(t, a,
		[]float64{1, 0, 0, 1}, []float64{1, 1},
		inversion.DInfo{NumSamples: 4, DNorm: 1, ObsNorm: 2},
		twoUnknowns())
	other := []seis.UnknownParameter{
		seis.VoxelParameter{Kind: seis.TypeMU, Lat: 0, Lon: 0, Radius: 3505, Volume: 1},
		seis.VoxelParameter{Kind: seis.TypeMU, Lat: 7, Lon: 0, Radius: 3505, Volume: 1},
	}
	writeSystem(t, c,
		[]float64{1, 0, 0, 1}, []float64{1, 1},
		inversion.DInfo{NumSamples: 4, DNorm: 1, ObsNorm: 2},
		other)

	op := Sum{InputDirs: []string{a, c}, OutDir: filepath.Join(base, "sum")}
	if err := op.Run(); err == nil {
		t.Error("expected error for differing unknowns")
	}

	op = Sum{InputDirs: []string{a}, OutDir: filepath.Join(base, "sum")}
	if err := op.Run(); err == nil {
		t.Error("expected error for a single input folder")
	}
}
