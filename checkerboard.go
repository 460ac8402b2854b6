package kibrary

import (
	"math"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// Checkerboard derives a resolution-test input from an assembled system:
// an alternating-sign voxel model and the right-hand side that model
// would produce. Solving the written folder and comparing against the
// truth file shows where the data can recover structure.
type Checkerboard struct {
	InputDir  string
	Amplitude float64
	OutDir    string
	Log       *zap.SugaredLogger
}

// Run writes the synthetic inversion folder and the truth model.
func (op Checkerboard) Run() error {
	log := ensureLogger(op.Log)
	if !(op.Amplitude > 0) {
		return errors.Errorf("checkerboard amplitude must be positive, got %g", op.Amplitude)
	}
	eq, unknowns, err := dataio.ReadNormalEquations(op.InputDir)
	if err != nil {
		return err
	}
	m, voxels := checkerboardModel(unknowns, op.Amplitude)
	if voxels == 0 {
		return errors.New("no voxel parameters to checkerboard")
	}
	var atd mat.VecDense
	atd.MulVec(eq.ATA, m)
	// d = A·m makes ‖d‖² = mᵀ·AᵀA·m, and the synthetic data are their
	// own observations.
	norm := math.Sqrt(mat.Dot(m, &atd))
	check := &inversion.NormalEquations{
		ATA:  eq.ATA,
		ATD:  &atd,
		Info: inversion.DInfo{NumSamples: eq.Info.NumSamples, DNorm: norm, ObsNorm: norm},
	}
	if err := dataio.WriteNormalEquations(op.OutDir, check, unknowns); err != nil {
		return err
	}
	knowns := make([]seis.KnownParameter, len(unknowns))
	for i, u := range unknowns {
		knowns[i] = seis.KnownParameter{Param: u, Value: m.AtVec(i)}
	}
	if err := dataio.WriteKnownsFile(filepath.Join(op.OutDir, dataio.CheckerboardFile), knowns); err != nil {
		return err
	}
	log.Infow("checkerboard input written",
		"voxels", voxels, "unknowns", len(unknowns), "amplitude", op.Amplitude, "syntheticNorm", norm)
	return nil
}

// checkerboardModel alternates the sign of the amplitude by the parity of
// each voxel's position in the sorted distinct latitudes, longitudes and
// radii of the grid. Time terms stay zero. Returns the model and the
// voxel count.
func checkerboardModel(unknowns []seis.UnknownParameter, amplitude float64) (*mat.VecDense, int) {
	var lats, lons, radii []float64
	for _, u := range unknowns {
		if v, ok := u.(seis.VoxelParameter); ok {
			lats = append(lats, v.Lat)
			lons = append(lons, v.Lon)
			radii = append(radii, v.Radius)
		}
	}
	lats, lons, radii = distinctSorted(lats), distinctSorted(lons), distinctSorted(radii)
	m := mat.NewVecDense(len(unknowns), nil)
	voxels := 0
	for i, u := range unknowns {
		v, ok := u.(seis.VoxelParameter)
		if !ok {
			continue
		}
		voxels++
		parity := sort.SearchFloat64s(lats, v.Lat) +
			sort.SearchFloat64s(lons, v.Lon) +
			sort.SearchFloat64s(radii, v.Radius)
		a := amplitude
		if parity%2 == 1 {
			a = -a
		}
		m.SetVec(i, a)
	}
	return m, voxels
}

func distinctSorted(vals []float64) []float64 {
	sort.Float64s(vals)
	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
