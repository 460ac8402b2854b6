package inversion

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// AMatrixBuilder lays sensitivity records out as the matrix A: one row per
// sample of the paired timewindows, one column per unknown parameter. Each
// column is scaled by its parameter's size coefficient (the voxel volume
// acting as the quadrature weight of the discretized integral). It keeps
// only references to the partial waveforms, so a full dense A is never held
// unless a caller asks for it.
type AMatrixBuilder struct {
	d        *DVectorBuilder
	unknowns []seis.UnknownParameter
	sizes    []float64
	columns  map[string]int
	// blocks[i][j] is the raw partial waveform of window i with respect to
	// unknown j, nil where the parameter has no influence on the window.
	blocks [][][]float64
}

// NewAMatrixBuilder matches partial records against the window layout of d
// and the declared unknowns. Partials for parameters outside the declared
// set, and partials on timewindows d does not use, are skipped. A matched
// partial must cover its window exactly; two partials on the same window and
// unknown are a configuration error.
func NewAMatrixBuilder(partials []seis.PartialID, unknowns []seis.UnknownParameter, d *DVectorBuilder) (*AMatrixBuilder, error) {
	if len(unknowns) == 0 {
		return nil, errors.New("no unknown parameters")
	}
	columns := make(map[string]int, len(unknowns))
	sizes := make([]float64, len(unknowns))
	for j, u := range unknowns {
		if _, ok := columns[u.Identity()]; ok {
			return nil, errors.Errorf("unknown parameter %s declared twice", u.Identity())
		}
		if !(u.Size() > 0) {
			return nil, errors.Errorf("unknown parameter %s has size %g", u.Identity(), u.Size())
		}
		columns[u.Identity()] = j
		sizes[j] = u.Size()
	}
	a := &AMatrixBuilder{
		d:        d,
		unknowns: append([]seis.UnknownParameter(nil), unknowns...),
		sizes:    sizes,
		columns:  columns,
		blocks:   make([][][]float64, d.NumWindows()),
	}
	for i := range a.blocks {
		a.blocks[i] = make([][]float64, len(unknowns))
	}
	for _, p := range partials {
		if !p.HasData() {
			return nil, errors.Errorf("record %s carries no waveform data", p)
		}
		j, ok := columns[p.Param.Identity()]
		if !ok {
			continue
		}
		i := d.findBlock(p.Observer.ID(), p.Event.ID, p.Component, p.StartTime)
		if i < 0 {
			continue
		}
		if p.Npts != d.BlockLength(i) {
			return nil, errors.Errorf("%s has %d samples but its window has %d", p, p.Npts, d.BlockLength(i))
		}
		if a.blocks[i][j] != nil {
			return nil, errors.Errorf("two partials cover the same window: %s", p)
		}
		a.blocks[i][j] = p.Data
	}
	return a, nil
}

// NumUnknowns returns the number of columns of A.
func (a *AMatrixBuilder) NumUnknowns() int {
	return len(a.unknowns)
}

// Unknowns returns the column parameters in order.
func (a *AMatrixBuilder) Unknowns() []seis.UnknownParameter {
	return append([]seis.UnknownParameter(nil), a.unknowns...)
}

// Build returns the unweighted dense A. Intended for small systems and
// tests; large runs stream block-wise through Assemble instead.
func (a *AMatrixBuilder) Build() *mat.Dense {
	m := mat.NewDense(a.d.Length(), len(a.unknowns), nil)
	for i := range a.blocks {
		off := a.d.BlockOffset(i)
		for j, data := range a.blocks[i] {
			for k, v := range data {
				m.Set(off+k, j, a.sizes[j]*v)
			}
		}
	}
	return m
}

// BuildWithWeight returns the dense A with every window block multiplied by
// its weighting factor. The weighting must be the one applied to d.
func (a *AMatrixBuilder) BuildWithWeight(w Weighting) (*mat.Dense, error) {
	if err := a.d.checkWeighting(w); err != nil {
		return nil, err
	}
	m := mat.NewDense(a.d.Length(), len(a.unknowns), nil)
	for i := range a.blocks {
		off, f := a.d.BlockOffset(i), w.Get(i)
		for j, data := range a.blocks[i] {
			for k, v := range data {
				m.Set(off+k, j, f*a.sizes[j]*v)
			}
		}
	}
	return m, nil
}

// WeightedBlock materializes window i's weighted rows, the unit of streaming
// assembly.
func (a *AMatrixBuilder) WeightedBlock(i int, w Weighting) *mat.Dense {
	f := w.Get(i)
	m := mat.NewDense(a.d.BlockLength(i), len(a.unknowns), nil)
	for j, data := range a.blocks[i] {
		for k, v := range data {
			m.Set(k, j, f*a.sizes[j]*v)
		}
	}
	return m
}
