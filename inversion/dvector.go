// Package inversion assembles the weighted linear system of a waveform
// inversion: the residual vector d = obs − syn over all timewindows, the
// sensitivity matrix A over the unknown parameters, and the normal
// equations AᵀA, Aᵀd handed to the solvers.
package inversion

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// TimeTolerance is the largest start-time difference allowed between records
// of the same timewindow. A pair further apart signals a window-alignment
// bug upstream.
const TimeTolerance = 15.0

// channelKey groups records of one (observer, event, component) channel,
// ignoring the phase annotation.
type channelKey struct {
	observer  string
	event     string
	component seis.Component
}

// DVectorBuilder pairs observed and synthetic waveform records per
// timewindow and lays the windows out as contiguous blocks of one flat
// vector. It is a read-only view over the supplied records; build methods
// return fresh vectors.
type DVectorBuilder struct {
	obs      []seis.BasicID
	syn      []seis.BasicID
	offsets  []int
	total    int
	channels map[channelKey][]int
}

// NewDVectorBuilder pairs the given records. Every record must carry its
// sample data; every observed record needs exactly one synthetic partner on
// the same window (start times within TimeTolerance) and vice versa.
// Observed waveforms that are all zero or contain non-finite samples are
// rejected as corrupt input.
func NewDVectorBuilder(records []seis.BasicID) (*DVectorBuilder, error) {
	var obs, syn []seis.BasicID
	for _, rec := range records {
		if !rec.HasData() {
			return nil, errors.Errorf("record %s carries no waveform data", rec)
		}
		if rec.Kind == seis.Observed {
			obs = append(obs, rec)
		} else {
			syn = append(syn, rec)
		}
	}
	if len(obs) == 0 {
		return nil, errors.New("no observed records")
	}
	// Deterministic block order.
	sort.Slice(obs, func(i, j int) bool {
		a, b := obs[i], obs[j]
		if a.Event.ID != b.Event.ID {
			return a.Event.ID < b.Event.ID
		}
		if a.Observer.ID() != b.Observer.ID() {
			return a.Observer.ID() < b.Observer.ID()
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		return a.StartTime < b.StartTime
	})

	// Within one window key the k-th earliest synthetic pairs with the
	// k-th earliest observed record. Any other assignment only widens the
	// largest start-time gap, so a dataset rejected here has no valid
	// pairing at all.
	buckets := make(map[seis.WindowKey][]int)
	for i, rec := range syn {
		buckets[rec.Key()] = append(buckets[rec.Key()], i)
	}
	for _, idx := range buckets {
		sort.Slice(idx, func(a, b int) bool { return syn[idx[a]].StartTime < syn[idx[b]].StartTime })
	}
	next := make(map[seis.WindowKey]int)
	paired := make([]seis.BasicID, len(obs))
	for i, o := range obs {
		if err := checkObserved(o); err != nil {
			return nil, err
		}
		key := o.Key()
		k := next[key]
		if k >= len(buckets[key]) {
			return nil, errors.Errorf("no synthetic pair for %s", o)
		}
		next[key] = k + 1
		s := syn[buckets[key][k]]
		if diff := math.Abs(s.StartTime - o.StartTime); diff >= TimeTolerance {
			return nil, errors.Errorf("window alignment broken: start times of %s and %s differ by %g", o, s, diff)
		}
		if s.Npts != o.Npts {
			return nil, errors.Errorf("window alignment broken: %s has %d samples but %s has %d", o, o.Npts, s, s.Npts)
		}
		if s.SamplingHz != o.SamplingHz {
			return nil, errors.Errorf("window alignment broken: sampling %g Hz of %s vs %g Hz of %s", o.SamplingHz, o, s.SamplingHz, s)
		}
		paired[i] = s
	}
	for key, idx := range buckets {
		if next[key] != len(idx) {
			return nil, errors.Errorf("no observed pair for %s", syn[idx[next[key]]])
		}
	}

	d := &DVectorBuilder{
		obs:      obs,
		syn:      paired,
		offsets:  make([]int, len(obs)),
		channels: make(map[channelKey][]int),
	}
	for i, o := range obs {
		d.offsets[i] = d.total
		d.total += o.Npts
		key := channelKey{observer: o.Observer.ID(), event: o.Event.ID, component: o.Component}
		d.channels[key] = append(d.channels[key], i)
	}
	return d, nil
}

// checkObserved rejects corrupt observed data.
func checkObserved(o seis.BasicID) error {
	allZero := true
	for _, v := range o.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("observed waveform %s contains non-finite samples", o)
		}
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		return errors.Errorf("observed waveform %s is identically zero", o)
	}
	return nil
}

// NumWindows returns the number of paired timewindows.
func (d *DVectorBuilder) NumWindows() int {
	return len(d.obs)
}

// Length returns the total number of samples over all windows.
func (d *DVectorBuilder) Length() int {
	return d.total
}

// BlockOffset returns the start of window i in the flat vector.
func (d *DVectorBuilder) BlockOffset(i int) int {
	return d.offsets[i]
}

// BlockLength returns the number of samples of window i.
func (d *DVectorBuilder) BlockLength(i int) int {
	return d.obs[i].Npts
}

// Obs returns the observed record of window i.
func (d *DVectorBuilder) Obs(i int) seis.BasicID {
	return d.obs[i]
}

// Syn returns the synthetic record of window i.
func (d *DVectorBuilder) Syn(i int) seis.BasicID {
	return d.syn[i]
}

// Build returns the unweighted residual vector obs − syn.
func (d *DVectorBuilder) Build() *mat.VecDense {
	v := mat.NewVecDense(d.total, nil)
	for i := range d.obs {
		off := d.offsets[i]
		for k := 0; k < d.obs[i].Npts; k++ {
			v.SetVec(off+k, d.obs[i].Data[k]-d.syn[i].Data[k])
		}
	}
	return v
}

// BuildWithWeight returns the weighted residual vector, each window's block
// multiplied by its factor.
func (d *DVectorBuilder) BuildWithWeight(w Weighting) (*mat.VecDense, error) {
	if err := d.checkWeighting(w); err != nil {
		return nil, err
	}
	v := mat.NewVecDense(d.total, nil)
	for i := range d.obs {
		off, f := d.offsets[i], w.Get(i)
		for k := 0; k < d.obs[i].Npts; k++ {
			v.SetVec(off+k, f*(d.obs[i].Data[k]-d.syn[i].Data[k]))
		}
	}
	return v, nil
}

// BuildObsWithWeight returns the weighted observed vector, used for the
// normalization term of the variance.
func (d *DVectorBuilder) BuildObsWithWeight(w Weighting) (*mat.VecDense, error) {
	if err := d.checkWeighting(w); err != nil {
		return nil, err
	}
	v := mat.NewVecDense(d.total, nil)
	for i := range d.obs {
		off, f := d.offsets[i], w.Get(i)
		for k := 0; k < d.obs[i].Npts; k++ {
			v.SetVec(off+k, f*d.obs[i].Data[k])
		}
	}
	return v, nil
}

func (d *DVectorBuilder) checkWeighting(w Weighting) error {
	if w.Len() != len(d.obs) {
		return errors.Errorf("weighting covers %d windows, want %d", w.Len(), len(d.obs))
	}
	return nil
}

// weightedResidual returns window i's block of the weighted residual.
func (d *DVectorBuilder) weightedResidual(i int, w Weighting) *mat.VecDense {
	f := w.Get(i)
	v := mat.NewVecDense(d.obs[i].Npts, nil)
	for k := 0; k < d.obs[i].Npts; k++ {
		v.SetVec(k, f*(d.obs[i].Data[k]-d.syn[i].Data[k]))
	}
	return v
}

// Decompose splits a flat vector back into per-window blocks.
func (d *DVectorBuilder) Decompose(v *mat.VecDense) ([]*mat.VecDense, error) {
	if v.Len() != d.total {
		return nil, errors.Errorf("vector has %d entries, want %d", v.Len(), d.total)
	}
	parts := make([]*mat.VecDense, len(d.obs))
	for i := range d.obs {
		part := mat.NewVecDense(d.obs[i].Npts, nil)
		for k := 0; k < d.obs[i].Npts; k++ {
			part.SetVec(k, v.AtVec(d.offsets[i]+k))
		}
		parts[i] = part
	}
	return parts, nil
}

// Compose concatenates per-window blocks into one flat vector, the inverse
// of Decompose.
func (d *DVectorBuilder) Compose(parts []*mat.VecDense) (*mat.VecDense, error) {
	if len(parts) != len(d.obs) {
		return nil, errors.Errorf("got %d blocks, want %d", len(parts), len(d.obs))
	}
	v := mat.NewVecDense(d.total, nil)
	for i, part := range parts {
		if part.Len() != d.obs[i].Npts {
			return nil, errors.Errorf("block %d has %d entries, want %d", i, part.Len(), d.obs[i].Npts)
		}
		for k := 0; k < part.Len(); k++ {
			v.SetVec(d.offsets[i]+k, part.AtVec(k))
		}
	}
	return v, nil
}

// WhichTimewindow returns the block index of the window the record belongs
// to, or -1 when no window matches.
func (d *DVectorBuilder) WhichTimewindow(id seis.BasicID) int {
	key := channelKey{observer: id.Observer.ID(), event: id.Event.ID, component: id.Component}
	best := -1
	for _, i := range d.channels[key] {
		if d.obs[i].Key() != id.Key() {
			continue
		}
		if math.Abs(d.obs[i].StartTime-id.StartTime) >= TimeTolerance {
			continue
		}
		if best < 0 || math.Abs(d.obs[i].StartTime-id.StartTime) < math.Abs(d.obs[best].StartTime-id.StartTime) {
			best = i
		}
	}
	return best
}

// findBlock locates the window of a channel by start time alone, the match
// rule used for partial records, whose phase annotation may differ.
func (d *DVectorBuilder) findBlock(observer, event string, component seis.Component, startTime float64) int {
	key := channelKey{observer: observer, event: event, component: component}
	best := -1
	for _, i := range d.channels[key] {
		if math.Abs(d.obs[i].StartTime-startTime) >= TimeTolerance {
			continue
		}
		if best < 0 || math.Abs(d.obs[i].StartTime-startTime) < math.Abs(d.obs[best].StartTime-startTime) {
			best = i
		}
	}
	return best
}
