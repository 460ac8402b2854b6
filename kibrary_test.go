package kibrary

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

func testObserver() seis.Observer {
	return seis.Observer{Station: "MAJO", Network: "IU", Position: seis.Position{Lat: 36.5, Lon: 138.2}}
}

func testEvent() seis.Event {
	return seis.Event{ID: "200707211327A", Position: seis.Position{Lat: -8, Lon: 157.1}, Depth: 22}
}

func makeBasic(kind seis.WaveformKind, start float64, data []float64) seis.BasicID {
	return seis.BasicID{
		Observer:   testObserver(),
		Event:      testEvent(),
		Component:  seis.ComponentZ,
		Phases:     seis.Phases{"S"},
		StartTime:  start,
		SamplingHz: 1,
		Npts:       len(data),
		Kind:       kind,
		Data:       data,
	}
}

func makePartial(u seis.UnknownParameter, start float64, data []float64) seis.PartialID {
	return seis.PartialID{
		Observer:   testObserver(),
		Event:      testEvent(),
		Component:  seis.ComponentZ,
		Phases:     seis.Phases{"S"},
		StartTime:  start,
		SamplingHz: 1,
		Npts:       len(data),
		Param:      u,
		Data:       data,
	}
}

func twoUnknowns() []seis.UnknownParameter {
	return []seis.UnknownParameter{
		seis.VoxelParameter{Kind: seis.TypeMU, Lat: 0, Lon: 0, Radius: 3505, Volume: 1},
		seis.VoxelParameter{Kind: seis.TypeMU, Lat: 1, Lon: 0, Radius: 3505, Volume: 1},
	}
}

// writeSystem lays down an inversion folder for the operations to consume.
func writeSystem(t *testing.T, dir string, ata, atd []float64, info inversion.DInfo, unknowns []seis.UnknownParameter) {
	t.Helper()
	n := len(atd)
	eq := &inversion.NormalEquations{
		ATA:  mat.NewSymDense(n, ata),
		ATD:  mat.NewVecDense(n, atd),
		Info: info,
	}
	if err := dataio.WriteNormalEquations(dir, eq, unknowns); err != nil {
		t.Fatalf("WriteNormalEquations: %v", err)
	}
}
