package dataio

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

func sampleUnknowns() []seis.UnknownParameter {
	return []seis.UnknownParameter{
		seis.VoxelParameter{Kind: seis.TypeMU, Lat: 2.5, Lon: 140, Radius: 3505, Volume: 8.125e11},
		seis.VoxelParameter{Kind: seis.TypeVs, Lat: -2.5, Lon: 142.5, Radius: 3555, Volume: 8.25e11},
		seis.TimeParameter{Kind: seis.TypeTimeSource, Ref: "200707211327A", Scale: 1},
		seis.TimeParameter{Kind: seis.TypeTimeReceiver, Ref: "MAJO_IU", Scale: 1},
	}
}

func TestUnknownsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sampleUnknowns()
	if err := WriteUnknowns(&buf, want); err != nil {
		t.Fatalf("WriteUnknowns: %v", err)
	}
	got, err := ReadUnknowns(&buf)
	if err != nil {
		t.Fatalf("ReadUnknowns: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed parameters:\n%v\nwant\n%v", got, want)
	}
}

func TestReadUnknownsErrors(t *testing.T) {
	if _, err := ReadUnknowns(strings.NewReader("MU 2.5 140 3505 8e11 extra\n")); err == nil {
		t.Error("expected error for trailing fields")
	}
	if _, err := ReadUnknowns(strings.NewReader("# only comments\n")); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := ReadUnknowns(strings.NewReader("ROCK 1 2 3 4\n")); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestKnownsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.lst")
	unknowns := sampleUnknowns()
	want := make([]seis.KnownParameter, len(unknowns))
	for i, u := range unknowns {
		want[i] = seis.KnownParameter{Param: u, Value: float64(i) - 1.5}
	}
	if err := WriteKnownsFile(path, want); err != nil {
		t.Fatalf("WriteKnownsFile: %v", err)
	}
	got, err := ReadKnownsFile(path)
	if err != nil {
		t.Fatalf("ReadKnownsFile: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed values:\n%v\nwant\n%v", got, want)
	}
}

func TestReadKnownsErrors(t *testing.T) {
	if _, err := ReadKnowns(strings.NewReader("MU 2.5 140 3505 8e11\n")); err == nil {
		t.Error("expected error for missing value")
	}
	if _, err := ReadKnowns(strings.NewReader("TIME_SOURCE X 1 apple\n")); err == nil {
		t.Error("expected error for bad value")
	}
}
