// Package seis defines the immutable value types shared by the inversion
// pipeline: identified waveform records, sensitivity records, and the
// unknown parameters of the earth model.
package seis

import (
	"fmt"

	"github.com/pkg/errors"
)

// WaveformKind tags a record as observed or synthetic.
type WaveformKind uint8

const (
	// Observed marks a recorded waveform.
	Observed WaveformKind = iota
	// Synthetic marks a computed waveform.
	Synthetic
)

// String returns the file token of the kind.
func (k WaveformKind) String() string {
	if k == Observed {
		return "obs"
	}
	return "syn"
}

// ParseWaveformKind reads an obs/syn token.
func ParseWaveformKind(s string) (WaveformKind, error) {
	switch s {
	case "obs":
		return Observed, nil
	case "syn":
		return Synthetic, nil
	}
	return 0, errors.Errorf("unknown waveform kind %q", s)
}

// WindowKey identifies the timewindow a record belongs to. The start time is
// deliberately excluded: records pair by key first, and their start times are
// then validated against the alignment tolerance.
type WindowKey struct {
	Observer  string
	Event     string
	Component Component
	Phases    string
}

// BasicID is one identified waveform record: a timewindow on a single
// (observer, event, component) channel carrying sampled data.
type BasicID struct {
	Observer   Observer
	Event      Event
	Component  Component
	Phases     Phases
	StartTime  float64
	SamplingHz float64
	Npts       int
	Kind       WaveformKind
	Data       []float64
}

// Key returns the timewindow identity of the record.
func (b BasicID) Key() WindowKey {
	return WindowKey{
		Observer:  b.Observer.ID(),
		Event:     b.Event.ID,
		Component: b.Component,
		Phases:    b.Phases.String(),
	}
}

// HasData reports whether the record carries its full sample array.
func (b BasicID) HasData() bool {
	return b.Npts > 0 && len(b.Data) == b.Npts
}

// String renders the record identity for error messages.
func (b BasicID) String() string {
	return fmt.Sprintf("%s %s %s %s %s t=%g", b.Kind, b.Observer.ID(), b.Event.ID, b.Component, b.Phases, b.StartTime)
}

// PartialID is an identified sensitivity record: the derivative of the
// synthetic waveform in one timewindow with respect to one unknown parameter.
type PartialID struct {
	Observer   Observer
	Event      Event
	Component  Component
	Phases     Phases
	StartTime  float64
	SamplingHz float64
	Npts       int
	Param      UnknownParameter
	Data       []float64
}

// Key returns the timewindow identity of the record.
func (p PartialID) Key() WindowKey {
	return WindowKey{
		Observer:  p.Observer.ID(),
		Event:     p.Event.ID,
		Component: p.Component,
		Phases:    p.Phases.String(),
	}
}

// HasData reports whether the record carries its full sample array.
func (p PartialID) HasData() bool {
	return p.Npts > 0 && len(p.Data) == p.Npts
}

// String renders the record identity for error messages.
func (p PartialID) String() string {
	return fmt.Sprintf("partial %s %s %s %s t=%g for %s", p.Observer.ID(), p.Event.ID, p.Component, p.Phases, p.StartTime, p.Param.Identity())
}
