package seis

import "github.com/pkg/errors"

// Component is the ground-motion component of a waveform channel.
type Component uint8

const (
	// ComponentZ is the vertical component.
	ComponentZ Component = iota
	// ComponentR is the radial component.
	ComponentR
	// ComponentT is the transverse component.
	ComponentT
)

var componentNames = [...]string{"Z", "R", "T"}

// String returns the single-letter component code.
func (c Component) String() string {
	if int(c) >= len(componentNames) {
		return "?"
	}
	return componentNames[c]
}

// ParseComponent reads a single-letter component code.
func ParseComponent(s string) (Component, error) {
	for i, name := range componentNames {
		if s == name {
			return Component(i), nil
		}
	}
	return 0, errors.Errorf("unknown component %q", s)
}
