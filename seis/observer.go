package seis

import (
	"strings"

	"github.com/pkg/errors"
)

// Observer is a recording station.
type Observer struct {
	Station  string
	Network  string
	Position Position
}

// ID returns the station_network identity string.
func (o Observer) ID() string {
	return o.Station + "_" + o.Network
}

// Event is a seismic source, identified by its catalog code.
type Event struct {
	ID       string
	Position Position
	Depth    float64 // source depth [km]
}

// SplitObserverID splits a station_network identity back into its parts.
func SplitObserverID(id string) (station, network string, err error) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 || i == len(id)-1 {
		return "", "", errors.Errorf("malformed observer identity %q", id)
	}
	return id[:i], id[i+1:], nil
}
