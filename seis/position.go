package seis

import "math"

// Position is a point on the surface of the reference sphere.
type Position struct {
	Lat float64 // geographic latitude [deg]
	Lon float64 // longitude [deg]
}

// EpicentralDistance returns the great-circle distance to q in degrees.
func (p Position) EpicentralDistance(q Position) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dlon := (q.Lon - p.Lon) * math.Pi / 180
	c := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dlon)
	// Clamp against rounding before the inverse cosine.
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}
