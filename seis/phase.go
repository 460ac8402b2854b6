package seis

import "strings"

// Phases is the ordered list of seismic phases a timewindow was cut around.
type Phases []string

// ParsePhases reads a comma-joined phase list such as "S,ScS".
func ParsePhases(s string) Phases {
	if s == "" || s == "-" {
		return nil
	}
	return Phases(strings.Split(s, ","))
}

// String joins the phase names with commas; "-" stands for an empty list.
func (p Phases) String() string {
	if len(p) == 0 {
		return "-"
	}
	return strings.Join(p, ",")
}

// Equal reports whether two phase lists are identical, order included.
func (p Phases) Equal(q Phases) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}
