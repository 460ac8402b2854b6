package seis

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParamType enumerates the kinds of scalar degrees of freedom the model has.
type ParamType uint8

const (
	// TypeMU is a shear-modulus perturbation at a voxel.
	TypeMU ParamType = iota
	// TypeLambda is a perturbation of the first Lamé parameter at a voxel.
	TypeLambda
	// TypeVp is a P-velocity perturbation at a voxel.
	TypeVp
	// TypeVs is an S-velocity perturbation at a voxel.
	TypeVs
	// TypeQMu is a shear-attenuation perturbation at a voxel.
	TypeQMu
	// TypeTimeSource is a source-side static time term.
	TypeTimeSource
	// TypeTimeReceiver is a receiver-side static time term.
	TypeTimeReceiver
)

var paramTypeNames = [...]string{"MU", "LAMBDA", "VP", "VS", "QMU", "TIME_SOURCE", "TIME_RECEIVER"}

// String returns the file token of the parameter type.
func (t ParamType) String() string {
	if int(t) >= len(paramTypeNames) {
		return "?"
	}
	return paramTypeNames[t]
}

// IsTimeTerm reports whether the type is a source/receiver time term rather
// than a 3D structure perturbation.
func (t ParamType) IsTimeTerm() bool {
	return t == TypeTimeSource || t == TypeTimeReceiver
}

// ParseParamType reads a parameter-type token.
func ParseParamType(s string) (ParamType, error) {
	for i, name := range paramTypeNames {
		if s == name {
			return ParamType(i), nil
		}
	}
	return 0, errors.Errorf("unknown parameter type %q", s)
}

// UnknownParameter is one scalar degree of freedom of the earth model.
// Implementations are immutable value objects; Identity excludes the
// weighting size, so two parameters at the same place are the same unknown
// regardless of how they are weighted.
type UnknownParameter interface {
	// Type returns the kind of degree of freedom.
	Type() ParamType
	// Size returns the pre-inversion weighting coefficient (voxel volume,
	// or the scale of a time term).
	Size() float64
	// Identity returns the equality key of the parameter.
	Identity() string
	// Tuple returns the whitespace-separated file fields of the parameter.
	Tuple() []string
}

// VoxelParameter is a structure perturbation at one 3D voxel.
type VoxelParameter struct {
	Kind   ParamType
	Lat    float64 // voxel center latitude [deg]
	Lon    float64 // voxel center longitude [deg]
	Radius float64 // voxel center radius [km]
	Volume float64 // voxel volume, applied as the parameter size
}

// Type returns the kind of degree of freedom.
func (v VoxelParameter) Type() ParamType { return v.Kind }

// Size returns the voxel volume.
func (v VoxelParameter) Size() float64 { return v.Volume }

// Identity returns the equality key: type and voxel location.
func (v VoxelParameter) Identity() string {
	return v.Kind.String() + " " + ftoa(v.Lat) + " " + ftoa(v.Lon) + " " + ftoa(v.Radius)
}

// Tuple returns the file fields: TYPE lat lon radius size.
func (v VoxelParameter) Tuple() []string {
	return []string{v.Kind.String(), ftoa(v.Lat), ftoa(v.Lon), ftoa(v.Radius), ftoa(v.Volume)}
}

// TimeParameter is a static time term attached to one event or one observer.
type TimeParameter struct {
	Kind  ParamType // TypeTimeSource or TypeTimeReceiver
	Ref   string    // event ID or observer identity the term attaches to
	Scale float64
}

// Type returns the kind of degree of freedom.
func (t TimeParameter) Type() ParamType { return t.Kind }

// Size returns the scale of the time term.
func (t TimeParameter) Size() float64 { return t.Scale }

// Identity returns the equality key: type and attachment.
func (t TimeParameter) Identity() string {
	return t.Kind.String() + " " + t.Ref
}

// Tuple returns the file fields: TYPE ref size.
func (t TimeParameter) Tuple() []string {
	return []string{t.Kind.String(), t.Ref, ftoa(t.Scale)}
}

// KnownParameter is an unknown parameter together with its solved value.
type KnownParameter struct {
	Param UnknownParameter
	Value float64
}

// ParseUnknown reads one unknown-parameter tuple from the head of fields and
// returns the parameter together with the number of fields consumed.
func ParseUnknown(fields []string) (UnknownParameter, int, error) {
	if len(fields) == 0 {
		return nil, 0, errors.New("empty unknown-parameter tuple")
	}
	typ, err := ParseParamType(fields[0])
	if err != nil {
		return nil, 0, err
	}
	if typ.IsTimeTerm() {
		if len(fields) < 3 {
			return nil, 0, errors.Errorf("time term %s needs 3 fields, got %d", typ, len(fields))
		}
		scale, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "size of time term %s %s", typ, fields[1])
		}
		return TimeParameter{Kind: typ, Ref: fields[1], Scale: scale}, 3, nil
	}
	if len(fields) < 5 {
		return nil, 0, errors.Errorf("voxel parameter %s needs 5 fields, got %d", typ, len(fields))
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		vals[i], err = strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "voxel parameter %s field %q", typ, fields[i+1])
		}
	}
	return VoxelParameter{Kind: typ, Lat: vals[0], Lon: vals[1], Radius: vals[2], Volume: vals[3]}, 5, nil
}

// FormatUnknown renders a parameter as its file line.
func FormatUnknown(u UnknownParameter) string {
	return strings.Join(u.Tuple(), " ")
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
