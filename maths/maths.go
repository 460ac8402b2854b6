// Package maths holds the small numerical utilities shared by the assembly
// and solver layers, and the text serialization of matrices and vectors.
// Dense storage and factorizations come from gonum; nothing here reimplements
// linear algebra.
package maths

import (
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Ftoa formats a float with the shortest representation that parses back to
// the same value.
func Ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Sym copies a square matrix into symmetric storage, averaging a with aᵀ so
// that entries that drifted apart through serialization land back on the
// symmetric part.
func Sym(a *mat.Dense) *mat.SymDense {
	r, c := a.Dims()
	if r != c {
		panic("maths: Sym of a non-square matrix")
	}
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			s.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}
	return s
}
