package solver

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Method names one solver variant.
type Method uint8

const (
	// CG is the conjugate-gradient iteration.
	CG Method = iota
	// LS is the Tikhonov-regularized direct least squares.
	LS
	// SVD is the truncated eigenbasis solution.
	SVD
	// NNLS is the non-negative least squares.
	NNLS
	// BICGSTAB is the stabilized bi-conjugate gradient iteration.
	BICGSTAB
)

var methodNames = [...]string{"CG", "LS", "SVD", "NNLS", "BICGSTAB"}

// String returns the method tag, also used as its output directory name.
func (m Method) String() string {
	if int(m) >= len(methodNames) {
		return "?"
	}
	return methodNames[m]
}

// ParseMethod resolves a method tag, case-insensitively.
func ParseMethod(s string) (Method, error) {
	up := strings.ToUpper(s)
	for i, name := range methodNames {
		if up == name {
			return Method(i), nil
		}
	}
	return 0, errors.Errorf("unknown inversion method %q", s)
}

// Iterative reports whether the method's candidates index iterations (or
// basis truncations) rather than complete direct solves.
func (m Method) Iterative() bool {
	return m == CG || m == SVD || m == BICGSTAB
}

// AnswerFileName returns the answer file for the given candidate index.
// Iterative methods count 1-based; the least-squares family passes its
// 0-based position in the damping list.
func (m Method) AnswerFileName(index int) string {
	return strings.ToLower(m.String()) + strconv.Itoa(index) + ".lst"
}

// CovarianceFileName returns the covariance file for the given index.
func (m Method) CovarianceFileName(index int) string {
	return strings.ToLower(m.String()) + strconv.Itoa(index) + "_cov.lst"
}
