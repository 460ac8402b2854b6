package maths

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// maxLineBytes bounds one line of matrix text. A row of a hundred thousand
// entries still fits.
const maxLineBytes = 1 << 26

// newLineScanner wraps r with a scanner whose buffer can hold one full
// matrix row.
func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}

// readRows parses whitespace-separated float rows, skipping blank lines and
// lines starting with '#'.
func readRows(r io.Reader) ([][]float64, error) {
	var rows [][]float64
	sc := newLineScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d on line %d", i+1, line)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan rows")
	}
	return rows, nil
}

// ReadSquare reads a row-major square matrix, one row per line. A matrix
// that is not square is an error.
func ReadSquare(r io.Reader) (*mat.Dense, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	n := len(rows)
	if n == 0 {
		return nil, errors.New("empty matrix")
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Errorf("matrix is not square: %d rows but row %d has %d entries", n, i+1, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

// ReadVector reads a vector, one or more whitespace-separated entries per
// line.
func ReadVector(r io.Reader) (*mat.VecDense, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	var data []float64
	for _, row := range rows {
		data = append(data, row...)
	}
	if len(data) == 0 {
		return nil, errors.New("empty vector")
	}
	return mat.NewVecDense(len(data), data), nil
}

// WriteMatrix writes a row-major, one row per line, space-separated.
func WriteMatrix(w io.Writer, a mat.Matrix) error {
	bw := bufio.NewWriter(w)
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(Ftoa(a.At(i, j))); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteVector writes v one entry per line.
func WriteVector(w io.Writer, v mat.Vector) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < v.Len(); i++ {
		if _, err := bw.WriteString(Ftoa(v.AtVec(i))); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
