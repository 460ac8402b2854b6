package dataio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// Canonical file names inside an inversion folder.
const (
	AtaFile          = "ata.lst"
	AtdFile          = "atd.lst"
	DInfoFile        = "dInfo.lst"
	UnknownsFile     = "unknowns.lst"
	CheckerboardFile = "checkerboard.lst"
	LambdaFile       = "lambda.lst"
	EvaluationFile   = "evaluation.lst"
)

// WriteNormalEquations writes the assembled system and its unknowns as an
// inversion folder: ata.lst, atd.lst, dInfo.lst, unknowns.lst under dir.
func WriteNormalEquations(dir string, eq *inversion.NormalEquations, unknowns []seis.UnknownParameter) error {
	if eq.Dim() != len(unknowns) {
		return errors.Errorf("system has %d unknowns but the list names %d", eq.Dim(), len(unknowns))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "inversion folder")
	}
	if err := writeTo(filepath.Join(dir, AtaFile), func(w io.Writer) error {
		return maths.WriteMatrix(w, eq.ATA)
	}); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, AtdFile), func(w io.Writer) error {
		return maths.WriteVector(w, eq.ATD)
	}); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, DInfoFile), func(w io.Writer) error {
		return writeDInfo(w, eq.Info)
	}); err != nil {
		return err
	}
	return WriteUnknownsFile(filepath.Join(dir, UnknownsFile), unknowns)
}

// ReadNormalEquations reads an inversion folder back, cross-checking the
// dimensions of its four files.
func ReadNormalEquations(dir string) (*inversion.NormalEquations, []seis.UnknownParameter, error) {
	ataDense, err := readMatrixFile(filepath.Join(dir, AtaFile))
	if err != nil {
		return nil, nil, err
	}
	atd, err := readVectorFile(filepath.Join(dir, AtdFile))
	if err != nil {
		return nil, nil, err
	}
	n, _ := ataDense.Dims()
	if atd.Len() != n {
		return nil, nil, errors.Errorf("%s is %d×%d but %s has %d entries", AtaFile, n, n, AtdFile, atd.Len())
	}
	info, err := readDInfoFile(filepath.Join(dir, DInfoFile))
	if err != nil {
		return nil, nil, err
	}
	unknowns, err := ReadUnknownsFile(filepath.Join(dir, UnknownsFile))
	if err != nil {
		return nil, nil, err
	}
	if len(unknowns) != n {
		return nil, nil, errors.Errorf("%s is %d×%d but %s names %d unknowns", AtaFile, n, n, UnknownsFile, len(unknowns))
	}
	return &inversion.NormalEquations{ATA: maths.Sym(ataDense), ATD: atd, Info: info}, unknowns, nil
}

func writeDInfo(w io.Writer, info inversion.DInfo) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(info.NumSamples))
	bw.WriteByte('\n')
	bw.WriteString(maths.Ftoa(info.DNorm))
	bw.WriteByte('\n')
	bw.WriteString(maths.Ftoa(info.ObsNorm))
	bw.WriteByte('\n')
	return bw.Flush()
}

func readDInfo(r io.Reader) (inversion.DInfo, error) {
	var info inversion.DInfo
	var entries []string
	err := forEachLine(r, func(fields []string) error {
		entries = append(entries, fields...)
		return nil
	})
	if err != nil {
		return info, err
	}
	if len(entries) != 3 {
		return info, errors.Errorf("dataset statistics need 3 entries, got %d", len(entries))
	}
	if info.NumSamples, err = parseIntField("sample count", entries[0]); err != nil {
		return info, err
	}
	if info.DNorm, err = parseFloatField("residual norm", entries[1]); err != nil {
		return info, err
	}
	if info.ObsNorm, err = parseFloatField("observed norm", entries[2]); err != nil {
		return info, err
	}
	return info, nil
}

func readDInfoFile(path string) (inversion.DInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return inversion.DInfo{}, errors.Wrap(err, "dInfo file")
	}
	defer f.Close()
	info, err := readDInfo(f)
	return info, errors.Wrapf(err, "dInfo file %s", path)
}

func readMatrixFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "matrix file")
	}
	defer f.Close()
	m, err := maths.ReadSquare(f)
	return m, errors.Wrapf(err, "matrix file %s", path)
}

func readVectorFile(path string) (*mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "vector file")
	}
	defer f.Close()
	v, err := maths.ReadVector(f)
	return v, errors.Wrapf(err, "vector file %s", path)
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write")
	}
	if err := fn(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "write %s", path)
}
