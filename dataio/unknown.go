package dataio

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// ReadUnknowns reads an unknown-parameter list, one tuple per line.
func ReadUnknowns(r io.Reader) ([]seis.UnknownParameter, error) {
	var params []seis.UnknownParameter
	err := forEachLine(r, func(fields []string) error {
		p, consumed, err := seis.ParseUnknown(fields)
		if err != nil {
			return err
		}
		if consumed != len(fields) {
			return errors.Errorf("%d trailing fields after parameter %s", len(fields)-consumed, p.Identity())
		}
		params = append(params, p)
		return nil
	})
	if err == nil && len(params) == 0 {
		err = errors.New("no unknown parameters")
	}
	return params, err
}

// ReadUnknownsFile reads an unknown-parameter file.
func ReadUnknownsFile(path string) ([]seis.UnknownParameter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unknowns file")
	}
	defer f.Close()
	params, err := ReadUnknowns(f)
	return params, errors.Wrapf(err, "unknowns file %s", path)
}

// WriteUnknowns writes an unknown-parameter list, one tuple per line.
func WriteUnknowns(w io.Writer, params []seis.UnknownParameter) error {
	bw := bufio.NewWriter(w)
	for _, p := range params {
		bw.WriteString(seis.FormatUnknown(p))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteUnknownsFile writes an unknown-parameter file.
func WriteUnknownsFile(path string, params []seis.UnknownParameter) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unknowns file")
	}
	if err := WriteUnknowns(f, params); err != nil {
		f.Close()
		return errors.Wrapf(err, "unknowns file %s", path)
	}
	return errors.Wrapf(f.Close(), "unknowns file %s", path)
}

// ReadKnowns reads a solved-parameter list: each line an unknown tuple
// followed by its value.
func ReadKnowns(r io.Reader) ([]seis.KnownParameter, error) {
	var knowns []seis.KnownParameter
	err := forEachLine(r, func(fields []string) error {
		p, consumed, err := seis.ParseUnknown(fields)
		if err != nil {
			return err
		}
		if consumed != len(fields)-1 {
			return errors.Errorf("parameter %s needs exactly one value", p.Identity())
		}
		v, err := strconv.ParseFloat(fields[consumed], 64)
		if err != nil {
			return errors.Wrapf(err, "value of %s", p.Identity())
		}
		knowns = append(knowns, seis.KnownParameter{Param: p, Value: v})
		return nil
	})
	return knowns, err
}

// ReadKnownsFile reads a solved-parameter file.
func ReadKnownsFile(path string) ([]seis.KnownParameter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "knowns file")
	}
	defer f.Close()
	knowns, err := ReadKnowns(f)
	return knowns, errors.Wrapf(err, "knowns file %s", path)
}

// WriteKnowns writes a solved-parameter list.
func WriteKnowns(w io.Writer, knowns []seis.KnownParameter) error {
	bw := bufio.NewWriter(w)
	for _, k := range knowns {
		bw.WriteString(seis.FormatUnknown(k.Param))
		bw.WriteString(" " + maths.Ftoa(k.Value))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteKnownsFile writes a solved-parameter file.
func WriteKnownsFile(path string, knowns []seis.KnownParameter) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "knowns file")
	}
	if err := WriteKnowns(f, knowns); err != nil {
		f.Close()
		return errors.Wrapf(err, "knowns file %s", path)
	}
	return errors.Wrapf(f.Close(), "knowns file %s", path)
}
