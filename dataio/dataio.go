// Package dataio reads and writes the text files of the inversion
// pipeline: waveform and sensitivity record files, unknown-parameter
// lists, assembled normal-equation folders, and answer files. Parsing is
// kept here so the numeric packages never touch the filesystem.
package dataio

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxLineBytes bounds one record line; long windows carry every sample on
// a single line.
const maxLineBytes = 1 << 26

// forEachLine feeds non-blank, non-comment lines to fn as whitespace
// fields, annotating errors with the line number.
func forEachLine(r io.Reader, fn func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(strings.Fields(text)); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
	return sc.Err()
}
