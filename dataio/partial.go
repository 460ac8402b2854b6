package dataio

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// partialFixedFields is the field count of a sensitivity record line
// before the unknown-parameter tuple.
const partialFixedFields = 13

// ReadPartial reads sensitivity records, one per line:
// station network stla stlo eventID evla evlo evdp component phases
// startTime samplingHz npts <unknown tuple> v1 … v_npts.
func ReadPartial(r io.Reader) ([]seis.PartialID, error) {
	var ids []seis.PartialID
	err := forEachLine(r, func(fields []string) error {
		id, err := parsePartialLine(fields)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// ReadPartialFile reads a sensitivity record file.
func ReadPartialFile(path string) ([]seis.PartialID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "partial file")
	}
	defer f.Close()
	ids, err := ReadPartial(f)
	return ids, errors.Wrapf(err, "partial file %s", path)
}

// ReadPartialFiles reads several sensitivity files in parallel. Each file
// is independent; the first failure cancels the rest. Record order follows
// the path order regardless of completion order.
func ReadPartialFiles(ctx context.Context, paths []string) ([]seis.PartialID, error) {
	g, ctx := errgroup.WithContext(ctx)
	perFile := make([][]seis.PartialID, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := ReadPartialFile(path)
			if err != nil {
				return err
			}
			perFile[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []seis.PartialID
	for _, ids := range perFile {
		all = append(all, ids...)
	}
	return all, nil
}

func parsePartialLine(fields []string) (seis.PartialID, error) {
	var id seis.PartialID
	if len(fields) < partialFixedFields+1 {
		return id, errors.Errorf("partial record needs at least %d fields, got %d", partialFixedFields+1, len(fields))
	}
	head, err := parseRecordHead(fields)
	if err != nil {
		return id, err
	}
	id.Observer = head.observer
	id.Event = head.event
	id.Component = head.component
	id.Phases = head.phases
	if id.StartTime, err = parseFloatField("start time", fields[10]); err != nil {
		return id, err
	}
	if id.SamplingHz, err = parseFloatField("sampling rate", fields[11]); err != nil {
		return id, err
	}
	if id.Npts, err = parseIntField("sample count", fields[12]); err != nil {
		return id, err
	}
	param, consumed, err := seis.ParseUnknown(fields[partialFixedFields:])
	if err != nil {
		return id, err
	}
	id.Param = param
	if id.Data, err = parseSamples(fields[partialFixedFields+consumed:], id.Npts); err != nil {
		return id, err
	}
	return id, nil
}

// WritePartial writes sensitivity records in the line schema ReadPartial
// reads.
func WritePartial(w io.Writer, ids []seis.PartialID) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if !id.HasData() {
			return errors.Errorf("record %s carries no waveform data", id)
		}
		writeRecordHead(bw, id.Observer, id.Event, id.Component, id.Phases)
		bw.WriteString(" " + maths.Ftoa(id.StartTime))
		bw.WriteString(" " + maths.Ftoa(id.SamplingHz))
		bw.WriteString(" " + strconv.Itoa(id.Npts))
		bw.WriteString(" " + seis.FormatUnknown(id.Param))
		for _, v := range id.Data {
			bw.WriteString(" " + maths.Ftoa(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WritePartialFile writes a sensitivity record file.
func WritePartialFile(path string, ids []seis.PartialID) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "partial file")
	}
	if err := WritePartial(f, ids); err != nil {
		f.Close()
		return errors.Wrapf(err, "partial file %s", path)
	}
	return errors.Wrapf(f.Close(), "partial file %s", path)
}
