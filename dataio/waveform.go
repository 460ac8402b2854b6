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

// basicFixedFields is the field count of a waveform record line before the
// samples start.
const basicFixedFields = 14

// ReadBasic reads identified waveform records, one per line:
// station network stla stlo eventID evla evlo evdp component phases kind
// startTime samplingHz npts v1 … v_npts.
func ReadBasic(r io.Reader) ([]seis.BasicID, error) {
	var ids []seis.BasicID
	err := forEachLine(r, func(fields []string) error {
		id, err := parseBasicLine(fields)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// ReadBasicFile reads a waveform record file.
func ReadBasicFile(path string) ([]seis.BasicID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "waveform file")
	}
	defer f.Close()
	ids, err := ReadBasic(f)
	return ids, errors.Wrapf(err, "waveform file %s", path)
}

func parseBasicLine(fields []string) (seis.BasicID, error) {
	var id seis.BasicID
	if len(fields) < basicFixedFields {
		return id, errors.Errorf("waveform record needs %d fields before the samples, got %d", basicFixedFields, len(fields))
	}
	head, err := parseRecordHead(fields)
	if err != nil {
		return id, err
	}
	id.Observer = head.observer
	id.Event = head.event
	id.Component = head.component
	id.Phases = head.phases
	id.Kind, err = seis.ParseWaveformKind(fields[10])
	if err != nil {
		return id, err
	}
	if id.StartTime, err = parseFloatField("start time", fields[11]); err != nil {
		return id, err
	}
	if id.SamplingHz, err = parseFloatField("sampling rate", fields[12]); err != nil {
		return id, err
	}
	if id.Npts, err = parseIntField("sample count", fields[13]); err != nil {
		return id, err
	}
	if id.Data, err = parseSamples(fields[basicFixedFields:], id.Npts); err != nil {
		return id, err
	}
	return id, nil
}

// WriteBasic writes waveform records in the line schema ReadBasic reads.
func WriteBasic(w io.Writer, ids []seis.BasicID) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if !id.HasData() {
			return errors.Errorf("record %s carries no waveform data", id)
		}
		writeRecordHead(bw, id.Observer, id.Event, id.Component, id.Phases)
		bw.WriteString(" " + id.Kind.String())
		writeRecordTail(bw, id.StartTime, id.SamplingHz, id.Data)
	}
	return bw.Flush()
}

// WriteBasicFile writes a waveform record file.
func WriteBasicFile(path string, ids []seis.BasicID) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "waveform file")
	}
	if err := WriteBasic(f, ids); err != nil {
		f.Close()
		return errors.Wrapf(err, "waveform file %s", path)
	}
	return errors.Wrapf(f.Close(), "waveform file %s", path)
}

// recordHead is the identity prefix shared by waveform and partial lines.
type recordHead struct {
	observer  seis.Observer
	event     seis.Event
	component seis.Component
	phases    seis.Phases
}

func parseRecordHead(fields []string) (recordHead, error) {
	var h recordHead
	h.observer.Station = fields[0]
	h.observer.Network = fields[1]
	var err error
	if h.observer.Position.Lat, err = parseFloatField("station latitude", fields[2]); err != nil {
		return h, err
	}
	if h.observer.Position.Lon, err = parseFloatField("station longitude", fields[3]); err != nil {
		return h, err
	}
	h.event.ID = fields[4]
	if h.event.Position.Lat, err = parseFloatField("event latitude", fields[5]); err != nil {
		return h, err
	}
	if h.event.Position.Lon, err = parseFloatField("event longitude", fields[6]); err != nil {
		return h, err
	}
	if h.event.Depth, err = parseFloatField("event depth", fields[7]); err != nil {
		return h, err
	}
	if h.component, err = seis.ParseComponent(fields[8]); err != nil {
		return h, err
	}
	h.phases = seis.ParsePhases(fields[9])
	return h, nil
}

func writeRecordHead(bw *bufio.Writer, o seis.Observer, e seis.Event, c seis.Component, p seis.Phases) {
	bw.WriteString(o.Station)
	bw.WriteString(" " + o.Network)
	bw.WriteString(" " + maths.Ftoa(o.Position.Lat))
	bw.WriteString(" " + maths.Ftoa(o.Position.Lon))
	bw.WriteString(" " + e.ID)
	bw.WriteString(" " + maths.Ftoa(e.Position.Lat))
	bw.WriteString(" " + maths.Ftoa(e.Position.Lon))
	bw.WriteString(" " + maths.Ftoa(e.Depth))
	bw.WriteString(" " + c.String())
	bw.WriteString(" " + p.String())
}

func writeRecordTail(bw *bufio.Writer, start, samplingHz float64, data []float64) {
	bw.WriteString(" " + maths.Ftoa(start))
	bw.WriteString(" " + maths.Ftoa(samplingHz))
	bw.WriteString(" " + strconv.Itoa(len(data)))
	for _, v := range data {
		bw.WriteString(" " + maths.Ftoa(v))
	}
	bw.WriteByte('\n')
}

func parseSamples(fields []string, npts int) ([]float64, error) {
	if npts <= 0 {
		return nil, errors.Errorf("record declares %d samples", npts)
	}
	if len(fields) != npts {
		return nil, errors.Errorf("record declares %d samples but carries %d", npts, len(fields))
	}
	data := make([]float64, npts)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i+1)
		}
		data[i] = v
	}
	return data, nil
}

func parseFloatField(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	return v, errors.Wrap(err, name)
}

func parseIntField(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	return v, errors.Wrap(err, name)
}
