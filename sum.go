package kibrary

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
)

// Sum element-wise adds previously assembled inversion folders, writes
// the combined system, and solves it when methods are requested. The
// folders must describe the same unknowns in the same order.
type Sum struct {
	InputDirs []string
	OutDir    string
	Options   SolveOptions
	Log       *zap.SugaredLogger
}

// Run combines the systems and optionally solves the result.
func (op Sum) Run() error {
	log := ensureLogger(op.Log)
	if len(op.InputDirs) < 2 {
		return errors.Errorf("summing needs at least two inversion folders, got %d", len(op.InputDirs))
	}
	total, unknowns, err := dataio.ReadNormalEquations(op.InputDirs[0])
	if err != nil {
		return err
	}
	for _, dir := range op.InputDirs[1:] {
		eq, params, err := dataio.ReadNormalEquations(dir)
		if err != nil {
			return err
		}
		if err := sameUnknowns(unknowns, params); err != nil {
			return errors.Wrapf(err, "folder %s", dir)
		}
		if err := total.Add(eq); err != nil {
			return errors.Wrapf(err, "folder %s", dir)
		}
	}
	log.Infow("summed systems",
		"folders", len(op.InputDirs), "unknowns", len(unknowns),
		"samples", total.Info.NumSamples, "residualNorm", total.Info.DNorm)
	if err := dataio.WriteNormalEquations(op.OutDir, total, unknowns); err != nil {
		return err
	}
	if len(op.Options.Methods) == 0 {
		return nil
	}
	return solveAll(log, op.OutDir, total, unknowns, op.Options)
}

func sameUnknowns(a, b []seis.UnknownParameter) error {
	if len(a) != len(b) {
		return errors.Errorf("unknown lists differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if seis.FormatUnknown(a[i]) != seis.FormatUnknown(b[i]) {
			return errors.Errorf("unknown %d differs: %q vs %q",
				i+1, seis.FormatUnknown(a[i]), seis.FormatUnknown(b[i]))
		}
	}
	return nil
}
