package kibrary

import (
	"context"

	"go.uber.org/zap"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
)

// Arrange reads the waveform records and the unknown-parameter list,
// assembles the normal equations under the requested weighting, and
// writes the inversion folder.
type Arrange struct {
	BasicPath    string   // observed and synthetic records, one file
	PartialPaths []string // sensitivity records, read in parallel
	UnknownsPath string
	Scheme       string // weighting scheme name; empty means identity
	OutDir       string
	Log          *zap.SugaredLogger
}

// Run assembles and writes the system.
func (op Arrange) Run(ctx context.Context) error {
	log := ensureLogger(op.Log)
	scheme := inversion.SchemeIdentity
	if op.Scheme != "" {
		var err error
		if scheme, err = inversion.SchemeFromName(op.Scheme); err != nil {
			return err
		}
	}
	basics, err := dataio.ReadBasicFile(op.BasicPath)
	if err != nil {
		return err
	}
	log.Infow("read waveform records", "path", op.BasicPath, "records", len(basics))
	partials, err := dataio.ReadPartialFiles(ctx, op.PartialPaths)
	if err != nil {
		return err
	}
	log.Infow("read partial records", "files", len(op.PartialPaths), "records", len(partials))
	unknowns, err := dataio.ReadUnknownsFile(op.UnknownsPath)
	if err != nil {
		return err
	}
	d, err := inversion.NewDVectorBuilder(basics)
	if err != nil {
		return err
	}
	a, err := inversion.NewAMatrixBuilder(partials, unknowns, d)
	if err != nil {
		return err
	}
	eq, err := inversion.Assemble(a, scheme.Weigh(d))
	if err != nil {
		return err
	}
	log.Infow("assembled normal equations",
		"windows", d.NumWindows(), "samples", eq.Info.NumSamples,
		"unknowns", len(unknowns), "residualNorm", eq.Info.DNorm, "weighting", scheme.String())
	return dataio.WriteNormalEquations(op.OutDir, eq, unknowns)
}
