package kibrary

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/dataio"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/inversion"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/plotting"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/solver"
)

// DefaultLambdas is the damping sweep used when the least-squares family
// is requested without an explicit list.
var DefaultLambdas = []float64{0.01, 0.1, 1, 10, 100}

// SolveOptions configures the solver sweep shared by Solve and Sum.
type SolveOptions struct {
	Methods     []string  // method tags, case-insensitive
	Lambdas     []float64 // damping values for LS; empty means DefaultLambdas
	Alphas      []float64 // AIC redundancy factors; empty means solver.DefaultAlphas
	EvaluateNum int       // cap on written/evaluated candidates of iterative methods; 0 means all
	SigmaD      float64   // data noise level; > 0 writes model covariances
	Plot        bool      // render evaluation figures
}

// Solve loads an inversion folder and runs each requested method
// independently: one method failing is logged and the rest proceed.
type Solve struct {
	InputDir string
	OutDir   string
	Options  SolveOptions
	Log      *zap.SugaredLogger
}

// Run solves the system with every requested method.
func (op Solve) Run() error {
	log := ensureLogger(op.Log)
	eq, unknowns, err := dataio.ReadNormalEquations(op.InputDir)
	if err != nil {
		return err
	}
	log.Infow("loaded normal equations",
		"dir", op.InputDir, "unknowns", len(unknowns), "samples", eq.Info.NumSamples)
	return solveAll(log, op.OutDir, eq, unknowns, op.Options)
}

func solveAll(log *zap.SugaredLogger, outDir string, eq *inversion.NormalEquations, unknowns []seis.UnknownParameter, opts SolveOptions) error {
	if len(opts.Methods) == 0 {
		return errors.New("no inversion methods requested")
	}
	methods := make([]solver.Method, len(opts.Methods))
	for i, name := range opts.Methods {
		m, err := solver.ParseMethod(name)
		if err != nil {
			return err
		}
		methods[i] = m
	}
	alphas := opts.Alphas
	if len(alphas) == 0 {
		alphas = solver.DefaultAlphas
	}
	ev, err := solver.NewEvaluation(eq.ATA, eq.ATD, eq.Info)
	if err != nil {
		return err
	}
	var failed int
	for _, m := range methods {
		start := time.Now()
		dir := filepath.Join(outDir, m.String())
		var err error
		if m == solver.LS {
			err = solveLeastSquares(log, dir, eq, unknowns, ev, alphas, opts)
		} else {
			err = solveDirect(log, dir, m, eq, unknowns, ev, alphas, opts)
		}
		if err != nil {
			failed++
			log.Errorw("method failed", "method", m.String(), "error", err)
			continue
		}
		log.Infow("method done", "method", m.String(), "elapsed", time.Since(start))
	}
	if failed == len(methods) {
		return errors.New("every requested method failed")
	}
	return nil
}

func newProblem(m solver.Method, eq *inversion.NormalEquations) (solver.InverseProblem, error) {
	switch m {
	case solver.CG:
		p, err := solver.NewConjugateGradient(eq.ATA, eq.ATD, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	case solver.SVD:
		p, err := solver.NewSVD(eq.ATA, eq.ATD)
		if err != nil {
			return nil, err
		}
		return p, nil
	case solver.NNLS:
		p, err := solver.NewNNLS(eq.ATA, eq.ATD)
		if err != nil {
			return nil, err
		}
		return p, nil
	case solver.BICGSTAB:
		p, err := solver.NewBiCGStab(eq.ATA, eq.ATD)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, errors.Errorf("method %s has no single-problem construction", m)
}

func solveDirect(log *zap.SugaredLogger, dir string, m solver.Method, eq *inversion.NormalEquations, unknowns []seis.UnknownParameter, ev *solver.Evaluation, alphas []float64, opts SolveOptions) error {
	prob, err := newProblem(m, eq)
	if err != nil {
		return err
	}
	if err := prob.Compute(); err != nil {
		return err
	}
	limit := 0
	if m.Iterative() {
		limit = opts.EvaluateNum
	}
	if err := dataio.WriteAnswers(dir, prob, unknowns, limit); err != nil {
		return err
	}
	n := prob.NumAnswers()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([]dataio.EvaluationRow, 0, n)
	variances := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		model, err := prob.Answer(i)
		if err != nil {
			return err
		}
		v, err := ev.Variance(model)
		if err != nil {
			return err
		}
		k := len(unknowns)
		if m.Iterative() {
			k = i
		}
		aics := make([]float64, len(alphas))
		for j, a := range alphas {
			aics[j] = ev.AIC(v, a, k)
		}
		label := strings.TrimSuffix(m.AnswerFileName(i), ".lst")
		rows = append(rows, dataio.EvaluationRow{Label: label, Variance: v, AICs: aics})
		variances = append(variances, v)
	}
	if err := dataio.WriteEvaluation(filepath.Join(dir, dataio.EvaluationFile), alphas, rows); err != nil {
		return err
	}
	if opts.SigmaD > 0 {
		for i := 1; i <= n; i++ {
			cov, err := prob.Covariance(opts.SigmaD, i)
			if err != nil {
				log.Warnw("covariance unavailable", "method", m.String(), "error", err)
				break
			}
			if err := dataio.WriteCovariance(filepath.Join(dir, m.CovarianceFileName(i)), cov); err != nil {
				return err
			}
		}
	}
	if opts.Plot {
		if err := plotting.VarianceCurve(filepath.Join(dir, plotting.VarianceFile), m.String(), variances); err != nil {
			return err
		}
	}
	return nil
}

func solveLeastSquares(log *zap.SugaredLogger, dir string, eq *inversion.NormalEquations, unknowns []seis.UnknownParameter, ev *solver.Evaluation, alphas []float64, opts SolveOptions) error {
	lambdas := opts.Lambdas
	if len(lambdas) == 0 {
		lambdas = DefaultLambdas
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "answer folder")
	}
	rows := make([]dataio.EvaluationRow, 0, len(lambdas))
	variances := make([]float64, 0, len(lambdas))
	residuals := make([]float64, 0, len(lambdas))
	seminorms := make([]float64, 0, len(lambdas))
	for j, lambda := range lambdas {
		prob, err := solver.NewLeastSquares(eq.ATA, eq.ATD, lambda, nil, nil)
		if err != nil {
			return err
		}
		if err := prob.Compute(); err != nil {
			return err
		}
		model, err := prob.Answer(1)
		if err != nil {
			return err
		}
		if err := dataio.WriteAnswer(filepath.Join(dir, solver.LS.AnswerFileName(j)), unknowns, model); err != nil {
			return err
		}
		v, err := ev.Variance(model)
		if err != nil {
			return err
		}
		aics := make([]float64, len(alphas))
		for i, a := range alphas {
			aics[i] = ev.AIC(v, a, len(unknowns))
		}
		label := strings.TrimSuffix(solver.LS.AnswerFileName(j), ".lst")
		rows = append(rows, dataio.EvaluationRow{Label: label, Variance: v, AICs: aics})
		variances = append(variances, v)
		residuals = append(residuals, math.Sqrt(v)*eq.Info.ObsNorm)
		seminorms = append(seminorms, mat.Norm(model, 2))
		if opts.SigmaD > 0 {
			cov, err := prob.Covariance(opts.SigmaD, 1)
			if err != nil {
				return err
			}
			if err := dataio.WriteCovariance(filepath.Join(dir, solver.LS.CovarianceFileName(j)), cov); err != nil {
				return err
			}
		}
	}
	if err := dataio.WriteLambdas(filepath.Join(dir, dataio.LambdaFile), lambdas); err != nil {
		return err
	}
	if err := dataio.WriteEvaluation(filepath.Join(dir, dataio.EvaluationFile), alphas, rows); err != nil {
		return err
	}
	if opts.Plot {
		if err := plotting.VarianceCurve(filepath.Join(dir, plotting.VarianceFile), solver.LS.String(), variances); err != nil {
			return err
		}
		if err := plotting.LCurve(filepath.Join(dir, plotting.LCurveFile), lambdas, residuals, seminorms); err != nil {
			return err
		}
	}
	log.Debugw("damping sweep done", "lambdas", len(lambdas))
	return nil
}
