package dataio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UT-GlobalSeismology/Kibrary-sub014/maths"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/seis"
	"github.com/UT-GlobalSeismology/Kibrary-sub014/solver"
)

// WriteAnswer writes one candidate model as a solved-parameter file, lines
// ordered like the unknowns list.
func WriteAnswer(path string, unknowns []seis.UnknownParameter, m *mat.VecDense) error {
	if m.Len() != len(unknowns) {
		return errors.Errorf("candidate has %d entries but the inversion names %d unknowns", m.Len(), len(unknowns))
	}
	knowns := make([]seis.KnownParameter, len(unknowns))
	for i, u := range unknowns {
		knowns[i] = seis.KnownParameter{Param: u, Value: m.AtVec(i)}
	}
	return WriteKnownsFile(path, knowns)
}

// WriteAnswers writes the candidates of a solved problem under dir with the
// method's 1-based file naming, at most limit of them (no cap when
// limit <= 0). The least-squares family names files by damping index and
// goes through WriteAnswer instead.
func WriteAnswers(dir string, prob solver.InverseProblem, unknowns []seis.UnknownParameter, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "answer folder")
	}
	n := prob.NumAnswers()
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 1; i <= n; i++ {
		m, err := prob.Answer(i)
		if err != nil {
			return err
		}
		if err := WriteAnswer(filepath.Join(dir, prob.Method().AnswerFileName(i)), unknowns, m); err != nil {
			return err
		}
	}
	return nil
}

// EvaluationRow is one candidate's scores in an evaluation report.
type EvaluationRow struct {
	Label    string
	Variance float64
	AICs     []float64
}

// WriteEvaluation writes the per-candidate variance and AIC table.
func WriteEvaluation(path string, alphas []float64, rows []EvaluationRow) error {
	return writeTo(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		bw.WriteString("# candidate variance")
		for _, a := range alphas {
			bw.WriteString(" aic(alpha=" + maths.Ftoa(a) + ")")
		}
		bw.WriteByte('\n')
		for _, row := range rows {
			if len(row.AICs) != len(alphas) {
				return errors.Errorf("candidate %s has %d scores for %d alphas", row.Label, len(row.AICs), len(alphas))
			}
			bw.WriteString(row.Label)
			bw.WriteString(" " + maths.Ftoa(row.Variance))
			for _, aic := range row.AICs {
				bw.WriteString(" " + maths.Ftoa(aic))
			}
			bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}

// WriteLambdas writes the damping value per least-squares answer index,
// one per line in index order.
func WriteLambdas(path string, lambdas []float64) error {
	return writeTo(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, l := range lambdas {
			bw.WriteString(maths.Ftoa(l))
			bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}

// WriteCovariance writes a posterior model covariance in the square-matrix
// schema.
func WriteCovariance(path string, cov *mat.SymDense) error {
	return writeTo(path, func(w io.Writer) error {
		return maths.WriteMatrix(w, cov)
	})
}
