// Command kibrary is the CLI of the waveform inversion toolkit.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	kibrary "github.com/UT-GlobalSeismology/Kibrary-sub014"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kibrary",
		Short:        "Waveform-based linear inversion toolkit",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(newArrangeCmd(), newSolveCmd(), newSumCmd(), newCheckerboardCmd())
	return root
}

func newLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

func newArrangeCmd() *cobra.Command {
	var op kibrary.Arrange
	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Assemble the normal equations from waveform records",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			op.Log = log
			return op.Run(cmd.Context())
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&op.BasicPath, "basic", "", "observed and synthetic waveform file")
	fs.StringSliceVar(&op.PartialPaths, "partial", nil, "partial waveform files, read in parallel")
	fs.StringVar(&op.UnknownsPath, "unknowns", "", "unknown parameter file")
	fs.StringVar(&op.Scheme, "weighting", "identity", "weighting scheme: identity, reciprocal, norm, ratio, distance")
	fs.StringVar(&op.OutDir, "out", "inversion", "output folder")
	cmd.MarkFlagRequired("basic")
	cmd.MarkFlagRequired("partial")
	cmd.MarkFlagRequired("unknowns")
	return cmd
}

func newSolveCmd() *cobra.Command {
	var op kibrary.Solve
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve an assembled inversion folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			op.Log = log
			return op.Run()
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&op.InputDir, "input", "", "inversion folder with ata.lst, atd.lst, dInfo.lst, unknowns.lst")
	fs.StringVar(&op.OutDir, "out", "results", "output folder")
	addSolveFlags(fs, &op.Options)
	cmd.MarkFlagRequired("input")
	return cmd
}

func newSumCmd() *cobra.Command {
	var op kibrary.Sum
	cmd := &cobra.Command{
		Use:   "sum",
		Short: "Sum assembled inversion folders and solve the combined system",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			op.Log = log
			return op.Run()
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&op.InputDirs, "inputs", nil, "inversion folders to sum")
	fs.StringVar(&op.OutDir, "out", "sum", "output folder")
	addSolveFlags(fs, &op.Options)
	cmd.MarkFlagRequired("inputs")
	return cmd
}

func newCheckerboardCmd() *cobra.Command {
	var op kibrary.Checkerboard
	cmd := &cobra.Command{
		Use:   "checkerboard",
		Short: "Build an alternating-sign resolution-test input",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			op.Log = log
			return op.Run()
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&op.InputDir, "input", "", "assembled inversion folder")
	fs.Float64Var(&op.Amplitude, "amplitude", 0, "absolute value of the test perturbation")
	fs.StringVar(&op.OutDir, "out", "checkerboard", "output folder")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("amplitude")
	return cmd
}

func addSolveFlags(fs *pflag.FlagSet, opts *kibrary.SolveOptions) {
	fs.StringSliceVar(&opts.Methods, "methods", []string{"cg"}, "inversion methods: cg, ls, svd, nnls, bicgstab")
	fs.Float64SliceVar(&opts.Lambdas, "lambda", nil, "damping values for ls (default 0.01,0.1,1,10,100)")
	fs.Float64SliceVar(&opts.Alphas, "alpha", nil, "AIC redundancy factors (default 1,12.5,25)")
	fs.IntVar(&opts.EvaluateNum, "evaluate", 0, "cap on written candidates of iterative methods, 0 for all")
	fs.Float64Var(&opts.SigmaD, "sigma-d", 0, "data noise level; writes model covariances when positive")
	fs.BoolVar(&opts.Plot, "plot", false, "render evaluation figures")
}
