// Package kibrary orchestrates waveform-based linear inversions: it
// arranges observed, synthetic and partial waveforms into normal
// equations, solves them with a family of methods, and writes the
// resulting models, scores and figures. The operations own all path
// handling; the numerical core below them never touches the filesystem.
package kibrary

import "go.uber.org/zap"

func ensureLogger(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
