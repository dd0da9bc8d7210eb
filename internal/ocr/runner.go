package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner abstracts the external tool invocations so tests can script
// pdftotext, pdftoppm and tesseract without the binaries installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// maxStderrLog caps how much tool stderr ends up in a log record.
const maxStderrLog = 8 << 10

// execRunner shells out to the named binary, capturing both streams.
type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) execRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error("extraction tool failed",
			"tool", name,
			"args", args,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), maxStderrLog),
		)
		return out.Bytes(), errb.Bytes(), err
	}

	r.logger.Debug("extraction tool ok",
		"tool", name,
		"elapsed_ms", elapsed.Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
