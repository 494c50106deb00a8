// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/ms_err"
	"github.com/wwantools/modemstress/pkg/telemetry"
)

// Options controls a single command execution.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	Capture bool
	Logger  *zap.Logger
}

// Result carries the outcome of an execution, including the raw exit code so
// callers can interpret tools (systemctl, mmcli) whose nonzero exits are
// answers rather than failures.
type Result struct {
	Output   string
	ExitCode int
}

// Run executes a command with structured logging and bounded duration. Shell
// interpretation is never used; arguments are passed verbatim.
func Run(ctx context.Context, opts Options) (Result, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	log.Debug("Starting execution", zap.String("command", cmdStr))

	var res Result
	var err error

	for i := 1; i <= max(1, opts.Retries); i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}

		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf

		err = cmd.Run()
		res.Output = buf.String()
		if cmd.ProcessState != nil {
			res.ExitCode = cmd.ProcessState.ExitCode()
		} else {
			// Command never started (not found, permission denied).
			res.ExitCode = -1
		}

		if err == nil {
			log.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		// Context death is never retryable.
		if runCtx.Err() != nil {
			err = cerr.Wrap(runCtx.Err(), "command deadline exceeded")
			break
		}

		span.RecordError(err)
		log.Debug("Execution failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.Int("exit_code", res.ExitCode),
			zap.String("summary", ms_err.ExtractSummary(res.Output, 2)),
			zap.Error(err),
		)

		if i < opts.Retries {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return res, cerr.Wrapf(err, "command %q failed", opts.Command)
	}

	if !opts.Capture {
		res.Output = ""
	}
	return res, nil
}

// RunSimple executes a command, discarding output.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{
		Command: cmd,
		Args:    args,
	})
	return err
}

// Capture executes a command and returns its combined output.
func Capture(ctx context.Context, cmd string, args ...string) (string, error) {
	res, err := Run(ctx, Options{
		Command: cmd,
		Args:    args,
		Capture: true,
	})
	return res.Output, err
}
