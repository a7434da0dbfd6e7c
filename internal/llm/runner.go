package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Result captures the full outcome of one external reasoning call.
type Result struct {
	Output   string
	Stderr   string
	ExitCode int
}

// Runner abstracts the external reasoning tool: text prompt in, text
// out, non-zero exit means failure.
type Runner interface {
	Run(ctx context.Context, prompt string) (Result, error)
}

// CommandRunner invokes a local command (e.g. an LLM CLI) with the
// prompt appended as the final argument. Every invocation carries an
// explicit timeout; a hung tool cannot stall the pipeline.
type CommandRunner struct {
	command string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandRunner builds a runner for the given command and base
// arguments.
func NewCommandRunner(command string, args []string, timeout time.Duration, logger *slog.Logger) *CommandRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandRunner{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the command and returns its captured output. The
// returned error is non-nil on a non-zero exit, a timeout, or a spawn
// failure; Result carries whatever output was produced either way.
func (r *CommandRunner) Run(ctx context.Context, prompt string) (Result, error) {
	if r.command == "" {
		return Result{}, errors.New("llm command not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string(nil), r.args...), prompt)
	cmd := exec.CommandContext(runCtx, r.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := Result{
		Output: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		if runCtx.Err() != nil {
			err = fmt.Errorf("llm command timed out after %s: %w", r.timeout, runCtx.Err())
		}
		r.logger.Error("llm command failed",
			slog.String("command", r.command),
			slog.Int("exit_code", result.ExitCode),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return result, err
	}

	r.logger.Debug("llm command completed",
		slog.String("command", r.command),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}
