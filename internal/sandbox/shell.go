package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	exitCodeStartFailed = -1
	exitCodeTimedOut    = -2
)

// Result is the captured outcome of one command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Output interleaves stdout and stderr as a terminal would show them.
	Output    string
	Truncated bool
	TimedOut  bool
}

// Success reports a zero exit status.
func (r Result) Success() bool { return r.ExitCode == 0 && !r.TimedOut }

// RunCommand runs command through the configured shell inside the working
// copy and blocks until it exits. A non-zero exit status is reported in the
// Result, not as an error. The error is set when the program cannot be
// started or ctx is cancelled.
func (t *Tree) RunCommand(ctx context.Context, command string) (Result, error) {
	return runShell(ctx, t.opts.Shell, t.dir, command, t.log)
}

func runShell(ctx context.Context, opts ShellOptions, dir, command string, log *zap.Logger) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{ExitCode: exitCodeStartFailed}, errors.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: exitCodeStartFailed}, err
	}
	cmd := exec.Command(opts.Program, "-c", command)
	cmd.Dir = dir
	cmd.Env = applyEnvOverlay(os.Environ(), opts.Env)
	if opts.KillProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	combined := &limitedBuffer{max: opts.CaptureMaxBytes}
	shared := &lockedWriter{w: combined}
	outBuf := &limitedBuffer{max: opts.CaptureMaxBytes}
	errBuf := &limitedBuffer{max: opts.CaptureMaxBytes}
	cmd.Stdout = io.MultiWriter(outBuf, shared)
	cmd.Stderr = io.MultiWriter(errBuf, shared)

	log.Debug("running command", zap.String("command", command))
	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return Result{ExitCode: exitCodeStartFailed}, fmt.Errorf("program %s not found", opts.Program)
		}
		return Result{ExitCode: exitCodeStartFailed}, fmt.Errorf("program %s start failed", opts.Program)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timeout <-chan time.Time
	if opts.TimeoutMs > 0 {
		timer := time.NewTimer(time.Duration(opts.TimeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	timedOut := false
	cancelled := false
	select {
	case runErr = <-done:
	case <-timeout:
		timedOut = true
		runErr = terminate(cmd, opts, done)
	case <-ctx.Done():
		cancelled = true
		runErr = terminate(cmd, opts, done)
	}

	shared.mu.Lock()
	res := Result{
		Stdout:    outBuf.String(),
		Stderr:    errBuf.String(),
		Output:    combined.String(),
		Truncated: outBuf.truncated || errBuf.truncated || combined.truncated,
		TimedOut:  timedOut,
	}
	shared.mu.Unlock()

	switch {
	case cancelled:
		res.ExitCode = exitCodeTimedOut
		return res, ctx.Err()
	case timedOut:
		res.ExitCode = exitCodeTimedOut
		return res, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = exitCodeStartFailed
		return res, fmt.Errorf("program %s execution failed", opts.Program)
	}
	return res, nil
}

// terminate sends SIGTERM, waits the grace period, then SIGKILL.
func terminate(cmd *exec.Cmd, opts ShellOptions, done <-chan error) error {
	signalProcess(cmd, opts.KillProcessGroup, syscall.SIGTERM)
	grace := time.NewTimer(time.Duration(opts.TermGraceMs) * time.Millisecond)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
		signalProcess(cmd, opts.KillProcessGroup, syscall.SIGKILL)
		return <-done
	}
}
