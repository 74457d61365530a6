// Package executor runs the rclone binary as a bounded subprocess.
//
// Each stream is captured byte for byte into its own buffer. A hard deadline
// stops the whole process group: SIGTERM first, SIGKILL once the grace period
// expires. No partial output is returned for a process that did not finish.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-cmd/cmd"

	"github.com/sagarc03/rcindex"
)

const (
	// DefaultTimeout is the wall-clock limit measured from spawn.
	DefaultTimeout = 25 * time.Second

	// DefaultKillGrace is how long a stopped process may take to exit
	// before it is killed.
	DefaultKillGrace = 2 * time.Second
)

type Config struct {
	Timeout   time.Duration
	KillGrace time.Duration
}

// Runner implements rcindex.CommandRunner.
type Runner struct {
	timeout   time.Duration
	killGrace time.Duration
}

func New(cfg Config) *Runner {
	r := &Runner{
		timeout:   cfg.Timeout,
		killGrace: cfg.KillGrace,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.killGrace <= 0 {
		r.killGrace = DefaultKillGrace
	}
	return r
}

// Timeout returns the configured deadline.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes executable with args and waits for it to finish.
//
// Returns:
//   - ProcessResult with Reason exited for a zero exit code
//   - ErrSpawn if the process could not be started
//   - ErrTimeout if the deadline expired, after the process is gone
//   - *rcindex.ExecutionError for a non-zero exit or a foreign signal
//
// ctx acts as the cancellation token; the deadline is the earlier of ctx's
// and the runner timeout.
func (r *Runner) Run(ctx context.Context, executable string, args []string) (rcindex.ProcessResult, error) {
	name := filepath.Base(executable)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// go-cmd's own buffers split output into lines, so the exec.Cmd writes
	// into buffers owned here instead. They are read only after the final
	// status, when exec has finished copying.
	var stdout, stderr bytes.Buffer
	c := cmd.NewCmdOptions(cmd.Options{
		BeforeExec: []func(*exec.Cmd){
			func(ec *exec.Cmd) {
				ec.Stdout = &stdout
				ec.Stderr = &stderr
			},
		},
	}, executable, args...)
	statusCh := c.Start()

	var status cmd.Status
	select {
	case status = <-statusCh:
	case <-ctx.Done():
		r.terminate(c, statusCh)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Warn("subprocess timed out", "cmd", name, "timeout", r.timeout)
			return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w", name, rcindex.ErrTimeout)
		}
		return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w", name, ctx.Err())
	}

	slog.Debug("subprocess finished", "cmd", name, "exit", status.Exit, "runtime", status.Runtime,
		"stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())

	switch {
	case status.Error != nil && status.PID == 0:
		return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w: %w", name, rcindex.ErrSpawn, status.Error)
	case !status.Complete:
		return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w", name, &rcindex.ExecutionError{
			ExitCode: -1,
			Stderr:   stderr.String(),
			Reason:   rcindex.ReasonKilled,
		})
	case status.Error != nil:
		return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w: %w", name, rcindex.ErrExecution, status.Error)
	case status.Exit != 0:
		return rcindex.ProcessResult{}, fmt.Errorf("run %s: %w", name, &rcindex.ExecutionError{
			ExitCode: status.Exit,
			Stderr:   stderr.String(),
			Reason:   rcindex.ReasonExited,
		})
	}

	return rcindex.ProcessResult{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Reason:   rcindex.ReasonExited,
	}, nil
}

// terminate stops the process group and blocks until go-cmd reports the
// final status, so pipes and the process are released on return.
//
// Stop before the process exists makes go-cmd skip the start when it has not
// yet passed BeforeExec. A start already under way is killed once the grace
// period expires.
func (r *Runner) terminate(c *cmd.Cmd, statusCh <-chan cmd.Status) {
	if err := c.Stop(); err != nil && !errors.Is(err, cmd.ErrNotStarted) {
		slog.Warn("failed to stop subprocess", "err", err)
	}

	select {
	case <-statusCh:
		return
	case <-time.After(r.killGrace):
	}

	if pid := c.Status().PID; pid != 0 {
		if err := killGroup(pid); err != nil {
			slog.Warn("failed to kill subprocess", "pid", pid, "err", err)
		}
	}
	<-statusCh
}
