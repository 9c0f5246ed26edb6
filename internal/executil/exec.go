// Package executil wraps os/exec with context-aware timeouts, output
// capture, and a test injection point, following the teacher's
// exec.Command/Run pattern but threading context.Context through every
// call so Git subprocess work can be cancelled alongside the request or
// scheduler tick that started it.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// Command describes a subprocess invocation.
type Command struct {
	Name string
	Args []string

	// Env replaces the process environment if non-nil.
	Env []string
	// InheritEnv adds the current process's environment to Env,
	// excluding variables already set in Env.
	InheritEnv bool

	Dir string

	Stdin io.Reader

	LogStdout bool
	Stdout    io.Writer
	LogStderr bool
	Stderr    io.Writer

	// CombinedOutput receives both stdout and stderr, in addition to
	// Stdout/Stderr if also set.
	CombinedOutput io.Writer

	// Timeout bounds the whole invocation; zero means no limit beyond
	// the passed context's own deadline.
	Timeout time.Duration

	Verbose bool
}

// TimeoutErrorPrefix marks errors caused by Command.Timeout or context
// expiry, for IsTimeout to recognize.
const TimeoutErrorPrefix = "command killed since it exceeded its timeout"

var writeInfoLog = writeLog{logFunc: sklog.Infof}
var writeErrorLog = writeLog{logFunc: sklog.Errorf}

type writeLog struct {
	logFunc func(format string, args ...interface{})
}

func (w writeLog) Write(p []byte) (int, error) {
	w.logFunc("%s", string(p))
	return len(p), nil
}

func squashWriters(writers ...io.Writer) io.Writer {
	nonNil := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			nonNil = append(nonNil, w)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return io.MultiWriter(nonNil...)
	}
}

// DebugString renders command's env/name/args joined with spaces, for
// logging; it does not quote anything.
func DebugString(command *Command) string {
	var b strings.Builder
	if len(command.Env) != 0 {
		b.WriteString(strings.Join(command.Env, " "))
		b.WriteByte(' ')
	}
	b.WriteString(command.Name)
	if len(command.Args) != 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(command.Args, " "))
	}
	return b.String()
}

func createCmd(ctx context.Context, command *Command) *osexec.Cmd {
	cmd := osexec.CommandContext(ctx, command.Name, command.Args...)
	if len(command.Env) != 0 {
		cmd.Env = command.Env
		if command.InheritEnv {
			existing := make(map[string]bool, len(command.Env))
			for _, s := range command.Env {
				existing[strings.SplitN(s, "=", 2)[0]] = true
			}
			for _, s := range os.Environ() {
				if !existing[strings.SplitN(s, "=", 2)[0]] {
					cmd.Env = append(cmd.Env, s)
				}
			}
		}
	}
	cmd.Dir = command.Dir
	cmd.Stdin = command.Stdin

	var stdoutLog io.Writer
	if command.LogStdout {
		stdoutLog = writeInfoLog
	}
	cmd.Stdout = squashWriters(stdoutLog, command.Stdout, command.CombinedOutput)

	var stderrLog io.Writer
	if command.LogStderr {
		stderrLog = writeErrorLog
	}
	cmd.Stderr = squashWriters(stderrLog, command.Stderr, command.CombinedOutput)
	return cmd
}

// runFn is the injectable implementation used by Run, for tests.
var runFn = defaultRun

// SetRunForTesting overrides Run's implementation; pass DefaultRun to
// restore normal behavior.
func SetRunForTesting(fn func(ctx context.Context, command *Command) error) {
	runFn = fn
}

// DefaultRun is the production Run implementation.
func DefaultRun(ctx context.Context, command *Command) error {
	return defaultRun(ctx, command)
}

func defaultRun(ctx context.Context, command *Command) error {
	runCtx := ctx
	var cancel context.CancelFunc
	if command.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	cmd := createCmd(runCtx, command)
	if command.Verbose {
		dirMsg := ""
		if cmd.Dir != "" {
			dirMsg = " with CWD " + cmd.Dir
		}
		sklog.Debugf("executing %q%s", DebugString(command), dirMsg)
	}

	err := cmd.Run()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s (%s): %s", TimeoutErrorPrefix, command.Timeout, DebugString(command))
		}
		return fmt.Errorf("command exited with %w: %s", err, DebugString(command))
	}
	return nil
}

// Run executes command and waits for it to finish, respecting ctx's
// deadline in addition to command.Timeout if both are set.
func Run(ctx context.Context, command *Command) error {
	return runFn(ctx, command)
}

// RunCombinedOutput runs command and returns its combined stdout+stderr.
func RunCombinedOutput(ctx context.Context, command *Command) (string, error) {
	var buf bytes.Buffer
	command.CombinedOutput = &buf
	err := Run(ctx, command)
	out := buf.String()
	if err != nil {
		return out, fmt.Errorf("%w; output:\n%s", err, out)
	}
	return out, nil
}

// IsTimeout reports whether err was caused by a Command.Timeout or
// context deadline expiring mid-run.
func IsTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), TimeoutErrorPrefix)
}
