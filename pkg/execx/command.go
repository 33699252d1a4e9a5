// Package execx runs external programs with captured output, an optional
// timeout and a trimmed environment.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
)

// Command describes one external program invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin io.Reader
	// Timeout <= 0 means no deadline beyond the caller's context.
	Timeout time.Duration
	// Env is appended to the sanitized environment.
	Env []string
}

// Result captures command execution metadata and output.
type Result struct {
	Command    string   `json:"command"`
	Args       []string `json:"args,omitempty"`
	ExitCode   int      `json:"exit_code"`
	Stdout     []byte   `json:"-"`
	Stderr     string   `json:"stderr,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	TimedOut   bool     `json:"timed_out,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Failed reports whether the command did not exit cleanly.
func (r Result) Failed() bool {
	return r.ExitCode != 0 || r.Error != ""
}

// Err summarizes a failed result as an error, or returns nil.
func (r Result) Err() error {
	if !r.Failed() {
		return nil
	}
	msg := fmt.Sprintf("%s exited with code %d", r.Command, r.ExitCode)
	if r.TimedOut {
		msg = fmt.Sprintf("%s timed out after %dms", r.Command, r.DurationMs)
	} else if r.Error != "" && r.ExitCode < 0 {
		msg = fmt.Sprintf("%s: %s", r.Command, r.Error)
	}
	if tail := Tail(r.Stderr, 500); tail != "" {
		msg += ": " + tail
	}
	return errors.New(msg)
}

// Runner executes commands, logging through Logger when Verbose is set.
type Runner struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

func (r Runner) debugf(format string, args ...any) {
	loggerpkg.Debugf(r.Verbose, r.Logger, format, args...)
}

// Run executes cmd and waits for it to finish.
func (r Runner) Run(ctx context.Context, cmd Command) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	r.debugf("[verbose] runCommand: command=%s, args=%d, timeout=%v", cmd.Name, len(cmd.Args), cmd.Timeout)

	execCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(execCtx, cmd.Name, cmd.Args...)
	c.Env = append(SanitizedEnv(), cmd.Env...)
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	exitCode := 0
	errText := ""
	timedOut := false
	if err != nil {
		errText = err.Error()
		var exitErr *exec.ExitError
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) && cmd.Timeout > 0 {
			exitCode = -1
			timedOut = true
			r.debugf("[verbose] runCommand: timeout exceeded after %v", cmd.Timeout)
		} else if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
		r.debugf("[verbose] runCommand: error occurred: %v (exit_code=%d)", err, exitCode)
	}

	r.debugf("[verbose] runCommand: completed, exit_code=%d, duration=%dms, stdout=%d bytes, stderr=%d bytes", exitCode, duration, stdout.Len(), stderr.Len())
	if stderr.Len() > 0 {
		r.debugf("[verbose] runCommand: stderr: %s", Tail(stderr.String(), 500))
	}

	return Result{
		Command:    cmd.Name,
		Args:       cmd.Args,
		ExitCode:   exitCode,
		Stdout:     stdout.Bytes(),
		Stderr:     stderr.String(),
		DurationMs: duration,
		TimedOut:   timedOut,
		Error:      errText,
	}
}

// Tail returns at most the last n bytes of s, trimmed of surrounding space.
func Tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// SanitizedEnv keeps only the environment variables a model interpreter or
// an image viewer needs.
func SanitizedEnv() []string {
	allowedPrefixes := []string{
		"PATH=",
		"HOME=",
		"USER=",
		"LOGNAME=",
		"SHELL=",
		"TMPDIR=",
		"TMP=",
		"TEMP=",
		"LANG=",
		"LC_",
		"TERM=",
		"PWD=",
		"PYTHON",
		"VIRTUAL_ENV=",
		"CONDA_",
		"MSISE00_",
		"DISPLAY=",
		"WAYLAND_DISPLAY=",
		"XDG_",
		"DBUS_SESSION_BUS_ADDRESS=",
	}

	env := make([]string, 0, len(allowedPrefixes))
	for _, kv := range os.Environ() {
		for _, prefix := range allowedPrefixes {
			if strings.HasPrefix(kv, prefix) {
				env = append(env, kv)
				break
			}
		}
	}
	return env
}

// ResolvePython locates a python interpreter.
func ResolvePython() (string, error) {
	if path, err := exec.LookPath("python3"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("python"); err == nil {
		return path, nil
	}
	return "", errors.New("python executable not found")
}

// LookPath resolves name to an executable, accepting paths as-is when they exist.
func LookPath(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty command")
	}
	return exec.LookPath(name)
}
