package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// LaunchInfo carries everything a delegate needs from the launcher.
type LaunchInfo struct {
	// BaseDir is the resolved base directory for bundled resources.
	// Child delegates also receive it as the FORGE_BUNDLE_DIR variable.
	BaseDir string

	// LaunchID uniquely identifies this launch.
	LaunchID string

	// Args is the original argv tail, passed through verbatim.
	Args []string
}

// EntryFunc is the in-process form of the application entry point. The
// returned value becomes the process exit code, uninterpreted.
type EntryFunc func(ctx context.Context, info LaunchInfo) int

// Delegate invokes the application's real entry point. Exactly one of
// Entry or BinaryPath must be set; Entry wins when both are.
//
// The launcher never wraps, retries, or reinterprets the delegate's
// outcome: the exit code observed here is the exit code the process
// reports.
type Delegate struct {
	// Entry is an in-process entry point.
	Entry EntryFunc

	// BinaryPath is a child-process entry point: the packaged
	// application binary, spawned with Args passed through and stdio
	// inherited.
	BinaryPath string

	// Stdin, Stdout and Stderr override the inherited stdio of a child
	// delegate. Nil means the launcher's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Invoke runs the entry point once and returns its exit code unmodified.
// A non-nil error means the delegate could not be started at all; it never
// reflects the delegate's own failure.
func (d *Delegate) Invoke(ctx context.Context, info LaunchInfo) (int, error) {
	if d.Entry != nil {
		if err := os.Setenv(EnvBundleDir, info.BaseDir); err != nil {
			return 0, fmt.Errorf("exporting %s: %w", EnvBundleDir, err)
		}
		return d.Entry(ctx, info), nil
	}

	if d.BinaryPath == "" {
		return 0, fmt.Errorf("delegate has no entry point")
	}

	cmd := exec.CommandContext(ctx, d.BinaryPath, info.Args...)
	cmd.Env = append(os.Environ(), EnvBundleDir+"="+info.BaseDir)
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	// A delegate that ran and failed is not a launcher error: its exit
	// code passes through untouched.
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("starting %s: %w", d.BinaryPath, err)
}
