package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"forge/config"
	"forge/launcher"
)

// Application holds all wired dependencies and manages the launch lifecycle.
type Application struct {
	Config   config.Config
	Runtime  launcher.Runtime
	BaseDir  string
	LaunchID string
	Delegate *launcher.Delegate

	// Args is the original argv tail, handed to the delegate verbatim.
	Args []string

	delegated atomic.Bool
}

// Run hands control to the application's entry point and returns its exit
// code unmodified. Delegation happens exactly once per Application: the
// delegated state is terminal, and a second Run is rejected instead of
// invoking the entry point again.
func (a *Application) Run(ctx context.Context) (int, error) {
	if !a.delegated.CompareAndSwap(false, true) {
		return 0, fmt.Errorf("launch %s already delegated", a.LaunchID)
	}

	return a.Delegate.Invoke(ctx, launcher.LaunchInfo{
		BaseDir:  a.BaseDir,
		LaunchID: a.LaunchID,
		Args:     a.Args,
	})
}
