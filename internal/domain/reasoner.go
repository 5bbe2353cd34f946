package domain

import (
	"context"
	"fmt"
)

// Reasoner produces one Judgment for a claim. Module internals (graph
// shape, domain content) are opaque to the core; the only cross-module
// surface is the ShadowView.
type Reasoner interface {
	ID() string
	Judge(ctx context.Context, claim Claim, shadows ShadowView) (Judgment, error)
}

// ModuleFailure reports a module that could not produce a judgment. The
// module is recorded absent and orchestration continues.
type ModuleFailure struct {
	ModuleID string
	Cause    error
}

func (e *ModuleFailure) Error() string {
	return fmt.Sprintf("module %s failed: %v", e.ModuleID, e.Cause)
}

func (e *ModuleFailure) Unwrap() error { return e.Cause }
