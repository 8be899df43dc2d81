package negotiation

import (
	"context"
	"errors"
)

// ErrDelegateUnavailable marks any failure of the conversational delegate:
// unreachable service, provider error, timeout or empty output.
var ErrDelegateUnavailable = errors.New("negotiation delegate unavailable")

// Advisor produces a conversational reply for free-form buyer input. It must
// not be trusted for deal decisions; numeric state is owned by Negotiation.
type Advisor interface {
	Generate(ctx context.Context, snapshot Snapshot, message string) (string, error)
}

// AdvisorFunc adapts a plain function to Advisor.
type AdvisorFunc func(ctx context.Context, snapshot Snapshot, message string) (string, error)

// Generate calls f.
func (f AdvisorFunc) Generate(ctx context.Context, snapshot Snapshot, message string) (string, error) {
	return f(ctx, snapshot, message)
}
