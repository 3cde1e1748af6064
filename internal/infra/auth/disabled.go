package auth

import (
	"context"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

// Disabled is used when no identity provider is configured.
// Every token is rejected, so authenticated endpoints answer 401.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) *analysis.Caller { return nil }
