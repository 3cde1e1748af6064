package analysis

import "context"

// Repository port for persisting and querying analysis records.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// GetByID returns nil, nil when no record has the id.
	GetByID(ctx context.Context, id string) (*Record, error)
	// ListByOwner returns only records owned by ownerID, newest first,
	// skipping the first offset of them.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Record, error)
}

// CompletionService turns a prompt into generated text.
type CompletionService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IdentityVerifier resolves a bearer token to a caller.
// A nil result means unauthenticated, whatever the reason.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) *Caller
}
