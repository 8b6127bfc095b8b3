package store

import (
	"context"

	"github.com/NomadCrew/feedback-backend/types"
)

// FeedbackStore is implemented by every persistence backend: the JSON file store
// and the hosted database stores are interchangeable behind it.
type FeedbackStore interface {
	// Initialize prepares the backing storage. It is idempotent and cheap enough
	// to call before every operation.
	Initialize(ctx context.Context) error
	// ListFeedback returns every stored record in insertion order.
	ListFeedback(ctx context.Context) ([]types.Feedback, error)
	// CreateFeedback persists fb and returns the stored record with its
	// server-assigned ID and CreatedAt.
	CreateFeedback(ctx context.Context, fb *types.Feedback) (*types.Feedback, error)
	// DeleteFeedback removes the record with the given id. It returns ErrNotFound
	// when nothing matched and ErrStorageMissing when storage was never initialized.
	DeleteFeedback(ctx context.Context, id string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
