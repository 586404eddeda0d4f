package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	// UpdateStatus moves the document through its lifecycle. The failure
	// reason is stored only with StatusFailed and cleared otherwise.
	UpdateStatus(ctx context.Context, id string, status Status, failureReason string) error
}
