package mailqueue

import "context"

// Repository defines data access for the email queue.
type Repository interface {
	// Enqueue inserts a pending email record.
	Enqueue(ctx context.Context, e *Email) error

	// ListPending returns queued emails that have not been sent yet.
	ListPending(ctx context.Context) ([]*Email, error)
}
