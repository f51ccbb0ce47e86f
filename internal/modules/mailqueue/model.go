package mailqueue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of a queued email.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Email is a queued outbound message. A separate worker drains the queue;
// this service only enqueues and lists.
type Email struct {
	ID        uuid.UUID       `json:"id"`
	Recipient string          `json:"recipient"`
	Subject   string          `json:"subject"`
	Template  string          `json:"template,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
