package documents

import "time"

// Status is the document lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Document represents an uploaded announcement owned by a user.
type Document struct {
	ID            string
	UserID        string
	FileName      string
	StorageKey    string
	SizeBytes     int64
	ContentType   string
	Fingerprint   string
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
