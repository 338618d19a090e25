package models

import "time"

// Status is the lifecycle state of a synthesis job.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusComplete   Status = "COMPLETE"
	StatusFailed     Status = "FAILED"
)

// Job is one text-to-audio conversion request. The submission API creates it
// with status PENDING; after that the synthesis worker is the only mutator.
// ArtifactKey is set exactly when the job reaches COMPLETE.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Text        string    `json:"text"`
	Voice       string    `json:"voice"`
	ArtifactKey *string   `json:"artifact_key,omitempty"`
	ErrorText   string    `json:"error_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewJob returns a PENDING job ready for insertion.
func NewJob(id, text, voice string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        id,
		Status:    StatusPending,
		Text:      text,
		Voice:     voice,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
