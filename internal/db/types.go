package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a cover letter run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	JobURL      string     `json:"job_url"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	RunStatusRunning     = "running"
	RunStatusCompleted   = "completed"
	RunStatusManualEntry = "needs_manual_entry"
	RunStatusFailed      = "failed"
)

// Artifact steps
const (
	StepPosting    = "posting"
	StepExtraction = "extraction"
	StepNarrative  = "narrative"
	StepLetter     = "letter"
)
