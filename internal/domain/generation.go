package domain

import "time"

// GenerationStatus enumerates the recorded lifecycle end states.
type GenerationStatus string

const (
	GenerationStatusSucceeded GenerationStatus = "succeeded"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationRecord is the persisted trace of one generation attempt. Records
// exist for observability only; the orchestration core never reads them back.
type GenerationRecord struct {
	ID           string
	RequestID    string
	Prompt       string
	Adapter      string
	Variant      string
	Status       GenerationStatus
	ErrorKind    string
	ErrorMessage string
	ArtifactRef  string
	CreatedAt    time.Time
}
