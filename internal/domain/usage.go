package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Billed operation names recorded in the usage audit log.
const (
	OperationLessonContent    = "lesson_content"
	OperationQuestionAnalysis = "question_analysis"
)

// SystemUserID identifies usage entries for jobs without an attributable
// submitter, such as questions created before account linkage.
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Common validation errors for UsageLogEntry
var (
	ErrEmptyUsageID        = errors.New("usage entry ID cannot be empty")
	ErrEmptyUsageUserID    = errors.New("usage entry user ID cannot be empty")
	ErrEmptyUsageOperation = errors.New("usage entry operation cannot be empty")
)

// UsageLogEntry is an immutable record of one successful billed AI call.
// Entries are only ever appended; archival and rollup happen elsewhere.
type UsageLogEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Operation  string    `json:"operation"`
	CreatedAt  time.Time `json:"created_at"`
	DateBucket time.Time `json:"date_bucket"`
}

// NewUsageLogEntry creates a usage entry for the given user and operation,
// stamping the current time and its date bucket.
func NewUsageLogEntry(userID uuid.UUID, operation string) (*UsageLogEntry, error) {
	now := time.Now().UTC()
	entry := &UsageLogEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Operation:  operation,
		CreatedAt:  now,
		DateBucket: UsageDay(now),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the UsageLogEntry has valid data.
func (e *UsageLogEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyUsageID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyUsageUserID
	}

	if e.Operation == "" {
		return ErrEmptyUsageOperation
	}

	return nil
}
