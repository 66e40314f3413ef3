package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// QuestionStatus represents the processing state of a question job.
type QuestionStatus string

// Possible question job status values. Transitions are one-directional:
// queued -> processing -> analyzed, or processing -> error.
const (
	QuestionStatusQueued     QuestionStatus = "queued"
	QuestionStatusProcessing QuestionStatus = "processing"
	QuestionStatusAnalyzed   QuestionStatus = "analyzed"
	QuestionStatusError      QuestionStatus = "error"
)

// Common validation errors for QuestionJob
var (
	ErrEmptyQuestionID        = errors.New("question ID cannot be empty")
	ErrEmptyQuestionStudentID = errors.New("question student ID cannot be empty")
	ErrEmptyQuestionImage     = errors.New("question image cannot be empty")
	ErrInvalidQuestionStatus  = errors.New("invalid question status")
)

// QuestionJob represents a photographed question submitted by a student for
// AI analysis. It tracks the image payload alongside the analysis lifecycle.
type QuestionJob struct {
	ID                  uuid.UUID      `json:"id"`
	StudentID           uuid.UUID      `json:"student_id"`
	ImageData           []byte         `json:"-"`
	ImageMIME           string         `json:"image_mime"`
	Status              QuestionStatus `json:"status"`
	AIAnalysis          string         `json:"ai_analysis,omitempty"`
	ErrorMessage        string         `json:"error,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	ProcessingStartedAt *time.Time     `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
}

// NewQuestionJob creates a new QuestionJob in the queued state for the given
// student and image payload. Returns an error if validation fails.
func NewQuestionJob(studentID uuid.UUID, imageData []byte, imageMIME string) (*QuestionJob, error) {
	job := &QuestionJob{
		ID:        uuid.New(),
		StudentID: studentID,
		ImageData: imageData,
		ImageMIME: imageMIME,
		Status:    QuestionStatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the QuestionJob has valid data.
func (j *QuestionJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyQuestionID
	}

	if j.StudentID == uuid.Nil {
		return ErrEmptyQuestionStudentID
	}

	if len(j.ImageData) == 0 {
		return ErrEmptyQuestionImage
	}

	if !IsValidQuestionStatus(j.Status) {
		return ErrInvalidQuestionStatus
	}

	return nil
}

// IsTerminal reports whether the job has reached a final state.
func (j *QuestionJob) IsTerminal() bool {
	return j.Status == QuestionStatusAnalyzed || j.Status == QuestionStatusError
}

// IsValidQuestionStatus checks if the given status is a valid QuestionStatus.
func IsValidQuestionStatus(status QuestionStatus) bool {
	switch status {
	case QuestionStatusQueued, QuestionStatusProcessing,
		QuestionStatusAnalyzed, QuestionStatusError:
		return true
	default:
		return false
	}
}
