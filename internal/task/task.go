package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of an in-process task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeQuestionAnalysis represents the task type for analyzing a
	// photographed question with the vision model.
	TaskTypeQuestionAnalysis = "question_analysis"
)

// Task represents a unit of background work to be processed.
//
// Durable state lives in the entity a task operates on (question jobs carry
// their own status column); the task object only tracks in-memory progress.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	// Submit adds a task to the queue for processing.
	// Returns an error if the queue is full or the runner is stopped.
	Submit(ctx context.Context, task Task) error
}
