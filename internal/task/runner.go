package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jukuhub/juku-api/internal/store"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckJobAge defines how long a question job can sit in the processing
	// state before it's considered stuck and reset to queued
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs
	// If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing.
//
// Durable job state lives on the question rows, so the runner never persists
// tasks itself: recovery re-derives work from the queued set, and the stuck
// job monitor resets processing rows that outlived their worker.
type TaskRunner struct {
	questionStore store.QuestionStore
	factory       *QuestionAnalysisTaskFactory
	taskChan      chan Task
	ctx           context.Context
	cancelFunc    context.CancelFunc
	wg            sync.WaitGroup
	config        TaskRunnerConfig
	logger        *slog.Logger
	errHandler    func(task Task, err error)
}

var _ TaskSubmitter = (*TaskRunner)(nil)

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(
	questionStore store.QuestionStore,
	factory *QuestionAnalysisTaskFactory,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		questionStore: questionStore,
		factory:       factory,
		taskChan:      make(chan Task, config.QueueSize),
		ctx:           ctx,
		cancelFunc:    cancel,
		wg:            sync.WaitGroup{},
		config:        config,
		logger:        logger.With("component", "task_runner"),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start recovers queued jobs, then launches the worker pool and the stuck
// job monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover re-queues analysis work for jobs whose trigger was lost before a
// restart: everything still queued, plus processing jobs stranded by a crash.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	// Processing jobs from a previous run have no live worker; reset them
	// so they are picked up with the queued set below.
	resetIDs, err := r.questionStore.RequeueStaleProcessing(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to reset stranded jobs: %w", err)
	}

	queued, err := r.questionStore.ListQueued(ctx, r.config.QueueSize)
	if err != nil {
		return fmt.Errorf("failed to list queued jobs: %w", err)
	}

	r.logger.Info("recovering unfinished question jobs",
		"queued_count", len(queued),
		"reset_count", len(resetIDs))

	for _, job := range queued {
		task, err := r.factory.CreateTask(job.ID)
		if err != nil {
			r.logger.Error("failed to build recovery task",
				"question_id", job.ID,
				"error", err)
			continue
		}
		select {
		case r.taskChan <- task:
		default:
			r.logger.Error("failed to requeue job, queue is full",
				"question_id", job.ID)
		}
	}

	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.taskChan:
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed")
}

// stuckJobMonitor periodically resets question jobs that have been in the
// processing state for too long, then re-triggers everything still queued.
// The queued sweep catches jobs whose submit trigger was lost, including
// backlog that did not fit the queue during startup recovery. Duplicate
// triggers are harmless: the claim fires at most once per job.
func (r *TaskRunner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.sweepUnfinishedJobs()
		}
	}
}

// sweepUnfinishedJobs runs one maintenance pass: stale processing rows are
// reset to queued, and every queued job is fed back through the queue.
func (r *TaskRunner) sweepUnfinishedJobs() {
	ctx := context.Background()

	resetIDs, err := r.questionStore.RequeueStaleProcessing(ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", "error", err)
	} else if len(resetIDs) > 0 {
		r.logger.Info("reset stuck jobs", "count", len(resetIDs))
	}

	queued, err := r.questionStore.ListQueued(ctx, r.config.QueueSize)
	if err != nil {
		r.logger.Error("failed to list queued jobs", "error", err)
		return
	}

	for _, job := range queued {
		task, err := r.factory.CreateTask(job.ID)
		if err != nil {
			r.logger.Error("failed to build task for queued job",
				"question_id", job.ID,
				"error", err)
			continue
		}
		select {
		case r.taskChan <- task:
		default:
			// Queue is full; the next sweep picks the rest up.
			return
		}
	}
}
