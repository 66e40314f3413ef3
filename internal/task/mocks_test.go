package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memQuestionStore is an in-memory QuestionStore with the same conditional
// transition semantics as the SQL implementation.
type memQuestionStore struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]*domain.QuestionJob
	claimErr error
}

func newMemQuestionStore() *memQuestionStore {
	return &memQuestionStore{jobs: make(map[uuid.UUID]*domain.QuestionJob)}
}

func (m *memQuestionStore) add(job *domain.QuestionJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
}

func (m *memQuestionStore) Create(ctx context.Context, job *domain.QuestionJob) error {
	m.add(job)
	return nil
}

func (m *memQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memQuestionStore) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.QuestionStatusQueued || len(j.ImageData) == 0 {
		return false, nil
	}
	now := time.Now().UTC()
	j.Status = domain.QuestionStatusProcessing
	j.ProcessingStartedAt = &now
	return true, nil
}

func (m *memQuestionStore) MarkAnalyzed(ctx context.Context, id uuid.UUID, analysis string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.QuestionStatusProcessing {
		return store.ErrUpdateFailed
	}
	now := time.Now().UTC()
	j.Status = domain.QuestionStatusAnalyzed
	j.AIAnalysis = analysis
	j.CompletedAt = &now
	return nil
}

func (m *memQuestionStore) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.QuestionStatusProcessing {
		return store.ErrUpdateFailed
	}
	now := time.Now().UTC()
	j.Status = domain.QuestionStatusError
	j.ErrorMessage = message
	j.CompletedAt = &now
	return nil
}

func (m *memQuestionStore) ListQueued(ctx context.Context, limit int) ([]*domain.QuestionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.QuestionJob
	for _, j := range m.jobs {
		if j.Status == domain.QuestionStatusQueued {
			cp := *j
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memQuestionStore) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var ids []uuid.UUID
	for _, j := range m.jobs {
		if j.Status == domain.QuestionStatusProcessing &&
			j.ProcessingStartedAt != nil && !j.ProcessingStartedAt.After(cutoff) {
			j.Status = domain.QuestionStatusQueued
			j.ProcessingStartedAt = nil
			ids = append(ids, j.ID)
		}
	}
	return ids, nil
}

func (m *memQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore { return m }

// memUsageStore records appended entries.
type memUsageStore struct {
	mu      sync.Mutex
	entries []*domain.UsageLogEntry
}

func (m *memUsageStore) Append(ctx context.Context, entry *domain.UsageLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memUsageStore) RollupSince(ctx context.Context, since time.Time) ([]store.UsageRollup, error) {
	return nil, nil
}

func (m *memUsageStore) WithTx(tx *sql.Tx) store.UsageLogStore { return m }

func (m *memUsageStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeAnalyzer fakes the vision model.
type fakeAnalyzer struct {
	mu     sync.Mutex
	text   string
	err    error
	ncalls int
}

func (f *fakeAnalyzer) AnalyzeQuestionImage(
	ctx context.Context,
	imageData []byte,
	imageMIME string,
) (*generation.QuestionAnalysis, error) {
	f.mu.Lock()
	f.ncalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &generation.QuestionAnalysis{Text: f.text}, nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ncalls
}

// memQuotaStore records DeleteOlderThan calls for sweeper tests.
type memQuotaStore struct {
	mu        sync.Mutex
	cutoffs   []time.Time
	deleted   int64
	deleteErr error
}

func (m *memQuotaStore) CheckAndConsume(ctx context.Context, userID uuid.UUID, day time.Time, dailyLimit int) (bool, error) {
	return true, nil
}

func (m *memQuotaStore) GetRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.QuotaRecord, error) {
	return nil, store.ErrQuotaRecordNotFound
}

func (m *memQuotaStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.deleted, nil
}

func (m *memQuotaStore) WithTx(tx *sql.Tx) store.QuotaStore { return m }

func (m *memQuotaStore) sweepCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cutoffs)
}
