package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/events"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/notify"
	"github.com/jukuhub/juku-api/internal/store"
)

// passthroughTx substitutes for store.RunInTransaction in tests; the mock
// stores ignore the transaction handle entirely.
func passthroughTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// mockUserStore is a hand-written in-memory UserStore.
type mockUserStore struct {
	users     map[uuid.UUID]*domain.User
	createErr error
	updateErr error
	listErr   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockQuestionStore is a hand-written in-memory QuestionStore.
type mockQuestionStore struct {
	jobs      map[uuid.UUID]*domain.QuestionJob
	createErr error
}

func newMockQuestionStore() *mockQuestionStore {
	return &mockQuestionStore{jobs: make(map[uuid.UUID]*domain.QuestionJob)}
}

func (m *mockQuestionStore) Create(ctx context.Context, job *domain.QuestionJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockQuestionStore) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.QuestionStatusQueued || len(j.ImageData) == 0 {
		return false, nil
	}
	now := time.Now().UTC()
	j.Status = domain.QuestionStatusProcessing
	j.ProcessingStartedAt = &now
	return true, nil
}

func (m *mockQuestionStore) MarkAnalyzed(ctx context.Context, id uuid.UUID, analysis string) error {
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

func (m *mockQuestionStore) MarkError(ctx context.Context, id uuid.UUID, message string) error {
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

func (m *mockQuestionStore) ListQueued(ctx context.Context, limit int) ([]*domain.QuestionJob, error) {
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

func (m *mockQuestionStore) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	var ids []uuid.UUID
	for _, j := range m.jobs {
		if j.Status == domain.QuestionStatusProcessing &&
			j.ProcessingStartedAt != nil && j.ProcessingStartedAt.Before(cutoff) {
			j.Status = domain.QuestionStatusQueued
			j.ProcessingStartedAt = nil
			ids = append(ids, j.ID)
		}
	}
	return ids, nil
}

func (m *mockQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore { return m }

// mockQuotaStore counts consumption in memory with the same conditional
// semantics as the SQL upsert.
type mockQuotaStore struct {
	counts   map[string]int
	storeErr error
}

func newMockQuotaStore() *mockQuotaStore {
	return &mockQuotaStore{counts: make(map[string]int)}
}

func quotaKey(userID uuid.UUID, day time.Time) string {
	return userID.String() + "/" + domain.UsageDay(day).Format("2006-01-02")
}

func (m *mockQuotaStore) CheckAndConsume(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	dailyLimit int,
) (bool, error) {
	if m.storeErr != nil {
		return false, m.storeErr
	}
	key := quotaKey(userID, day)
	if m.counts[key] >= dailyLimit {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}

func (m *mockQuotaStore) GetRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.QuotaRecord, error) {
	count, ok := m.counts[quotaKey(userID, day)]
	if !ok {
		return nil, store.ErrQuotaRecordNotFound
	}
	return &domain.QuotaRecord{
		UserID:    userID,
		UsageDate: domain.UsageDay(day),
		Count:     count,
	}, nil
}

func (m *mockQuotaStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockQuotaStore) WithTx(tx *sql.Tx) store.QuotaStore { return m }

// mockUsageLogStore records appended entries.
type mockUsageLogStore struct {
	entries   []*domain.UsageLogEntry
	appendErr error
	rollups   []store.UsageRollup
	rollupErr error
}

func (m *mockUsageLogStore) Append(ctx context.Context, entry *domain.UsageLogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockUsageLogStore) RollupSince(ctx context.Context, since time.Time) ([]store.UsageRollup, error) {
	if m.rollupErr != nil {
		return nil, m.rollupErr
	}
	return m.rollups, nil
}

func (m *mockUsageLogStore) WithTx(tx *sql.Tx) store.UsageLogStore { return m }

// mockNotificationStore records created notification records.
type mockNotificationStore struct {
	records   []*domain.NotificationRecord
	createErr error
}

func (m *mockNotificationStore) Create(ctx context.Context, record *domain.NotificationRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockNotificationStore) ListByTarget(ctx context.Context, targetUserID uuid.UUID, limit int) ([]*domain.NotificationRecord, error) {
	var out []*domain.NotificationRecord
	for _, r := range m.records {
		if r.TargetUserID == targetUserID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore { return m }

// mockDeviceStore holds tokens per user.
type mockDeviceStore struct {
	tokens    map[uuid.UUID][]string
	removed   []string
	listErr   error
	removeErr error
}

func newMockDeviceStore() *mockDeviceStore {
	return &mockDeviceStore{tokens: make(map[uuid.UUID][]string)}
}

func (m *mockDeviceStore) Register(ctx context.Context, endpoint *domain.DeviceEndpoint) error {
	for _, t := range m.tokens[endpoint.UserID] {
		if t == endpoint.Token {
			return nil
		}
	}
	m.tokens[endpoint.UserID] = append(m.tokens[endpoint.UserID], endpoint.Token)
	return nil
}

func (m *mockDeviceStore) ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string{}, m.tokens[userID]...), nil
}

func (m *mockDeviceStore) RemoveTokens(ctx context.Context, userID uuid.UUID, tokens []string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, tokens...)
	remaining := m.tokens[userID][:0]
	for _, t := range m.tokens[userID] {
		keep := true
		for _, dead := range tokens {
			if t == dead {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, t)
		}
	}
	m.tokens[userID] = remaining
	return nil
}

func (m *mockDeviceStore) WithTx(tx *sql.Tx) store.DeviceStore { return m }

// mockMessenger fakes the push provider.
type mockMessenger struct {
	sent    []notify.Message
	result  notify.Result
	sendErr error
}

func (m *mockMessenger) Send(ctx context.Context, msg notify.Message) (*notify.Result, error) {
	m.sent = append(m.sent, msg)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	r := m.result
	return &r, nil
}

// mockGenerator fakes lesson content generation.
type mockGenerator struct {
	content *generation.LessonContent
	err     error
	calls   int
}

func (m *mockGenerator) GenerateLessonContent(
	ctx context.Context,
	transcript string,
	studentCtx generation.StudentContext,
) (*generation.LessonContent, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

// mockEmitter records emitted events.
type mockEmitter struct {
	events  []*events.TaskRequestEvent
	emitErr error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if m.emitErr != nil {
		return m.emitErr
	}
	m.events = append(m.events, event)
	return nil
}

// staticVerifier accepts one password.
type staticVerifier struct {
	accept string
}

func (v *staticVerifier) Compare(hashedPassword, password string) error {
	if password == v.accept {
		return nil
	}
	return ErrInvalidCredentials
}
