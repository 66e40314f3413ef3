package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/service"
	"github.com/jukuhub/juku-api/internal/service/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newJSONRequest builds a request with a JSON body and, when userID is
// non-nil, the authenticated-user context the middleware would have set.
func newJSONRequest(t *testing.T, method, target string, payload interface{}, userID *uuid.UUID) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, *userID))
	}
	return req
}

// withPathParam attaches a chi route parameter to the request context.
func withPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

// --- service mocks ---

type mockUserService struct {
	registerUser    *domain.User
	registerErr     error
	authUser        *domain.User
	authErr         error
	getUser         *domain.User
	getErr          error
	listUsers       []*domain.User
	listErr         error
	updatedUser     *domain.User
	updateErr       error
	lastUpdate      service.UserUpdate
	lastUpdateTuple [2]uuid.UUID
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerUser, nil
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.authUser, nil
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getUser, nil
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listUsers, nil
}

func (m *mockUserService) UpdateUser(
	ctx context.Context,
	callerID, targetID uuid.UUID,
	update service.UserUpdate,
) (*domain.User, error) {
	m.lastUpdate = update
	m.lastUpdateTuple = [2]uuid.UUID{callerID, targetID}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updatedUser, nil
}

type mockLessonService struct {
	content        *generation.LessonContent
	err            error
	lastTranscript string
	lastUserID     uuid.UUID
}

var _ service.LessonService = (*mockLessonService)(nil)

func (m *mockLessonService) GenerateLesson(
	ctx context.Context,
	userID uuid.UUID,
	transcript string,
	studentCtx generation.StudentContext,
) (*generation.LessonContent, error) {
	m.lastUserID = userID
	m.lastTranscript = transcript
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

type mockQuestionService struct {
	job        *domain.QuestionJob
	submitErr  error
	getJob     *domain.QuestionJob
	getErr     error
	lastImage  []byte
	lastMIME   string
	lastCaller uuid.UUID
}

var _ service.QuestionService = (*mockQuestionService)(nil)

func (m *mockQuestionService) SubmitQuestion(
	ctx context.Context,
	studentID uuid.UUID,
	imageData []byte,
	imageMIME string,
) (*domain.QuestionJob, error) {
	m.lastImage = imageData
	m.lastMIME = imageMIME
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.job, nil
}

func (m *mockQuestionService) GetQuestion(
	ctx context.Context,
	callerID, questionID uuid.UUID,
) (*domain.QuestionJob, error) {
	m.lastCaller = callerID
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getJob, nil
}

type mockNotificationService struct {
	record      *domain.NotificationRecord
	sendErr     error
	registerErr error
	lastMeta    map[string]string
	lastToken   string
}

var _ service.NotificationService = (*mockNotificationService)(nil)

func (m *mockNotificationService) Send(
	ctx context.Context,
	senderID, targetUserID uuid.UUID,
	title, body string,
	meta map[string]string,
) (*domain.NotificationRecord, error) {
	m.lastMeta = meta
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.record, nil
}

func (m *mockNotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	m.lastToken = token
	return m.registerErr
}

type mockStatsService struct {
	stats         *service.UsageStats
	err           error
	lastRangeDays int
}

var _ service.StatsService = (*mockStatsService)(nil)

func (m *mockStatsService) UsageStats(ctx context.Context, rangeDays int) (*service.UsageStats, error) {
	m.lastRangeDays = rangeDays
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

type mockJWTService struct {
	token      string
	refresh    string
	genErr     error
	claims     *auth.Claims
	verifyErr  error
	lastUserID uuid.UUID
}

var _ auth.JWTService = (*mockJWTService)(nil)

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	m.lastUserID = userID
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.token, nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.claims, nil
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.refresh, nil
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.claims, nil
}
