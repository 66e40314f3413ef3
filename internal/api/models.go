package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// MustChangePassword signals that the client has to route the user
	// through the password change flow before anything else.
	MustChangePassword bool `json:"must_change_password"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LessonGenerateRequest defines the payload for lesson content generation.
type LessonGenerateRequest struct {
	Transcript     string                    `json:"transcript" validate:"required,min=1"`
	StudentContext generation.StudentContext `json:"student_context"`
}

// QuestionSubmitRequest defines the payload for submitting a question photo
// for asynchronous analysis. The image is carried base64 encoded.
type QuestionSubmitRequest struct {
	ImageData string `json:"image_data" validate:"required,base64"`
	ImageMIME string `json:"image_mime" validate:"required,oneof=image/jpeg image/png image/webp image/heic"`
}

// QuestionSubmitResponse acknowledges an accepted question job.
type QuestionSubmitResponse struct {
	ID     uuid.UUID             `json:"id"`
	Status domain.QuestionStatus `json:"status"`
}

// QuestionResponse is the full view of a question job returned to its owner
// (or an admin). The raw image payload is never echoed back.
type QuestionResponse struct {
	ID          uuid.UUID             `json:"id"`
	StudentID   uuid.UUID             `json:"student_id"`
	Status      domain.QuestionStatus `json:"status"`
	AIAnalysis  string                `json:"ai_analysis,omitempty"`
	Error       string                `json:"error,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// NewQuestionResponse builds a QuestionResponse from a domain job.
func NewQuestionResponse(job *domain.QuestionJob) QuestionResponse {
	return QuestionResponse{
		ID:          job.ID,
		StudentID:   job.StudentID,
		Status:      job.Status,
		AIAnalysis:  job.AIAnalysis,
		Error:       job.ErrorMessage,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}

// NotificationSendRequest defines the payload for dispatching a push
// notification to a user's registered devices.
type NotificationSendRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id" validate:"required"`
	Title        string    `json:"title"          validate:"required,max=200"`
	Body         string    `json:"body"           validate:"required,max=1000"`
	URL          string    `json:"url,omitempty"  validate:"omitempty,url"`
	Type         string    `json:"type,omitempty" validate:"omitempty,max=50"`
}

// NotificationSendResponse reports the per-device outcome of a dispatch.
type NotificationSendResponse struct {
	ID           uuid.UUID `json:"id"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	SentAt       time.Time `json:"sent_at"`
}

// DeviceRegisterRequest defines the payload for registering a push token.
type DeviceRegisterRequest struct {
	Token string `json:"token" validate:"required,min=1,max=4096"`
}

// UserProfile is the admin-facing view of a user account. The password hash
// is never serialized.
type UserProfile struct {
	ID                 uuid.UUID   `json:"id"`
	Email              string      `json:"email"`
	Role               domain.Role `json:"role"`
	MustChangePassword bool        `json:"must_change_password"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// NewUserProfile builds a UserProfile from a domain user.
func NewUserProfile(u *domain.User) UserProfile {
	return UserProfile{
		ID:                 u.ID,
		Email:              u.Email,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// UserUpdateRequest defines the payload for an admin user update. All fields
// are optional; absent fields leave the account unchanged.
type UserUpdateRequest struct {
	Role               *string `json:"role,omitempty"                 validate:"omitempty,oneof=student admin"`
	MustChangePassword *bool   `json:"must_change_password,omitempty"`
	Password           *string `json:"password,omitempty"             validate:"omitempty,min=12,max=72"`
}
