package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskapi/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type AuthService interface {
	// Register creates a non-staff user with a hashed password.
	//
	// It returns storage.ErrUsernameTaken or storage.ErrEmailTaken
	// when the username or email is already registered.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login authenticates the user by username and password and
	// issues a fresh token pair.
	//
	// It returns ErrInvalidCredentials both for an unknown username
	// and for a wrong password, so the two are indistinguishable.
	Login(ctx context.Context, params LoginParams) (*TokenPair, error)

	// Refresh validates the refresh token and issues a new access
	// token, or fails with ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Authenticate resolves an access token to the principal behind
	// it, or fails with ErrInvalidToken.
	Authenticate(ctx context.Context, accessToken string) (models.Principal, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, principal models.Principal, params CreateTaskParams) (*models.Task, error)
	ListTasks(ctx context.Context, principal models.Principal, params ListTasksParams) ([]*models.Task, error)
	GetTask(ctx context.Context, principal models.Principal, taskID int64) (*models.Task, error)
	UpdateTask(ctx context.Context, principal models.Principal, taskID int64, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, principal models.Principal, taskID int64) error
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

type LoginParams struct {
	Username string
	Password string
}

type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      bool
	DueDate     *time.Time

	// OwnerID is the requested owner. Only staff principals may name
	// someone other than themselves.
	OwnerID string
}

// ListTasksParams carries the raw filter values so the service owns
// their parsing rules: an unparseable status is ignored, an
// unparseable due date fails with ErrInvalidDate, and owner_id is
// staff-only.
type ListTasksParams struct {
	Status  string
	OwnerID string
	DueDate string
	Offset  uint32
	Limit   uint32
}

// UpdateTaskParams is the whitelist of mutable fields for a partial
// update. Nil means the field is left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *bool
	DueDate     *time.Time
	OwnerID     *string
}
