package storage

import (
	"context"
	"errors"
	"time"

	"taskapi/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateTitle = errors.New("owner already has a task with this title")
	ErrUsernameTaken  = errors.New("username already exists")
	ErrEmailTaken     = errors.New("email already exists")
)

type UserStore interface {
	// CreateUser persists a new user. It returns ErrUsernameTaken or
	// ErrEmailTaken when a unique constraint rejects the row.
	CreateUser(ctx context.Context, user *models.User) error

	// UserByID returns ErrNotFound when no user has the given id.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// UserByUsername returns ErrNotFound when no user has the given name.
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// TaskFilter narrows FindTasks and CountTasks. Zero values mean no
// constraint. ExcludeID skips one task, which lets the uniqueness check
// ignore the row being updated.
type TaskFilter struct {
	OwnerID   string
	Title     string
	Status    *bool
	DueDate   *time.Time
	ExcludeID int64
}

type TaskStore interface {
	// InsertTask persists a new task and returns it with its assigned id.
	// The (owner_id, title) unique constraint is the authoritative guard
	// against duplicate titles; a violation is ErrDuplicateTitle.
	InsertTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// TaskByID returns ErrNotFound when no task has the given id.
	TaskByID(ctx context.Context, id int64) (*models.Task, error)

	FindTasks(ctx context.Context, filter TaskFilter, offset, limit uint32) ([]*models.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int64, error)

	// UpdateTask persists all mutable fields of the task. It returns
	// ErrNotFound for a missing row and ErrDuplicateTitle when the
	// unique constraint rejects the new (owner_id, title) pair.
	UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// DeleteTask returns ErrNotFound when no row was removed.
	DeleteTask(ctx context.Context, id int64) error
}
