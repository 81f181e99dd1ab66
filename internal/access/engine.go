// Package access is the single source of truth for owner resolution,
// the (owner, title) uniqueness rule and task access decisions. The
// engine never mutates a task; it inspects the principal and the
// requested operation and returns a decision. Callers are expected to
// run the checks in a fixed order: not-found, access, owner
// resolution, uniqueness.
package access

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"taskapi/internal/models"
	"taskapi/internal/storage"
)

var (
	ErrForbidden     = errors.New("illegal access")
	ErrOwnerNotFound = errors.New("requested owner not found")
)

// UserLookup and TaskLookup are the read-only store views the engine
// needs. The postgres stores satisfy both.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type TaskLookup interface {
	CountTasks(ctx context.Context, filter storage.TaskFilter) (int64, error)
}

type Engine struct {
	logger zerolog.Logger
	users  UserLookup
	tasks  TaskLookup
}

func NewEngine(logger zerolog.Logger, users UserLookup, tasks TaskLookup) *Engine {
	return &Engine{
		logger: logger,
		users:  users,
		tasks:  tasks,
	}
}

// ResolveOwner returns the id of the user the operation applies to.
//
// A staff principal may name any existing user; naming a missing one
// fails with ErrOwnerNotFound. Everyone else always acts on their own
// tasks: a requested owner is silently overridden, never rejected.
func (e *Engine) ResolveOwner(ctx context.Context, principal models.Principal, requestedOwnerID string) (string, error) {
	if !principal.IsStaff || requestedOwnerID == "" || requestedOwnerID == principal.UserID {
		return principal.UserID, nil
	}

	owner, err := e.users.UserByID(ctx, requestedOwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn().
				Str("user_id", principal.UserID).
				Str("owner_id", requestedOwnerID).
				Msg("requested owner not found")
			return "", ErrOwnerNotFound
		}
		return "", err
	}
	return owner.ID, nil
}

// CheckTitleUnique rejects a title the effective owner already uses.
// A nonzero excludeTaskID leaves the task's own row out of the check,
// so updating a task to its current title is allowed. This is the fast
// rejection path; the storage unique constraint stays authoritative.
func (e *Engine) CheckTitleUnique(ctx context.Context, ownerID, title string, excludeTaskID int64) error {
	count, err := e.tasks.CountTasks(ctx, storage.TaskFilter{
		OwnerID:   ownerID,
		Title:     title,
		ExcludeID: excludeTaskID,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		e.logger.Warn().
			Str("owner_id", ownerID).
			Str("title", title).
			Msg("owner already has a task with this title")
		return storage.ErrDuplicateTitle
	}
	return nil
}

// CheckAccess decides whether the principal may operate on the task.
// Staff principals pass unconditionally; everyone else only reaches
// their own tasks. Callers must check existence first so that a denial
// never leaks whether a task exists.
func (e *Engine) CheckAccess(principal models.Principal, task *models.Task) error {
	if principal.IsStaff || task.OwnerID == principal.UserID {
		return nil
	}

	e.logger.Warn().
		Str("user_id", principal.UserID).
		Int64("task_id", task.ID).
		Msg("access denied")
	return ErrForbidden
}
