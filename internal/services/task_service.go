package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskapi/internal/access"
	"taskapi/internal/models"
	"taskapi/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStore
	engine *access.Engine
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
	engine *access.Engine,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
		engine: engine,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, principal models.Principal, params CreateTaskParams) (*models.Task, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.engine.ResolveOwner(ctx, principal, params.OwnerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: params.Description,
		Status:      params.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.DueDate != nil {
		task.DueDate = dateOf(*params.DueDate)
	} else {
		task.DueDate = dateOf(now.AddDate(0, 0, models.DueDateDefaultDays))
	}

	err = s.engine.CheckTitleUnique(ctx, ownerID, title, 0)
	if err != nil {
		return nil, err
	}

	created, err := s.tasks.InsertTask(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", created.ID).
		Str("owner_id", created.OwnerID).
		Msg("created task")
	return created, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, principal models.Principal, params ListTasksParams) ([]*models.Task, error) {
	filter := storage.TaskFilter{}
	if !principal.IsStaff {
		filter.OwnerID = principal.UserID
	}

	if params.Status != "" {
		status, err := strconv.ParseBool(params.Status)
		if err == nil {
			filter.Status = &status
		}
		// An unparseable status leaves the set unfiltered.
	}

	if params.OwnerID != "" {
		if !principal.IsStaff {
			s.logger.Warn().
				Str("user_id", principal.UserID).
				Msg("non-staff principal requested owner filter")
			return nil, access.ErrForbidden
		}
		filter.OwnerID = params.OwnerID
	}

	if params.DueDate != "" {
		dueDate, err := time.Parse(time.DateOnly, params.DueDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filter.DueDate = &dueDate
	}

	limit := params.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	// An empty result is a success, never an error.
	return s.tasks.FindTasks(ctx, filter, params.Offset, limit)
}

func (s *taskServiceImpl) GetTask(ctx context.Context, principal models.Principal, taskID int64) (*models.Task, error) {
	task, err := s.tasks.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	err = s.engine.CheckAccess(principal, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, principal models.Principal, taskID int64, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.tasks.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	err = s.engine.CheckAccess(principal, task)
	if err != nil {
		return nil, err
	}

	// Only staff may move a task to another owner. For anyone else
	// resolution lands back on the principal, who is the current
	// owner once the access check has passed.
	ownerID := task.OwnerID
	if params.OwnerID != nil {
		ownerID, err = s.engine.ResolveOwner(ctx, principal, *params.OwnerID)
		if err != nil {
			return nil, err
		}
	}

	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return nil, err
		}

		err = s.engine.CheckTitleUnique(ctx, ownerID, title, task.ID)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.DueDate != nil {
		task.DueDate = dateOf(*params.DueDate)
	}
	task.OwnerID = ownerID
	task.UpdatedAt = time.Now()

	updated, err := s.tasks.UpdateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", updated.ID).
		Str("owner_id", updated.OwnerID).
		Msg("updated task")
	return updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, principal models.Principal, taskID int64) error {
	task, err := s.tasks.TaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	err = s.engine.CheckAccess(principal, task)
	if err != nil {
		return err
	}

	err = s.tasks.DeleteTask(ctx, task.ID)
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", principal.UserID).
		Msg("deleted task")
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > models.TitleMaxLength {
		return "", &ValidationError{Field: "title", Message: "title must be at most 300 characters"}
	}
	return title, nil
}

// dateOf truncates a timestamp to its calendar date. Due dates are
// stored date-only.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
