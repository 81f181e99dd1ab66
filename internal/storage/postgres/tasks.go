package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskapi/internal/models"
	"taskapi/internal/storage"
)

type TaskStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskStore(logger zerolog.Logger, pgPool *pgxpool.Pool) *TaskStore {
	return &TaskStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *TaskStore) InsertTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	const insertTaskQuery = `
INSERT INTO tasks (owner_id,
                   title,
                   description,
                   status,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		if isTaskTitleViolation(err) {
			s.logger.Error().
				Str("owner_id", task.OwnerID).
				Str("title", task.Title).
				Msg("owner already has a task with this title")
			return nil, storage.ErrDuplicateTitle
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")
	return task, nil
}

func (s *TaskStore) TaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{ID: id}

	const selectTaskByIDQuery = `
SELECT owner_id,
       title,
       description,
       status,
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) FindTasks(ctx context.Context, filter storage.TaskFilter, offset, limit uint32) ([]*models.Task, error) {
	where, args := buildTaskWhere(filter)

	query := fmt.Sprintf(`
SELECT id,
       owner_id,
       title,
       description,
       status,
       due_date,
       created_at,
       updated_at
FROM tasks%s
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d
`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *TaskStore) CountTasks(ctx context.Context, filter storage.TaskFilter) (int64, error) {
	where, args := buildTaskWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tasks%s`, where)

	var count int64
	err := s.pgPool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return 0, err
	}
	return count, nil
}

func (s *TaskStore) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	const updateTaskQuery = `
UPDATE tasks
SET owner_id = $1,
    title = $2,
    description = $3,
    status = $4,
    due_date = $5,
    updated_at = $6
WHERE id = $7
RETURNING created_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	).Scan(&task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		if isTaskTitleViolation(err) {
			s.logger.Error().
				Str("owner_id", task.OwnerID).
				Str("title", task.Title).
				Msg("owner already has a task with this title")
			return nil, storage.ErrDuplicateTitle
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	s.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func buildTaskWhere(filter storage.TaskFilter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.Title != "" {
		add("title = $%d", filter.Title)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.DueDate != nil {
		add("due_date = $%d", *filter.DueDate)
	}
	if filter.ExcludeID != 0 {
		add("id <> $%d", filter.ExcludeID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isTaskTitleViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == taskTitleConstraint
}
