package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskapi/internal/models"
	"taskapi/internal/storage"
)

type UserStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserStore(logger zerolog.Logger, pgPool *pgxpool.Pool) *UserStore {
	return &UserStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   password,
                   is_staff,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsStaff,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case usernameConstraint:
				s.logger.Error().
					Str("username", user.Username).
					Msg("user with this username already exists")
				return storage.ErrUsernameTaken
			case emailConstraint:
				s.logger.Error().
					Str("email", user.Email).
					Msg("user with this email already exists")
				return storage.ErrEmailTaken
			}
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}

	s.logger.Debug().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("inserted user")
	return nil
}

func (s *UserStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{ID: id}

	const selectUserByIDQuery = `
SELECT username,
       email,
       password,
       is_staff,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (s *UserStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}

	const selectUserByUsernameQuery = `
SELECT id,
       email,
       password,
       is_staff,
       created_at,
       updated_at
FROM users
WHERE username = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		user.Username,
	).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to select user by username")
		return nil, err
	}
	return user, nil
}

func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	const existsUsernameQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
`
	var exists bool
	err := s.pgPool.QueryRow(ctx, existsUsernameQuery, username).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to check username")
		return false, err
	}
	return exists, nil
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	const existsEmailQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
`
	var exists bool
	err := s.pgPool.QueryRow(ctx, existsEmailQuery, email).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to check email")
		return false, err
	}
	return exists, nil
}
