package services

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/models"
	"taskapi/internal/storage"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  storage.UserStore
	tokens TokenIssuer
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserStore,
	tokens TokenIssuer,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	taken, err := s.users.UsernameExists(ctx, params.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.Error().
			Str("username", params.Username).
			Msg("username already exists")
		return nil, storage.ErrUsernameTaken
	}

	taken, err = s.users.EmailExists(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.Error().
			Str("email", params.Email).
			Msg("email already exists")
		return nil, storage.ErrEmailTaken
	}

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           userUUID.String(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		IsStaff:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique constraints close the race between the pre-checks
	// above and the insert; a violation surfaces as the same sentinel.
	err = s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*TokenPair, error) {
	user, err := s.users.UserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("username", params.Username).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	}
	if !match {
		s.logger.Error().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token pair")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return pair, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, error) {
	accessToken, _, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to refresh access token")
		return "", ErrInvalidToken
	}

	s.logger.Info().Msg("refreshed access token")
	return accessToken, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, accessToken string) (models.Principal, error) {
	userID, err := s.tokens.Parse(accessToken)
	if err != nil {
		return models.Principal{}, ErrInvalidToken
	}

	// The staff flag is read from the store on every request so a
	// token issued before a privilege change cannot carry stale
	// permissions.
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("token subject no longer exists")
			return models.Principal{}, ErrInvalidToken
		}
		return models.Principal{}, err
	}

	return models.Principal{
		UserID:  user.ID,
		IsStaff: user.IsStaff,
	}, nil
}
