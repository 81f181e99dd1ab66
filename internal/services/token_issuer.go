package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskapi/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenIssuer issues and validates the bearer tokens for an
// authenticated user. Both tokens are stateless JWTs; a typ claim
// keeps a refresh token from passing as an access token and vice
// versa.
type TokenIssuer interface {
	Issue(user *models.User) (*TokenPair, error)

	// Refresh validates a refresh token and issues a fresh access
	// token, or fails with ErrInvalidToken.
	Refresh(refreshToken string) (string, time.Time, error)

	// Parse validates an access token and returns the id of the user
	// it was issued to, or fails with ErrInvalidToken.
	Parse(accessToken string) (string, error)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

type jwtIssuer struct {
	issuer          string
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewJWTIssuer(
	issuer string,
	signingKey []byte,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) TokenIssuer {
	return &jwtIssuer{
		issuer:          issuer,
		signingKey:      signingKey,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (i *jwtIssuer) Issue(user *models.User) (*TokenPair, error) {
	accessToken, accessExpiresAt, err := i.sign(user.ID, tokenTypeAccess, i.accessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiresAt, err := i.sign(user.ID, tokenTypeRefresh, i.refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

func (i *jwtIssuer) Refresh(refreshToken string) (string, time.Time, error) {
	claims, err := i.parse(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return "", time.Time{}, ErrInvalidToken
	}
	return i.sign(claims.Subject, tokenTypeAccess, i.accessTokenTTL)
}

func (i *jwtIssuer) Parse(accessToken string) (string, error) {
	claims, err := i.parse(accessToken)
	if err != nil || claims.TokenType != tokenTypeAccess {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (i *jwtIssuer) sign(userID, tokenType string, ttl time.Duration) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID.String(),
			Issuer:    i.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TokenType: tokenType,
	})

	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *jwtIssuer) parse(tokenString string) (*tokenClaims, error) {
	t, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return i.signingKey, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*tokenClaims)
	if !ok {
		return nil, errors.New("unexpected token claims")
	}
	return claims, nil
}
