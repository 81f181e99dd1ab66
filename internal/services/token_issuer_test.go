package services

import (
	"errors"
	"testing"
	"time"

	"taskapi/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewJWTIssuer("taskapi-test", []byte("test-signing-key"), time.Minute, time.Hour)
	user := &models.User{ID: "u1", Username: "alice"}

	pair, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !pair.AccessTokenExpiresAt.Before(pair.RefreshTokenExpiresAt) {
		t.Error("access token should expire before the refresh token")
	}

	userID, err := issuer.Parse(pair.AccessToken)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if userID != "u1" {
		t.Errorf("subject: got %q, want %q", userID, "u1")
	}
}

func TestTokenTypeSeparation(t *testing.T) {
	issuer := NewJWTIssuer("taskapi-test", []byte("test-signing-key"), time.Minute, time.Hour)
	pair, err := issuer.Issue(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Parse(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(refresh): got %v, want ErrInvalidToken", err)
	}
	if _, _, err := issuer.Refresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh(access): got %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewJWTIssuer("taskapi-test", []byte("test-signing-key"), -time.Minute, time.Hour)
	pair, err := issuer.Issue(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Parse(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(expired): got %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsForeignToken(t *testing.T) {
	issuer := NewJWTIssuer("taskapi-test", []byte("test-signing-key"), time.Minute, time.Hour)
	foreign := NewJWTIssuer("taskapi-test", []byte("another-signing-key"), time.Minute, time.Hour)

	pair, err := foreign.Issue(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Parse(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(foreign signature): got %v, want ErrInvalidToken", err)
	}
}
