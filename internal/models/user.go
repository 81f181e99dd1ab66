package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated actor behind a request. Every core
// operation takes it as an explicit argument instead of reading an
// ambient "current user".
type Principal struct {
	UserID  string
	IsStaff bool
}
