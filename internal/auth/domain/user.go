package domain

import "time"

type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	RefreshToken       string
	RefreshTokenExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type AccessToken struct {
	ID        string
	UserID    string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
