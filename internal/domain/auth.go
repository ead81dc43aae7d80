package domain

import "time"

// PasswordResetToken is a single-use reset credential.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// EmailVerification holds the hashed signup code for an unverified account.
type EmailVerification struct {
	UserID    string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
