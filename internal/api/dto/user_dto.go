package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	MobileNumber string     `json:"mnumber"`
	Department   string     `json:"department"`
	Role         string     `json:"role"`
	BatchID      *string    `json:"batch_id"`
	EndDate      *time.Time `json:"end_date"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ProfileUpdateRequest lists the profile fields a user may edit. Other keys in
// the body are ignored.
type ProfileUpdateRequest struct {
	Name           *string `json:"name"`
	MobileNumber   *string `json:"mnumber"`
	LinkedInURL    *string `json:"linkedin_url"`
	ProfilePicture *string `json:"profile_picture"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	MobileNumber      string     `json:"mnumber,omitempty"`
	Role              string     `json:"role"`
	Department        string     `json:"department,omitempty"`
	ProfilePicture    string     `json:"profile_picture,omitempty"`
	LinkedInURL       string     `json:"linkedin_url,omitempty"`
	TotalPoints       int        `json:"total_points"`
	BatchID           *string    `json:"batch_id"`
	UnapprovedBatchID *string    `json:"unapproved_batch_id,omitempty"`
	BatchApproved     bool       `json:"batch_approved"`
	IsVerified        bool       `json:"is_verified"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	CreatedAt         time.Time  `json:"created_at"`
}

// LeaderboardEntry is one ranked intern.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
	TotalPoints int    `json:"total_points"`
}

// VerifyEmailRequest confirms a signup code.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendVerificationRequest asks for a fresh signup code.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}
