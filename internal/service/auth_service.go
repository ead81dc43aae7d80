package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/auth"
	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

const minPasswordLength = 6

// AuthService coordinates registration, login and account maintenance.
type AuthService struct {
	tx         repository.TxManager
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	verifies   repository.EmailVerificationRepository
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	verifyTTL  time.Duration
	emailFrom  string
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	TxManager         repository.TxManager
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	VerificationRepo  repository.EmailVerificationRepository
	Logger            *zap.Logger
	Now               func() time.Time
}

// RegisterInput carries a new account. Role defaults to intern. BatchID, when
// set, records a join request that staff must approve.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	MobileNumber string
	Department   string
	Role         domain.Role
	BatchID      *string
	EndDate      *time.Time
}

// ProfileInput lists the profile fields a user may change. Nil means unchanged.
type ProfileInput struct {
	Name           *string
	MobileNumber   *string
	LinkedInURL    *string
	ProfilePicture *string
}

// AuthResult is a signed-in user with its access token. VerificationCode is
// set only by Register.
type AuthResult struct {
	User             *domain.User
	Token            string
	ExpiresAt        time.Time
	VerificationCode string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		tx:         deps.TxManager,
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		verifies:   deps.VerificationRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     loggerOrNop(deps.Logger),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		verifyTTL:  time.Duration(cfg.Auth.VerificationTTLMinutes) * time.Minute,
		emailFrom:  cfg.Notification.EmailFrom,
		now:        nowOrDefault(deps.Now),
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"fields": []string{"email"}})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password is too short", map[string]any{"min_length": minPasswordLength})
	}

	role := input.Role
	if role == "" {
		role = domain.RoleIntern
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		MobileNumber: strings.TrimSpace(input.MobileNumber),
		PasswordHash: hash,
		Role:         role,
		Department:   strings.TrimSpace(input.Department),
		StartDate:    s.now(),
		EndDate:      input.EndDate,
	}
	if role == domain.RoleIntern && input.BatchID != nil && *input.BatchID != "" {
		user.UnapprovedBatchID = input.BatchID
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if s.verifies != nil {
		code, err := s.issueVerification(ctx, user)
		if err != nil {
			return nil, err
		}
		result.VerificationCode = code
	}
	return result, nil
}

// issueVerification stores a fresh hashed signup code and returns it in clear.
func (s *AuthService) issueVerification(ctx context.Context, user *domain.User) (string, error) {
	code, err := auth.NewVerificationCode()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(code, s.bcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	ttl := s.verifyTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	v := &domain.EmailVerification{UserID: user.ID, CodeHash: hash, ExpiresAt: s.now().Add(ttl)}
	if err := s.verifies.Upsert(ctx, v); err != nil {
		return "", apperrors.MapError(err)
	}
	if s.emailFrom != "" {
		s.logger.Debug("verification email",
			zap.String("from", s.emailFrom),
			zap.String("user_id", user.ID),
			zap.Time("expires_at", v.ExpiresAt))
	}
	return code, nil
}

// ResendVerification replaces the outstanding code of an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", notFoundOr(err, "user", nil)
	}
	if user.IsVerified {
		return "", apperrors.NewConflict("account already verified", map[string]any{"user_id": user.ID})
	}
	return s.issueVerification(ctx, user)
}

// VerifyEmail checks the signup code and marks the account verified. The code
// is single use.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*domain.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidationError("code required", map[string]any{"fields": []string{"code"}})
	}
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return notFoundOr(err, "user", nil)
		}
		if user.IsVerified {
			return apperrors.NewConflict("account already verified", map[string]any{"user_id": user.ID})
		}
		v, err := s.verifies.GetByUser(ctx, user.ID)
		if err != nil {
			if isNoRows(err) {
				return apperrors.NewValidationError("verification code expired or invalid", nil)
			}
			return apperrors.MapError(err)
		}
		if s.now().After(v.ExpiresAt) || auth.ComparePassword(v.CodeHash, strings.TrimSpace(code)) != nil {
			return apperrors.NewValidationError("verification code expired or invalid", nil)
		}
		user.IsVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(s.verifies.Delete(ctx, user.ID))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return user, nil
}

// AcceptUser lets an administrator verify an account without a code.
func (s *AuthService) AcceptUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if user.IsVerified {
		return user, nil
	}
	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UnverifiedInterns lists intern accounts still awaiting verification, oldest first.
func (s *AuthService) UnverifiedInterns(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUnverified(ctx, domain.RoleIntern)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// RequestPasswordReset persists a single-use reset token for the account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFoundOr(err, "user", nil)
	}

	value, err := auth.NewResetToken()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.emailFrom != "" {
		s.logger.Debug("password reset email",
			zap.String("from", s.emailFrom),
			zap.String("user_id", user.ID),
			zap.Time("expires_at", token.ExpiresAt))
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password is too short", map[string]any{"min_length": minPasswordLength})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		token, err := s.resets.GetByToken(ctx, tokenStr)
		if err != nil {
			return notFoundOr(err, "reset token", nil)
		}
		if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
			return apperrors.NewValidationError("reset token expired or already used", nil)
		}
		user, err := s.users.GetByIDForUpdate(ctx, token.UserID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": token.UserID})
		}
		user.PasswordHash = hash
		if err := s.users.Update(ctx, user); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
			if isNoRows(err) {
				return apperrors.NewValidationError("reset token expired or already used", nil)
			}
			return apperrors.MapError(err)
		}
		return nil
	})
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password is too short", map[string]any{"min_length": minPasswordLength})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// UpdateProfile changes allow-listed profile fields only.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"fields": []string{"name"}})
		}
		user.Name = name
	}
	if input.MobileNumber != nil {
		user.MobileNumber = strings.TrimSpace(*input.MobileNumber)
	}
	if input.LinkedInURL != nil {
		user.LinkedInURL = strings.TrimSpace(*input.LinkedInURL)
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = strings.TrimSpace(*input.ProfilePicture)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUser loads one account.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// ListUsers returns every account, or only those holding role when set.
func (s *AuthService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var (
		users []domain.User
		err   error
	)
	if role == "" {
		users, err = s.users.List(ctx)
	} else {
		if !role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
		}
		users, err = s.users.ListByRole(ctx, role)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
