package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// UsersHandler serves account, credential and profile endpoints.
type UsersHandler struct {
	auth        *service.AuthService
	membership  *service.MembershipService
	tasks       *service.TaskService
	exposeReset bool
}

// NewUsersHandler constructs handler. When exposeReset is set reset tokens and
// verification codes are returned in the response body instead of only being
// mailed.
func NewUsersHandler(authService *service.AuthService, membership *service.MembershipService, tasks *service.TaskService, exposeReset bool) *UsersHandler {
	return &UsersHandler{auth: authService, membership: membership, tasks: tasks, exposeReset: exposeReset}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.BatchID != nil {
		if err := checkIDs("batch_id", *req.BatchID); err != nil {
			return err
		}
	}
	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		MobileNumber: req.MobileNumber,
		Department:   req.Department,
		Role:         domain.Role(req.Role),
		BatchID:      req.BatchID,
		EndDate:      req.EndDate,
	})
	if err != nil {
		return err
	}
	resp := fiber.Map{
		"user": userResponse(result.User),
		"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}
	if h.exposeReset && result.VerificationCode != "" {
		resp["verification_code"] = result.VerificationCode
	}
	return created(c, resp)
}

// VerifyEmail POST /auth/verify.
func (h *UsersHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	user, err := h.auth.VerifyEmail(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return data(c, userResponse(user))
}

// ResendVerification POST /auth/verify/resend.
func (h *UsersHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	code, err := h.auth.ResendVerification(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	resp := fiber.Map{}
	if h.exposeReset {
		resp["verification_code"] = code
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": resp})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{
		"user": userResponse(result.User),
		"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *UsersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	resp := fiber.Map{"expires_at": token.ExpiresAt}
	if h.exposeReset {
		resp["token"] = token.Token
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": resp})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *UsersHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePassword POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), p.UserID(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return data(c, userResponse(p.User))
}

// UpdateMe PATCH /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateProfile(c.UserContext(), p.UserID(), service.ProfileInput{
		Name:           req.Name,
		MobileNumber:   req.MobileNumber,
		LinkedInURL:    req.LinkedInURL,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return err
	}
	return data(c, userResponse(user))
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), domain.Role(c.Query("role")))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return data(c, items)
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.auth.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, userResponse(user))
}

// UnverifiedInterns GET /users/requests.
func (h *UsersHandler) UnverifiedInterns(c *fiber.Ctx) error {
	users, err := h.auth.UnverifiedInterns(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return data(c, items)
}

// AcceptUser POST /users/:id/accept.
func (h *UsersHandler) AcceptUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.auth.AcceptUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, userResponse(user))
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.membership.RemoveUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Leaderboard GET /leaderboard.
func (h *UsersHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.tasks.Leaderboard(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	items := make([]dto.LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		items = append(items, dto.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      e.UserID,
			Name:        e.Name,
			Email:       e.Email,
			Department:  e.Department,
			TotalPoints: e.TotalPoints,
		})
	}
	return data(c, items)
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		MobileNumber:      u.MobileNumber,
		Role:              string(u.Role),
		Department:        u.Department,
		ProfilePicture:    u.ProfilePicture,
		LinkedInURL:       u.LinkedInURL,
		TotalPoints:       u.TotalPoints,
		BatchID:           u.BatchID,
		UnapprovedBatchID: u.UnapprovedBatchID,
		BatchApproved:     u.BatchApproved,
		IsVerified:        u.IsVerified,
		StartDate:         u.StartDate,
		EndDate:           u.EndDate,
		CreatedAt:         u.CreatedAt,
	}
}
