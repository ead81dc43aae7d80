package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/sanitize"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// LeaveService handles leave applications and their review by staff.
type LeaveService struct {
	tx         repository.TxManager
	leaves     repository.LeaveRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// LeaveDependencies wires the leave service.
type LeaveDependencies struct {
	TxManager  repository.TxManager
	LeaveRepo  repository.LeaveRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// LeaveInput is a leave application. Dates are truncated to UTC days.
type LeaveInput struct {
	Type      domain.LeaveType
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// NewLeaveService constructs the service.
func NewLeaveService(deps LeaveDependencies) *LeaveService {
	return &LeaveService{
		tx:         deps.TxManager,
		leaves:     deps.LeaveRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
		now:        nowOrDefault(deps.Now),
	}
}

// Apply files a pending leave request for userID. A request may not overlap
// another pending or approved request of the same user.
func (s *LeaveService) Apply(ctx context.Context, userID string, input LeaveInput) (*domain.LeaveRequest, error) {
	reason := sanitize.PlainText(input.Reason)
	var missing []string
	if input.Type == "" {
		missing = append(missing, "leave_type")
	}
	if input.StartDate.IsZero() {
		missing = append(missing, "start_date")
	}
	if input.EndDate.IsZero() {
		missing = append(missing, "end_date")
	}
	if reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("invalid leave type", map[string]any{"leave_type": input.Type})
	}
	start, end := Today(input.StartDate), Today(input.EndDate)
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end date is before start date", map[string]any{"fields": []string{"end_date"}})
	}

	leave := &domain.LeaveRequest{
		UserID:    userID,
		Type:      input.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Status:    domain.LeavePending,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		overlap, err := s.leaves.HasOverlap(ctx, userID, start, end)
		if err != nil {
			return apperrors.MapError(err)
		}
		if overlap {
			return apperrors.NewConflict("leave overlaps an existing request", map[string]any{
				"start_date": start,
				"end_date":   end,
			})
		}
		return apperrors.MapError(s.leaves.Create(ctx, leave))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("leave requested", zap.String("leave_id", leave.ID), zap.String("user_id", userID), zap.Int("days", leave.Days()))
	return leave, nil
}

// Mine lists the user's own requests, newest first.
func (s *LeaveService) Mine(ctx context.Context, userID string) ([]domain.LeaveRequest, error) {
	leaves, err := s.leaves.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leaves, nil
}

// List returns every request with the applicant's name and email. An empty
// status lists all.
func (s *LeaveService) List(ctx context.Context, status domain.LeaveStatus) ([]domain.LeaveRequest, error) {
	var filter *domain.LeaveStatus
	if status != "" {
		if !validLeaveStatus(status) {
			return nil, apperrors.NewInvalidStatus(string(status), leaveStatuses())
		}
		filter = &status
	}
	leaves, err := s.leaves.ListAll(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leaves, nil
}

// Decide approves or rejects a request and notifies the applicant. Repeating
// the current decision is a conflict.
func (s *LeaveService) Decide(ctx context.Context, actor Actor, leaveID string, status domain.LeaveStatus) (*domain.LeaveRequest, error) {
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		return nil, apperrors.NewInvalidStatus(string(status), []string{string(domain.LeaveApproved), string(domain.LeaveRejected)})
	}

	var (
		leave   *domain.LeaveRequest
		decider *domain.User
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		leave, err = s.leaves.GetByIDForUpdate(ctx, leaveID)
		if err != nil {
			return notFoundOr(err, "leave", map[string]any{"leave_id": leaveID})
		}
		if leave.Status == status {
			return apperrors.NewConflict("leave already "+string(status), map[string]any{"leave_id": leaveID})
		}
		if status == domain.LeaveApproved && leave.Status == domain.LeaveRejected {
			overlap, err := s.overlapsOther(ctx, leave)
			if err != nil {
				return err
			}
			if overlap {
				return apperrors.NewConflict("leave overlaps an existing request", map[string]any{"leave_id": leaveID})
			}
		}
		decider, err = s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": actor.ID})
		}
		if err := s.leaves.Decide(ctx, leaveID, status, actor.ID); err != nil {
			return notFoundOr(err, "leave", map[string]any{"leave_id": leaveID})
		}
		now := s.now()
		leave.Status = status
		leave.DecidedBy = strPtr(actor.ID)
		leave.DecidedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave decided", zap.String("leave_id", leaveID), zap.String("status", string(status)))
	publish(ctx, s.dispatcher, events.New(events.EventLeaveDecided, leave.ID, strPtr(actor.ID), s.now(), events.LeaveDecidedPayload{
		UserID:    leave.UserID,
		LeaveID:   leave.ID,
		Status:    status,
		DecidedBy: decider.Name,
	}))
	return leave, nil
}

// overlapsOther checks a rejected request against the user's other live requests.
func (s *LeaveService) overlapsOther(ctx context.Context, leave *domain.LeaveRequest) (bool, error) {
	others, err := s.leaves.ListByUser(ctx, leave.UserID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for _, other := range others {
		if other.ID != leave.ID && other.Status != domain.LeaveRejected && other.Overlaps(leave.StartDate, leave.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

// UsersOnLeave returns the ids of users with approved leave touching from..to.
func (s *LeaveService) UsersOnLeave(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	leaves, err := s.leaves.ListApprovedOverlapping(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		out[l.UserID] = true
	}
	return out, nil
}

func validLeaveStatus(status domain.LeaveStatus) bool {
	switch status {
	case domain.LeavePending, domain.LeaveApproved, domain.LeaveRejected:
		return true
	}
	return false
}

func leaveStatuses() []string {
	return []string{string(domain.LeavePending), string(domain.LeaveApproved), string(domain.LeaveRejected)}
}
