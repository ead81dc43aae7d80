package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// MembershipHandler serves batches, teams, HR associations and batch approvals.
type MembershipHandler struct {
	service *service.MembershipService
}

// NewMembershipHandler constructs handler.
func NewMembershipHandler(membership *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{service: membership}
}

// CreateBatch POST /batches.
func (h *MembershipHandler) CreateBatch(c *fiber.Ctx) error {
	var req dto.CreateBatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("interns", req.InternIDs...); err != nil {
		return err
	}
	if err := checkIDs("hr", req.HRIDs...); err != nil {
		return err
	}
	input := service.BatchInput{
		Name:      req.Name,
		EndDate:   req.EndDate,
		InternIDs: req.InternIDs,
		HRIDs:     req.HRIDs,
	}
	if req.StartDate != nil {
		input.StartDate = *req.StartDate
	}
	batch, err := h.service.CreateBatch(c.UserContext(), input)
	if err != nil {
		return err
	}
	return created(c, batchResponse(batch))
}

// ListBatches GET /batches.
func (h *MembershipHandler) ListBatches(c *fiber.Ctx) error {
	summaries, err := h.service.ListBatches(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.BatchSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, dto.BatchSummaryResponse{
			ID:           s.ID,
			Name:         s.Name,
			StartDate:    s.StartDate,
			EndDate:      s.EndDate,
			TotalInterns: s.TotalInterns,
			TotalHR:      s.TotalHR,
		})
	}
	return data(c, items)
}

// GetBatch GET /batches/:id.
func (h *MembershipHandler) GetBatch(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.GetBatch(c.UserContext(), id)
	if err != nil {
		return err
	}
	resp := dto.BatchDetailResponse{
		BatchResponse: batchResponse(detail.Batch),
		Teams:         make([]dto.TeamResponse, 0, len(detail.Teams)),
		TaskLinks:     make([]dto.TaskLinkResponse, 0, len(detail.TaskLinks)),
	}
	for i := range detail.Teams {
		resp.Teams = append(resp.Teams, teamResponse(&detail.Teams[i]))
	}
	for _, link := range detail.TaskLinks {
		resp.TaskLinks = append(resp.TaskLinks, dto.TaskLinkResponse{
			TaskID:     link.TaskID,
			Status:     string(link.Status),
			AssignedTo: link.AssignedTo,
		})
	}
	return data(c, resp)
}

// UpdateBatch PATCH /batches/:id.
func (h *MembershipHandler) UpdateBatch(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateBatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.InternIDs != nil {
		if err := checkIDs("interns", *req.InternIDs...); err != nil {
			return err
		}
	}
	if req.HRIDs != nil {
		if err := checkIDs("hr", *req.HRIDs...); err != nil {
			return err
		}
	}
	batch, err := h.service.UpdateBatch(c.UserContext(), id, service.BatchUpdateInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		InternIDs: req.InternIDs,
		HRIDs:     req.HRIDs,
	})
	if err != nil {
		return err
	}
	return data(c, batchResponse(batch))
}

// DeleteBatch DELETE /batches/:id.
func (h *MembershipHandler) DeleteBatch(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteBatch(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignIntern POST /batches/:id/interns.
func (h *MembershipHandler) AssignIntern(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignInternRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("intern_id", req.InternID); err != nil {
		return err
	}
	if req.InternID == "" {
		return apperrors.NewValidationError("intern_id required", nil)
	}
	if err := h.service.AssignIntern(c.UserContext(), id, req.InternID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PendingApprovals GET /batches/approvals.
func (h *MembershipHandler) PendingApprovals(c *fiber.Ctx) error {
	users, err := h.service.PendingApprovals(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return data(c, items)
}

// ApproveBatchRequest POST /batches/approvals/:userId/approve.
func (h *MembershipHandler) ApproveBatchRequest(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.service.ApproveBatchRequest(c.UserContext(), p.UserID(), userID)
	if err != nil {
		return err
	}
	return data(c, userResponse(user))
}

// RejectBatchRequest POST /batches/approvals/:userId/reject.
func (h *MembershipHandler) RejectBatchRequest(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.RejectBatchRequest(c.UserContext(), p.UserID(), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTeam POST /batches/:id/teams.
func (h *MembershipHandler) CreateTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("members", req.MemberIDs...); err != nil {
		return err
	}
	team, err := h.service.CreateTeam(c.UserContext(), id, p.UserID(), req.Name, req.MemberIDs)
	if err != nil {
		return err
	}
	return created(c, teamResponse(team))
}

// ListTeams GET /batches/:id/teams.
func (h *MembershipHandler) ListTeams(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	teams, err := h.service.ListTeams(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return data(c, items)
}

// RenameTeam PATCH /teams/:id.
func (h *MembershipHandler) RenameTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RenameTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.service.RenameTeam(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}
	return data(c, teamResponse(team))
}

// DeleteTeam DELETE /teams/:id.
func (h *MembershipHandler) DeleteTeam(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTeam(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddMembers POST /teams/:id/members.
func (h *MembershipHandler) AddMembers(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TeamMembersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("members", req.MemberIDs...); err != nil {
		return err
	}
	team, err := h.service.AddMembers(c.UserContext(), id, req.MemberIDs)
	if err != nil {
		return err
	}
	return data(c, teamResponse(team))
}

// RemoveMember DELETE /teams/:id/members/:userId.
func (h *MembershipHandler) RemoveMember(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	team, err := h.service.RemoveMember(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return data(c, teamResponse(team))
}

// MoveMember POST /teams/move.
func (h *MembershipHandler) MoveMember(c *fiber.Ctx) error {
	var req dto.MoveMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("move", req.FromTeamID, req.ToTeamID, req.UserID); err != nil {
		return err
	}
	if req.FromTeamID == "" || req.ToTeamID == "" || req.UserID == "" {
		return apperrors.NewValidationError("from_team_id, to_team_id, user_id required", nil)
	}
	if err := h.service.MoveMember(c.UserContext(), req.FromTeamID, req.ToTeamID, req.UserID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignHR POST /hr/assign. HR callers assign to themselves unless hr_id is set.
func (h *MembershipHandler) AssignHR(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.AssignHRRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.HRID == "" && p.Role.IsHR() {
		req.HRID = p.UserID()
	}
	if err := checkIDs("assignment", req.HRID, req.InternID); err != nil {
		return err
	}
	if req.HRID == "" || req.InternID == "" {
		return apperrors.NewValidationError("hr_id and intern_id required", nil)
	}
	assoc, err := h.service.AssignInternToHR(c.UserContext(), req.HRID, req.InternID)
	if err != nil {
		return err
	}
	return data(c, dto.AssociationResponse{ID: assoc.ID, HRID: assoc.HRID, InternIDs: assoc.InternIDs})
}

// UnassignHR DELETE /hr/interns/:internId.
func (h *MembershipHandler) UnassignHR(c *fiber.Ctx) error {
	internID, err := pathID(c, "internId")
	if err != nil {
		return err
	}
	if err := h.service.UnassignInternFromHR(c.UserContext(), internID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// InternsByHR GET /hr/:hrId/interns.
func (h *MembershipHandler) InternsByHR(c *fiber.Ctx) error {
	hrID, err := pathID(c, "hrId")
	if err != nil {
		return err
	}
	users, err := h.service.InternsByHR(c.UserContext(), hrID)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return data(c, items)
}

// AssignmentStatus GET /hr/interns/:internId/status.
func (h *MembershipHandler) AssignmentStatus(c *fiber.Ctx) error {
	internID, err := pathID(c, "internId")
	if err != nil {
		return err
	}
	status, err := h.service.IsInternAssigned(c.UserContext(), internID)
	if err != nil {
		return err
	}
	return data(c, dto.AssignmentStatusResponse{InternID: status.InternID, Assigned: status.Assigned, HRID: status.HRID})
}

// AssignmentStatuses POST /hr/status.
func (h *MembershipHandler) AssignmentStatuses(c *fiber.Ctx) error {
	var req dto.AssignmentStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("intern_ids", req.InternIDs...); err != nil {
		return err
	}
	statuses, err := h.service.AssignmentStatuses(c.UserContext(), req.InternIDs)
	if err != nil {
		return err
	}
	return data(c, statuses)
}

func batchResponse(b *domain.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:             b.ID,
		Name:           b.Name,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		InternIDs:      nonNil(b.InternIDs),
		AssociationIDs: nonNil(b.AssociationIDs),
		AllTasks:       b.AllTasks,
		CompletedTasks: b.CompletedTasks,
		Progress:       b.Progress(),
	}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:        t.ID,
		BatchID:   t.BatchID,
		Name:      t.Name,
		MemberIDs: nonNil(t.MemberIDs),
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
