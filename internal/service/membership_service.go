package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/repository"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// MembershipService keeps batch, team and HR association membership consistent.
type MembershipService struct {
	tx           repository.TxManager
	users        repository.UserRepository
	batches      repository.BatchRepository
	teams        repository.TeamRepository
	associations repository.AssociationRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	maxPerHR     int
	now          func() time.Time
}

// MembershipDependencies bundles repositories for the membership service.
type MembershipDependencies struct {
	TxManager       repository.TxManager
	UserRepo        repository.UserRepository
	BatchRepo       repository.BatchRepository
	TeamRepo        repository.TeamRepository
	AssociationRepo repository.AssociationRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	MaxInternsPerHR int
	Now             func() time.Time
}

// BatchInput describes a new batch.
type BatchInput struct {
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	InternIDs []string
	HRIDs     []string
}

// BatchUpdateInput lists batch fields an update may change. Nil means unchanged.
type BatchUpdateInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	InternIDs *[]string
	HRIDs     *[]string
}

// BatchDetail is a batch with its teams, task links and progress.
type BatchDetail struct {
	Batch     *domain.Batch
	Teams     []domain.Team
	TaskLinks []domain.TaskLink
	Progress  float64
}

// AssignmentStatus tells whether an intern is associated with an HR user.
type AssignmentStatus struct {
	InternID string
	Assigned bool
	HRID     *string
}

// NewMembershipService constructs the service.
func NewMembershipService(deps MembershipDependencies) *MembershipService {
	maxPerHR := deps.MaxInternsPerHR
	if maxPerHR <= 0 {
		maxPerHR = domain.MaxInternsPerHR
	}
	return &MembershipService{
		tx:           deps.TxManager,
		users:        deps.UserRepo,
		batches:      deps.BatchRepo,
		teams:        deps.TeamRepo,
		associations: deps.AssociationRepo,
		dispatcher:   deps.Dispatcher,
		logger:       loggerOrNop(deps.Logger),
		maxPerHR:     maxPerHR,
		now:          nowOrDefault(deps.Now),
	}
}

// CreateBatch creates a batch, moves the listed interns into it and links the
// listed HR users through their associations.
func (s *MembershipService) CreateBatch(ctx context.Context, input BatchInput) (*domain.Batch, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("batch name is required", map[string]any{"fields": []string{"name"}})
	}
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	batch := &domain.Batch{Name: name, StartDate: startDate, EndDate: input.EndDate}
	var assigned []string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.batches.Create(ctx, batch); err != nil {
			if isDuplicate(err) {
				return apperrors.NewConflict("batch with this name and end date already exists", map[string]any{"name": name})
			}
			return apperrors.MapError(err)
		}
		for _, internID := range dedupe(input.InternIDs) {
			if err := s.assignIntern(ctx, batch.ID, internID); err != nil {
				return err
			}
			assigned = append(assigned, internID)
		}
		if err := s.linkHR(ctx, batch.ID, input.HRIDs); err != nil {
			return err
		}
		fresh, err := s.batches.GetByID(ctx, batch.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		batch = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, internID := range assigned {
		s.publishAssigned(ctx, batch, internID)
	}
	return batch, nil
}

// UpdateBatch applies field changes and reconciles the intern and HR sets.
func (s *MembershipService) UpdateBatch(ctx context.Context, batchID string, input BatchUpdateInput) (*domain.Batch, error) {
	var (
		batch *domain.Batch
		added []string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		batch, err = s.batches.GetByIDForUpdate(ctx, batchID)
		if err != nil {
			return notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperrors.NewValidationError("batch name is required", map[string]any{"fields": []string{"name"}})
			}
			batch.Name = name
		}
		if input.StartDate != nil {
			batch.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			batch.EndDate = input.EndDate
		}
		if err := s.batches.Update(ctx, batch); err != nil {
			if isDuplicate(err) {
				return apperrors.NewConflict("batch with this name and end date already exists", map[string]any{"name": batch.Name})
			}
			return apperrors.MapError(err)
		}

		if input.InternIDs != nil {
			wanted := dedupe(*input.InternIDs)
			keep := make(map[string]struct{}, len(wanted))
			for _, id := range wanted {
				keep[id] = struct{}{}
			}
			for _, current := range batch.InternIDs {
				if _, ok := keep[current]; ok {
					continue
				}
				if err := s.detachIntern(ctx, batch.ID, current); err != nil {
					return err
				}
			}
			for _, id := range wanted {
				if batch.HasIntern(id) {
					continue
				}
				if err := s.assignIntern(ctx, batch.ID, id); err != nil {
					return err
				}
				added = append(added, id)
			}
		}
		if input.HRIDs != nil {
			if err := s.linkHR(ctx, batch.ID, *input.HRIDs); err != nil {
				return err
			}
		}

		batch, err = s.batches.GetByID(ctx, batchID)
		return apperrors.MapError(err)
	})
	if err != nil {
		return nil, err
	}

	for _, internID := range added {
		s.publishAssigned(ctx, batch, internID)
	}
	return batch, nil
}

// DeleteBatch removes a batch. Teams and task links go with it and interns are
// left without a batch.
func (s *MembershipService) DeleteBatch(ctx context.Context, batchID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		batch, err := s.batches.GetByIDForUpdate(ctx, batchID)
		if err != nil {
			return notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
		}
		for _, internID := range batch.InternIDs {
			if err := s.users.SetBatch(ctx, internID, nil); err != nil && !isNoRows(err) {
				return apperrors.MapError(err)
			}
		}
		return apperrors.MapError(s.batches.Delete(ctx, batchID))
	})
}

// GetBatch returns the batch with teams, task links and progress.
func (s *MembershipService) GetBatch(ctx context.Context, batchID string) (*BatchDetail, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
	}
	teams, err := s.teams.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	links, err := s.batches.ListTaskLinks(ctx, batchID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &BatchDetail{Batch: batch, Teams: teams, TaskLinks: links, Progress: batch.Progress()}, nil
}

// ListBatches returns batch summaries with member counts.
func (s *MembershipService) ListBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	summaries, err := s.batches.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summaries, nil
}

// AssignIntern moves an intern into batchID, removing it from any other batch
// and from that batch's teams. Repeating the call is a no-op.
func (s *MembershipService) AssignIntern(ctx context.Context, batchID, internID string) error {
	var batch *domain.Batch
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.assignIntern(ctx, batchID, internID); err != nil {
			return err
		}
		var err error
		batch, err = s.batches.GetByID(ctx, batchID)
		return apperrors.MapError(err)
	})
	if err != nil {
		return err
	}
	s.publishAssigned(ctx, batch, internID)
	return nil
}

func (s *MembershipService) assignIntern(ctx context.Context, batchID, internID string) error {
	if _, err := s.batches.GetByIDForUpdate(ctx, batchID); err != nil {
		return notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
	}
	user, err := s.users.GetByIDForUpdate(ctx, internID)
	if err != nil {
		return notFoundOr(err, "user", map[string]any{"user_id": internID})
	}
	if user.Role != domain.RoleIntern {
		return apperrors.NewValidationError("only interns can join a batch", map[string]any{"user_id": internID, "role": user.Role})
	}

	previous, err := s.batches.RemoveInternFromOtherBatches(ctx, internID, batchID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, old := range previous {
		if err := s.teams.RemoveUserFromBatchTeams(ctx, old, internID); err != nil {
			return apperrors.MapError(err)
		}
	}
	if err := s.batches.AddIntern(ctx, batchID, internID); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.users.SetBatch(ctx, internID, strPtr(batchID)))
}

func (s *MembershipService) detachIntern(ctx context.Context, batchID, internID string) error {
	if err := s.batches.RemoveIntern(ctx, batchID, internID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.teams.RemoveUserFromBatchTeams(ctx, batchID, internID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.SetBatch(ctx, internID, nil); err != nil && !isNoRows(err) {
		return apperrors.MapError(err)
	}
	return nil
}

// linkHR resolves each HR user to its association, creating one on demand, and
// makes that set the batch's HR list.
func (s *MembershipService) linkHR(ctx context.Context, batchID string, hrIDs []string) error {
	associationIDs := make([]string, 0, len(hrIDs))
	for _, hrID := range dedupe(hrIDs) {
		assoc, err := s.associationForHR(ctx, hrID)
		if err != nil {
			return err
		}
		associationIDs = append(associationIDs, assoc.ID)
	}
	return apperrors.MapError(s.batches.SetAssociations(ctx, batchID, associationIDs))
}

// CreateTeam creates a team whose members all belong to the batch.
func (s *MembershipService) CreateTeam(ctx context.Context, batchID, creatorID, name string, memberIDs []string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", map[string]any{"fields": []string{"name"}})
	}

	team := &domain.Team{BatchID: batchID, Name: name, CreatedBy: creatorID, MemberIDs: dedupe(memberIDs)}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		batch, err := s.batches.GetByIDForUpdate(ctx, batchID)
		if err != nil {
			return notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
		}
		if err := checkMembers(batch, team.MemberIDs); err != nil {
			return err
		}
		return apperrors.MapError(s.teams.Create(ctx, team))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// AddMembers adds batch interns to a team. Any outsider rejects the whole call.
func (s *MembershipService) AddMembers(ctx context.Context, teamID string, memberIDs []string) (*domain.Team, error) {
	memberIDs = dedupe(memberIDs)
	if len(memberIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one member is required", map[string]any{"fields": []string{"members"}})
	}

	var team *domain.Team
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, batch, err := s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if err := checkMembers(batch, memberIDs); err != nil {
			return err
		}
		if err := s.teams.AddMembers(ctx, current.ID, memberIDs); err != nil {
			return apperrors.MapError(err)
		}
		team, err = s.teams.GetByID(ctx, teamID)
		return apperrors.MapError(err)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// RemoveMember drops a user from a team. Removing a non-member succeeds.
func (s *MembershipService) RemoveMember(ctx context.Context, teamID, userID string) (*domain.Team, error) {
	var team *domain.Team
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.GetByIDForUpdate(ctx, teamID); err != nil {
			return notFoundOr(err, "team", map[string]any{"team_id": teamID})
		}
		if err := s.teams.RemoveMember(ctx, teamID, userID); err != nil {
			return apperrors.MapError(err)
		}
		var err error
		team, err = s.teams.GetByID(ctx, teamID)
		return apperrors.MapError(err)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// MoveMember removes a user from one team and adds it to another in a single
// transaction. The user must belong to the destination team's batch.
func (s *MembershipService) MoveMember(ctx context.Context, fromTeamID, toTeamID, userID string) error {
	if fromTeamID == toTeamID {
		return apperrors.NewValidationError("source and destination teams are the same", nil)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.GetByIDForUpdate(ctx, fromTeamID); err != nil {
			return notFoundOr(err, "team", map[string]any{"team_id": fromTeamID})
		}
		dest, batch, err := s.lockTeam(ctx, toTeamID)
		if err != nil {
			return err
		}
		if err := checkMembers(batch, []string{userID}); err != nil {
			return err
		}
		if err := s.teams.RemoveMember(ctx, fromTeamID, userID); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(s.teams.AddMembers(ctx, dest.ID, []string{userID}))
	})
}

// RenameTeam updates a team's name.
func (s *MembershipService) RenameTeam(ctx context.Context, teamID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", map[string]any{"fields": []string{"name"}})
	}
	if err := s.teams.Rename(ctx, teamID, name); err != nil {
		return nil, notFoundOr(err, "team", map[string]any{"team_id": teamID})
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, notFoundOr(err, "team", map[string]any{"team_id": teamID})
	}
	return team, nil
}

// DeleteTeam removes a team.
func (s *MembershipService) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return notFoundOr(err, "team", map[string]any{"team_id": teamID})
	}
	return nil
}

// ListTeams returns the teams of a batch in creation order.
func (s *MembershipService) ListTeams(ctx context.Context, batchID string) ([]domain.Team, error) {
	if _, err := s.batches.GetByID(ctx, batchID); err != nil {
		return nil, notFoundOr(err, "batch", map[string]any{"batch_id": batchID})
	}
	teams, err := s.teams.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

func (s *MembershipService) lockTeam(ctx context.Context, teamID string) (*domain.Team, *domain.Batch, error) {
	team, err := s.teams.GetByIDForUpdate(ctx, teamID)
	if err != nil {
		return nil, nil, notFoundOr(err, "team", map[string]any{"team_id": teamID})
	}
	batch, err := s.batches.GetByID(ctx, team.BatchID)
	if err != nil {
		return nil, nil, notFoundOr(err, "batch", map[string]any{"batch_id": team.BatchID})
	}
	return team, batch, nil
}

func checkMembers(batch *domain.Batch, memberIDs []string) error {
	var invalid []string
	for _, id := range memberIDs {
		if !batch.HasIntern(id) {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return apperrors.NewInvalidMembers(invalid)
	}
	return nil
}

// AssignInternToHR associates an intern with an HR user. An intern belongs to
// at most one association and an association holds a bounded number of interns.
func (s *MembershipService) AssignInternToHR(ctx context.Context, hrID, internID string) (*domain.HRAssociation, error) {
	var assoc *domain.HRAssociation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		intern, err := s.users.GetByID(ctx, internID)
		if err != nil {
			return notFoundOr(err, "intern", map[string]any{"intern_id": internID})
		}
		if intern.Role != domain.RoleIntern {
			return apperrors.NewValidationError("user is not an intern", map[string]any{"intern_id": internID})
		}
		existing, err := s.associations.FindByIntern(ctx, internID)
		switch {
		case err == nil:
			return apperrors.NewConflict("intern is already assigned to an HR", map[string]any{
				"intern_id": internID,
				"hr_id":     existing.HRID,
			})
		case !isNoRows(err):
			return apperrors.MapError(err)
		}

		assoc, err = s.associationForHR(ctx, hrID)
		if err != nil {
			return err
		}
		if len(assoc.InternIDs) >= s.maxPerHR {
			return apperrors.NewCapacityExceeded("HR already manages the maximum number of interns", map[string]any{
				"hr_id": hrID,
				"limit": s.maxPerHR,
			})
		}
		if err := s.associations.AddIntern(ctx, assoc.ID, internID); err != nil {
			if isDuplicate(err) {
				return apperrors.NewConflict("intern is already assigned to an HR", map[string]any{"intern_id": internID})
			}
			return apperrors.MapError(err)
		}
		assoc.InternIDs = append(assoc.InternIDs, internID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventInternAssignedHR, assoc.ID, strPtr(hrID), s.now(),
		events.InternAssignedHRPayload{InternID: internID, HRID: hrID}))
	return assoc, nil
}

// UnassignInternFromHR removes the intern from whichever association holds it.
func (s *MembershipService) UnassignInternFromHR(ctx context.Context, internID string) error {
	if _, err := s.associations.FindByIntern(ctx, internID); err != nil {
		return notFoundOr(err, "hr association", map[string]any{"intern_id": internID})
	}
	return apperrors.MapError(s.associations.RemoveIntern(ctx, internID))
}

// associationForHR returns the HR user's association, creating it when the
// user has none yet. The user must hold an HR role.
func (s *MembershipService) associationForHR(ctx context.Context, hrID string) (*domain.HRAssociation, error) {
	assoc, err := s.associations.GetByHRForUpdate(ctx, hrID)
	if err == nil {
		return assoc, nil
	}
	if !isNoRows(err) {
		return nil, apperrors.MapError(err)
	}

	hr, err := s.users.GetByID(ctx, hrID)
	if err != nil {
		return nil, notFoundOr(err, "hr", map[string]any{"hr_id": hrID})
	}
	if !hr.Role.IsHR() {
		return nil, apperrors.NewNotFound("hr", map[string]any{"hr_id": hrID})
	}
	assoc = &domain.HRAssociation{HRID: hrID}
	if err := s.associations.Create(ctx, assoc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return assoc, nil
}

// InternsByHR returns the interns associated with hrID.
func (s *MembershipService) InternsByHR(ctx context.Context, hrID string) ([]domain.User, error) {
	assoc, err := s.associations.GetByHR(ctx, hrID)
	if err != nil {
		if isNoRows(err) {
			return []domain.User{}, nil
		}
		return nil, apperrors.MapError(err)
	}
	users, err := s.users.ListByIDs(ctx, assoc.InternIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// IsInternAssigned reports whether the intern has an HR, and which one.
func (s *MembershipService) IsInternAssigned(ctx context.Context, internID string) (AssignmentStatus, error) {
	status := AssignmentStatus{InternID: internID}
	assoc, err := s.associations.FindByIntern(ctx, internID)
	if err != nil {
		if isNoRows(err) {
			return status, nil
		}
		return status, apperrors.MapError(err)
	}
	status.Assigned = true
	status.HRID = strPtr(assoc.HRID)
	return status, nil
}

// AssignmentStatuses reports association membership for several interns.
func (s *MembershipService) AssignmentStatuses(ctx context.Context, internIDs []string) (map[string]bool, error) {
	internIDs = dedupe(internIDs)
	assigned, err := s.associations.AssignedInterns(ctx, internIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make(map[string]bool, len(internIDs))
	for _, id := range internIDs {
		result[id] = false
	}
	for _, id := range assigned {
		result[id] = true
	}
	return result, nil
}

// PendingApprovals lists users waiting for a batch join request decision.
func (s *MembershipService) PendingApprovals(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListPendingApprovals(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ApproveBatchRequest moves the user into the batch they asked to join and
// marks the account verified.
func (s *MembershipService) ApproveBatchRequest(ctx context.Context, actorID, userID string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.pendingUser(ctx, userID)
		if err != nil {
			return err
		}
		batchID := *user.UnapprovedBatchID
		if err := s.assignIntern(ctx, batchID, userID); err != nil {
			return err
		}
		user.BatchID = strPtr(batchID)
		user.UnapprovedBatchID = nil
		user.BatchApproved = true
		if !user.IsVerified {
			user.IsVerified = true
			return apperrors.MapError(s.users.Update(ctx, user))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventBatchApproval, userID, strPtr(actorID), s.now(),
		events.BatchApprovalPayload{UserID: userID, Email: user.Email, Approved: true}))
	return user, nil
}

// RejectBatchRequest deletes the account of a user whose join request is refused.
func (s *MembershipService) RejectBatchRequest(ctx context.Context, actorID, userID string) error {
	var email string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.pendingUser(ctx, userID)
		if err != nil {
			return err
		}
		email = user.Email
		return s.removeUser(ctx, user)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.dispatcher, events.New(events.EventBatchApproval, userID, strPtr(actorID), s.now(),
		events.BatchApprovalPayload{UserID: userID, Email: email, Approved: false}))
	return nil
}

func (s *MembershipService) pendingUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if user.UnapprovedBatchID == nil || user.BatchApproved {
		return nil, apperrors.NewValidationError("user has no pending batch request", map[string]any{"user_id": userID})
	}
	return user, nil
}

// RemoveUser deletes an account after detaching it from batches, teams and HR
// associations.
func (s *MembershipService) RemoveUser(ctx context.Context, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": userID})
		}
		return s.removeUser(ctx, user)
	})
}

func (s *MembershipService) removeUser(ctx context.Context, user *domain.User) error {
	if err := s.releaseTaskCounters(ctx, user.ID); err != nil {
		return err
	}
	if _, err := s.batches.RemoveInternFromOtherBatches(ctx, user.ID, ""); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.teams.RemoveUserFromAllTeams(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.associations.RemoveIntern(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	if user.Role.IsHR() {
		if err := s.associations.DeleteByHR(ctx, user.ID); err != nil {
			return apperrors.MapError(err)
		}
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("user removed", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// releaseTaskCounters takes the user's tasks out of their batches' counters.
// The tasks and links themselves go with the user row.
func (s *MembershipService) releaseTaskCounters(ctx context.Context, userID string) error {
	links, err := s.batches.ListTaskLinksByAssignee(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	type counters struct{ all, completed int }
	var order []string
	perBatch := map[string]*counters{}
	for _, link := range links {
		c, ok := perBatch[link.BatchID]
		if !ok {
			c = &counters{}
			perBatch[link.BatchID] = c
			order = append(order, link.BatchID)
		}
		c.all++
		if link.Status == domain.TaskStatusCompleted {
			c.completed++
		}
	}
	for _, batchID := range order {
		c := perBatch[batchID]
		if err := s.batches.AdjustCounters(ctx, batchID, -c.all, -c.completed); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}

func (s *MembershipService) publishAssigned(ctx context.Context, batch *domain.Batch, internID string) {
	if batch == nil {
		return
	}
	publish(ctx, s.dispatcher, events.New(events.EventInternAssignedBatch, batch.ID, nil, s.now(),
		events.InternAssignedBatchPayload{InternID: internID, BatchName: batch.Name}))
}
