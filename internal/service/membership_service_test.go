package service

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/codebyviral/irms-backend/internal/domain"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func TestReassignInternPurgesOldTeams(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	intern := h.user(t, "Ina", domain.RoleIntern)
	peer := h.user(t, "Pia", domain.RoleIntern)
	batchA := h.store.SeedBatch(t, "Alpha")
	batchB := h.store.SeedBatch(t, "Beta")

	mustNoErr(t, h.membership.AssignIntern(testContext(t), batchA.ID, intern.ID))
	mustNoErr(t, h.membership.AssignIntern(testContext(t), batchA.ID, peer.ID))
	team, err := h.membership.CreateTeam(testContext(t), batchA.ID, admin.ID, "Red", []string{intern.ID, peer.ID})
	mustNoErr(t, err)

	for i := 0; i < 2; i++ {
		mustNoErr(t, h.membership.AssignIntern(testContext(t), batchB.ID, intern.ID))
	}

	a, _ := h.store.Batches().GetByID(testContext(t), batchA.ID)
	b, _ := h.store.Batches().GetByID(testContext(t), batchB.ID)
	if a.HasIntern(intern.ID) {
		t.Fatalf("intern still listed in old batch")
	}
	if !b.HasIntern(intern.ID) || len(b.InternIDs) != 1 {
		t.Fatalf("expected intern once in new batch, got %v", b.InternIDs)
	}
	red, _ := h.store.Teams().GetByID(testContext(t), team.ID)
	if red.HasMember(intern.ID) || !red.HasMember(peer.ID) {
		t.Fatalf("expected only the moved intern purged, got %v", red.MemberIDs)
	}
	if got := h.reload(t, intern.ID); got.BatchID == nil || *got.BatchID != batchB.ID {
		t.Fatalf("expected user batch %s, got %v", batchB.ID, got.BatchID)
	}
}

func TestAssignInternRejectsNonInterns(t *testing.T) {
	h := newHarness(t)
	hr := h.user(t, "Hank", domain.RoleHR)
	batch := h.store.SeedBatch(t, "Alpha")

	assertCode(t, h.membership.AssignIntern(testContext(t), batch.ID, hr.ID), apperrors.CodeValidation)
	assertCode(t, h.membership.AssignIntern(testContext(t), "missing", hr.ID), apperrors.CodeNotFound)
}

func TestTeamMembersMustBelongToBatch(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	inside := h.user(t, "Ina", domain.RoleIntern)
	outside := h.user(t, "Otto", domain.RoleIntern)
	batch := h.store.SeedBatch(t, "Alpha")
	mustNoErr(t, h.membership.AssignIntern(testContext(t), batch.ID, inside.ID))

	_, err := h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Red", []string{inside.ID, outside.ID})
	assertCode(t, err, apperrors.CodeInvalidMember)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if invalid, _ := domainErr.Details["invalid_members"].([]string); !slices.Equal(invalid, []string{outside.ID}) {
		t.Fatalf("expected %s reported, got %v", outside.ID, domainErr.Details)
	}
	teams, _ := h.membership.ListTeams(testContext(t), batch.ID)
	if len(teams) != 0 {
		t.Fatalf("rejected team must not be stored")
	}

	team, err := h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Red", nil)
	mustNoErr(t, err)
	_, err = h.membership.AddMembers(testContext(t), team.ID, []string{inside.ID, outside.ID})
	assertCode(t, err, apperrors.CodeInvalidMember)
	stored, _ := h.store.Teams().GetByID(testContext(t), team.ID)
	if len(stored.MemberIDs) != 0 {
		t.Fatalf("partial add must not happen, got %v", stored.MemberIDs)
	}

	updated, err := h.membership.AddMembers(testContext(t), team.ID, []string{inside.ID})
	mustNoErr(t, err)
	if !updated.HasMember(inside.ID) {
		t.Fatalf("expected member added")
	}
}

func TestMoveAndRemoveMember(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	intern := h.user(t, "Ina", domain.RoleIntern)
	batch := h.store.SeedBatch(t, "Alpha")
	mustNoErr(t, h.membership.AssignIntern(testContext(t), batch.ID, intern.ID))
	red, err := h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Red", []string{intern.ID})
	mustNoErr(t, err)
	blue, err := h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Blue", nil)
	mustNoErr(t, err)

	assertCode(t, h.membership.MoveMember(testContext(t), red.ID, red.ID, intern.ID), apperrors.CodeValidation)
	mustNoErr(t, h.membership.MoveMember(testContext(t), red.ID, blue.ID, intern.ID))

	gotRed, _ := h.store.Teams().GetByID(testContext(t), red.ID)
	gotBlue, _ := h.store.Teams().GetByID(testContext(t), blue.ID)
	if gotRed.HasMember(intern.ID) || !gotBlue.HasMember(intern.ID) {
		t.Fatalf("move failed: red=%v blue=%v", gotRed.MemberIDs, gotBlue.MemberIDs)
	}

	for i := 0; i < 2; i++ {
		team, err := h.membership.RemoveMember(testContext(t), blue.ID, intern.ID)
		mustNoErr(t, err)
		if team.HasMember(intern.ID) {
			t.Fatalf("member not removed")
		}
	}
	_, err = h.membership.RemoveMember(testContext(t), "missing", intern.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreateBatchRejectsDuplicates(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)

	batch, err := h.membership.CreateBatch(testContext(t), BatchInput{
		Name:      "Summer",
		InternIDs: []string{intern.ID},
		HRIDs:     []string{hr.ID},
	})
	mustNoErr(t, err)
	if !batch.HasIntern(intern.ID) || len(batch.AssociationIDs) != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}

	_, err = h.membership.CreateBatch(testContext(t), BatchInput{Name: "Summer"})
	assertCode(t, err, apperrors.CodeConflict)

	summaries, err := h.membership.ListBatches(testContext(t))
	mustNoErr(t, err)
	if len(summaries) != 1 || summaries[0].TotalInterns != 1 || summaries[0].TotalHR != 1 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestUpdateBatchDetachesDroppedInterns(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	keep := h.user(t, "Kim", domain.RoleIntern)
	drop := h.user(t, "Dan", domain.RoleIntern)
	batch, err := h.membership.CreateBatch(testContext(t), BatchInput{Name: "Fall", InternIDs: []string{keep.ID, drop.ID}})
	mustNoErr(t, err)
	_, err = h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Red", []string{keep.ID, drop.ID})
	mustNoErr(t, err)

	interns := []string{keep.ID}
	updated, err := h.membership.UpdateBatch(testContext(t), batch.ID, BatchUpdateInput{InternIDs: &interns})
	mustNoErr(t, err)
	if updated.HasIntern(drop.ID) || !updated.HasIntern(keep.ID) {
		t.Fatalf("unexpected interns %v", updated.InternIDs)
	}
	if h.reload(t, drop.ID).BatchID != nil {
		t.Fatalf("dropped intern must lose batch")
	}
	teams, _ := h.membership.ListTeams(testContext(t), batch.ID)
	if teams[0].HasMember(drop.ID) {
		t.Fatalf("dropped intern must leave batch teams")
	}

	mustNoErr(t, h.membership.DeleteBatch(testContext(t), batch.ID))
	if h.reload(t, keep.ID).BatchID != nil {
		t.Fatalf("intern must lose batch on delete")
	}
	_, err = h.membership.GetBatch(testContext(t), batch.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestAssignInternToHR(t *testing.T) {
	h := newHarness(t)
	hr := h.user(t, "Hank", domain.RoleHR)
	other := h.user(t, "Hope", domain.RoleHRHead)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	intern := h.user(t, "Ina", domain.RoleIntern)

	assoc, err := h.membership.AssignInternToHR(testContext(t), hr.ID, intern.ID)
	mustNoErr(t, err)
	if assoc.HRID != hr.ID || !slices.Contains(assoc.InternIDs, intern.ID) {
		t.Fatalf("unexpected association %+v", assoc)
	}

	_, err = h.membership.AssignInternToHR(testContext(t), other.ID, intern.ID)
	assertCode(t, err, apperrors.CodeConflict)

	fresh := h.user(t, "Fay", domain.RoleIntern)
	_, err = h.membership.AssignInternToHR(testContext(t), "missing", fresh.ID)
	assertCode(t, err, apperrors.CodeNotFound)
	_, err = h.membership.AssignInternToHR(testContext(t), admin.ID, fresh.ID)
	assertCode(t, err, apperrors.CodeNotFound)
	_, err = h.membership.AssignInternToHR(testContext(t), hr.ID, "missing")
	assertCode(t, err, apperrors.CodeNotFound)

	status, err := h.membership.IsInternAssigned(testContext(t), intern.ID)
	mustNoErr(t, err)
	if !status.Assigned || *status.HRID != hr.ID {
		t.Fatalf("unexpected status %+v", status)
	}
	statuses, err := h.membership.AssignmentStatuses(testContext(t), []string{intern.ID, fresh.ID, intern.ID})
	mustNoErr(t, err)
	if len(statuses) != 2 || !statuses[intern.ID] || statuses[fresh.ID] {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	mustNoErr(t, h.membership.UnassignInternFromHR(testContext(t), intern.ID))
	assertCode(t, h.membership.UnassignInternFromHR(testContext(t), intern.ID), apperrors.CodeNotFound)
	interns, err := h.membership.InternsByHR(testContext(t), hr.ID)
	mustNoErr(t, err)
	if len(interns) != 0 {
		t.Fatalf("expected no interns, got %d", len(interns))
	}
}

func TestAssignInternToHRCapacity(t *testing.T) {
	h := newHarness(t)
	hr := h.user(t, "Hank", domain.RoleHR)

	for i := 0; i < domain.MaxInternsPerHR; i++ {
		intern := h.user(t, fmt.Sprintf("Intern %d", i), domain.RoleIntern)
		_, err := h.membership.AssignInternToHR(testContext(t), hr.ID, intern.ID)
		mustNoErr(t, err)
	}
	overflow := h.user(t, "Intern overflow", domain.RoleIntern)
	_, err := h.membership.AssignInternToHR(testContext(t), hr.ID, overflow.ID)
	assertCode(t, err, apperrors.CodeCapacityExceeded)

	interns, err := h.membership.InternsByHR(testContext(t), hr.ID)
	mustNoErr(t, err)
	if len(interns) != domain.MaxInternsPerHR {
		t.Fatalf("expected %d interns, got %d", domain.MaxInternsPerHR, len(interns))
	}
}

func TestBatchRequestApproval(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	batch := h.store.SeedBatch(t, "Alpha")

	register := func(name, email string) *domain.User {
		res, err := h.auth.Register(testContext(t), RegisterInput{
			Name:     name,
			Email:    email,
			Password: "secret1",
			BatchID:  &batch.ID,
		})
		mustNoErr(t, err)
		return res.User
	}
	approved := register("Ann", "ann@example.com")
	rejected := register("Rex", "rex@example.com")

	pending, err := h.membership.PendingApprovals(testContext(t))
	mustNoErr(t, err)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending users, got %d", len(pending))
	}

	user, err := h.membership.ApproveBatchRequest(testContext(t), admin.ID, approved.ID)
	mustNoErr(t, err)
	if !user.BatchApproved || user.BatchID == nil || *user.BatchID != batch.ID {
		t.Fatalf("unexpected approved user %+v", user)
	}
	if stored := h.reload(t, approved.ID); !stored.IsVerified || stored.UnapprovedBatchID != nil || !stored.BatchApproved {
		t.Fatalf("approved user must be verified and moved, got %+v", stored)
	}
	_, err = h.membership.ApproveBatchRequest(testContext(t), admin.ID, approved.ID)
	assertCode(t, err, apperrors.CodeValidation)

	mustNoErr(t, h.membership.RejectBatchRequest(testContext(t), admin.ID, rejected.ID))
	if _, err := h.store.Users().GetByID(testContext(t), rejected.ID); err == nil {
		t.Fatalf("rejected user must be deleted")
	}

	inbox, _ := h.notifications.ListForUser(testContext(t), approved.ID, false)
	found := false
	for _, note := range inbox {
		if note.Message == "Your batch request has been approved" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected approval notification, got %+v", inbox)
	}
}

func TestRemoveUserReconcilesMemberships(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	hr := h.user(t, "Hank", domain.RoleHR)
	intern := h.user(t, "Ina", domain.RoleIntern)
	batch, err := h.membership.CreateBatch(testContext(t), BatchInput{
		Name:      "Alpha",
		InternIDs: []string{intern.ID},
		HRIDs:     []string{hr.ID},
	})
	mustNoErr(t, err)
	team, err := h.membership.CreateTeam(testContext(t), batch.ID, admin.ID, "Red", []string{intern.ID})
	mustNoErr(t, err)
	_, err = h.membership.AssignInternToHR(testContext(t), hr.ID, intern.ID)
	mustNoErr(t, err)

	mustNoErr(t, h.membership.RemoveUser(testContext(t), intern.ID))

	b, _ := h.store.Batches().GetByID(testContext(t), batch.ID)
	if b.HasIntern(intern.ID) {
		t.Fatalf("removed intern still in batch")
	}
	red, _ := h.store.Teams().GetByID(testContext(t), team.ID)
	if red.HasMember(intern.ID) {
		t.Fatalf("removed intern still in team")
	}
	status, _ := h.membership.IsInternAssigned(testContext(t), intern.ID)
	if status.Assigned {
		t.Fatalf("removed intern still associated")
	}

	mustNoErr(t, h.membership.RemoveUser(testContext(t), hr.ID))
	if _, err := h.store.Associations().GetByHR(testContext(t), hr.ID); err == nil {
		t.Fatalf("association of removed HR must be deleted")
	}
	assertCode(t, h.membership.RemoveUser(testContext(t), hr.ID), apperrors.CodeNotFound)
}

func TestRemoveUserReleasesBatchTaskCounters(t *testing.T) {
	f := newTaskFixture(t)
	other := f.h.user(t, "Otto", domain.RoleIntern)
	mustNoErr(t, f.h.membership.AssignIntern(testContext(t), f.batch.ID, other.ID))

	done := f.task(t, domain.TaskTypeTechnical)
	f.submit(t, done.ID)
	_, err := f.h.tasks.Review(testContext(t), f.admin.ID, f.intern.ID, done.ID, domain.ReviewAccepted)
	mustNoErr(t, err)
	f.task(t, domain.TaskTypeSocial)
	kept, err := f.h.tasks.CreateTask(testContext(t), f.admin.ID, TaskCreateInput{
		AssignedTo:  other.ID,
		Title:       "Deploy",
		Description: "Ship the build",
		Type:        domain.TaskTypeTechnical,
		StartDate:   f.h.clock.Now(),
		EndDate:     f.h.clock.Now().Add(2 * day),
	})
	mustNoErr(t, err)
	if all, completed := f.batchCounters(t); all != 3 || completed != 1 {
		t.Fatalf("expected counters 3/1 before removal, got %d/%d", all, completed)
	}

	mustNoErr(t, f.h.membership.RemoveUser(testContext(t), f.intern.ID))

	if all, completed := f.batchCounters(t); all != 1 || completed != 0 {
		t.Fatalf("expected counters 1/0 after removal, got %d/%d", all, completed)
	}
	links, err := f.h.store.Batches().ListTaskLinks(testContext(t), f.batch.ID)
	mustNoErr(t, err)
	if len(links) != 1 || links[0].TaskID != kept.ID {
		t.Fatalf("expected only the remaining intern's link, got %+v", links)
	}
	if _, err := f.h.store.Tasks().GetByID(testContext(t), done.ID); err == nil {
		t.Fatalf("tasks of a removed user must be deleted")
	}
}
