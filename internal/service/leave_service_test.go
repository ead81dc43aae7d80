package service

import (
	"testing"

	"github.com/codebyviral/irms-backend/internal/domain"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func sickLeave(h *harness, startOffset, days int) LeaveInput {
	start := h.clock.Now().AddDate(0, 0, startOffset)
	return LeaveInput{
		Type:      domain.LeaveSick,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days-1),
		Reason:    "Flu",
	}
}

func TestApplyLeave(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)

	leave, err := h.leave.Apply(testContext(t), intern.ID, sickLeave(h, 1, 3))
	mustNoErr(t, err)
	if leave.Status != domain.LeavePending || leave.Days() != 3 {
		t.Fatalf("unexpected leave %+v", leave)
	}
	if !leave.StartDate.Equal(Today(h.clock.Now().AddDate(0, 0, 1))) {
		t.Fatalf("start date must be truncated to the day, got %s", leave.StartDate)
	}

	_, err = h.leave.Apply(testContext(t), intern.ID, sickLeave(h, 3, 2))
	assertCode(t, err, apperrors.CodeConflict)

	mine, err := h.leave.Mine(testContext(t), intern.ID)
	mustNoErr(t, err)
	if len(mine) != 1 || mine[0].ID != leave.ID {
		t.Fatalf("unexpected own leave list %+v", mine)
	}
}

func TestApplyLeaveValidation(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)

	valid := sickLeave(h, 0, 2)
	reversed := valid
	reversed.StartDate, reversed.EndDate = valid.EndDate, valid.StartDate
	unknown := valid
	unknown.Type = "Holiday"
	blank := valid
	blank.Reason = " <b></b> "

	cases := map[string]LeaveInput{
		"missing everything": {},
		"end before start":   reversed,
		"unknown type":       unknown,
		"blank reason":       blank,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.leave.Apply(testContext(t), intern.ID, input)
			assertCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestDecideLeaveNotifiesApplicant(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	intern := h.user(t, "Ina", domain.RoleIntern)
	leave, err := h.leave.Apply(testContext(t), intern.ID, sickLeave(h, 1, 2))
	mustNoErr(t, err)

	_, err = h.leave.Decide(testContext(t), actorFor(admin), leave.ID, domain.LeavePending)
	assertCode(t, err, apperrors.CodeInvalidStatus)

	decided, err := h.leave.Decide(testContext(t), actorFor(admin), leave.ID, domain.LeaveApproved)
	mustNoErr(t, err)
	if decided.Status != domain.LeaveApproved || decided.DecidedBy == nil || *decided.DecidedBy != admin.ID {
		t.Fatalf("unexpected decided leave %+v", decided)
	}
	_, err = h.leave.Decide(testContext(t), actorFor(admin), leave.ID, domain.LeaveApproved)
	assertCode(t, err, apperrors.CodeConflict)
	_, err = h.leave.Decide(testContext(t), actorFor(admin), "00000000-0000-4000-8000-999999999999", domain.LeaveRejected)
	assertCode(t, err, apperrors.CodeNotFound)

	inbox, err := h.notifications.ListForUser(testContext(t), intern.ID, false)
	mustNoErr(t, err)
	if len(inbox) != 1 || inbox[0].Message != "Your leave application has been approved by Ada." {
		t.Fatalf("unexpected notifications %+v", inbox)
	}

	all, err := h.leave.List(testContext(t), domain.LeaveApproved)
	mustNoErr(t, err)
	if len(all) != 1 || all[0].InternName != "Ina" || all[0].InternEmail != intern.Email {
		t.Fatalf("admin listing must carry the applicant, got %+v", all)
	}
	pending, err := h.leave.List(testContext(t), domain.LeavePending)
	mustNoErr(t, err)
	if len(pending) != 0 {
		t.Fatalf("expected no pending leave, got %+v", pending)
	}
	_, err = h.leave.List(testContext(t), "Maybe")
	assertCode(t, err, apperrors.CodeInvalidStatus)
}

func TestRejectedLeaveFreesTheDates(t *testing.T) {
	h := newHarness(t)
	hr := h.user(t, "Hank", domain.RoleHR)
	intern := h.user(t, "Ina", domain.RoleIntern)
	first, err := h.leave.Apply(testContext(t), intern.ID, sickLeave(h, 1, 2))
	mustNoErr(t, err)
	_, err = h.leave.Decide(testContext(t), actorFor(hr), first.ID, domain.LeaveRejected)
	mustNoErr(t, err)

	second, err := h.leave.Apply(testContext(t), intern.ID, sickLeave(h, 2, 1))
	mustNoErr(t, err)

	_, err = h.leave.Decide(testContext(t), actorFor(hr), first.ID, domain.LeaveApproved)
	assertCode(t, err, apperrors.CodeConflict)

	_, err = h.leave.Decide(testContext(t), actorFor(hr), second.ID, domain.LeaveApproved)
	mustNoErr(t, err)
	onLeave, err := h.leave.UsersOnLeave(testContext(t), Today(h.clock.Now()), Today(h.clock.Now().AddDate(0, 0, 5)))
	mustNoErr(t, err)
	if !onLeave[intern.ID] || len(onLeave) != 1 {
		t.Fatalf("unexpected users on leave %v", onLeave)
	}
}
