package service

import (
	"testing"

	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/testfixtures"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

type harness struct {
	store      *testfixtures.Store
	clock      *testfixtures.Clock
	dispatcher events.Dispatcher
	publisher  *testfixtures.RecordingPublisher
	reviews    *reviewCounter

	tickets       *TicketService
	tasks         *TaskService
	membership    *MembershipService
	notifications *NotificationService
	auth          *AuthService
	chat          *ChatService
	attendance    *AttendanceService
	leave         *LeaveService
	reports       *ReportService
}

type reviewCounter struct {
	decisions []string
}

func (r *reviewCounter) RecordReview(decision string) {
	r.decisions = append(r.decisions, decision)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	store := testfixtures.NewStore(testfixtures.WithClock(clock))
	dispatcher := events.NewInMemoryDispatcher(nil)
	publisher := &testfixtures.RecordingPublisher{}
	reviews := &reviewCounter{}
	now := clock.NowFunc()

	h := &harness{
		store:      store,
		clock:      clock,
		dispatcher: dispatcher,
		publisher:  publisher,
		reviews:    reviews,
	}
	h.tickets = NewTicketService(TicketDependencies{
		TxManager:   store.TxManager(),
		TicketRepo:  store.Tickets(),
		MessageRepo: store.TicketMessages(),
		HistoryRepo: store.TicketHistory(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Now:         now,
	})
	h.tasks = NewTaskService(TaskDependencies{
		TxManager:       store.TxManager(),
		TaskRepo:        store.Tasks(),
		SubmissionRepo:  store.Submissions(),
		UserRepo:        store.Users(),
		BatchRepo:       store.Batches(),
		AssociationRepo: store.Associations(),
		Dispatcher:      dispatcher,
		Recorder:        reviews,
		Now:             now,
	})
	h.membership = NewMembershipService(MembershipDependencies{
		TxManager:       store.TxManager(),
		UserRepo:        store.Users(),
		BatchRepo:       store.Batches(),
		TeamRepo:        store.Teams(),
		AssociationRepo: store.Associations(),
		Dispatcher:      dispatcher,
		Now:             now,
	})
	h.notifications = NewNotificationService(NotificationDependencies{
		NotificationRepo: store.Notifications(),
		UserRepo:         store.Users(),
		BatchRepo:        store.Batches(),
		AssociationRepo:  store.Associations(),
		Dispatcher:       dispatcher,
		Publisher:        publisher,
		Config:           config.NotificationConfig{EmailFrom: "noreply@example.com"},
		Now:              now,
	})
	h.notifications.RegisterHandlers()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			VerificationTTLMinutes:  10,
			BcryptCost:              4,
		},
	}
	h.auth = NewAuthService(cfg, AuthDependencies{
		TxManager:         store.TxManager(),
		UserRepo:          store.Users(),
		PasswordResetRepo: store.PasswordResets(),
		VerificationRepo:  store.EmailVerifications(),
		Now:               now,
	})
	h.chat = NewChatService(ChatDependencies{
		MessageRepo: store.DirectMessages(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Now:         now,
	})
	h.attendance = NewAttendanceService(store.Attendance(), now)
	h.leave = NewLeaveService(LeaveDependencies{
		TxManager:  store.TxManager(),
		LeaveRepo:  store.Leaves(),
		UserRepo:   store.Users(),
		Dispatcher: dispatcher,
		Now:        now,
	})
	h.reports = NewReportService(ReportDependencies{
		WeeklyReportRepo: store.WeeklyReports(),
		UserRepo:         store.Users(),
		AssociationRepo:  store.Associations(),
		TaskRepo:         store.Tasks(),
		AttendanceRepo:   store.Attendance(),
		Now:              now,
	})
	return h
}

func (h *harness) user(t *testing.T, name string, role domain.Role) domain.User {
	t.Helper()
	return h.store.SeedUser(t, name, role)
}

func (h *harness) reload(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := h.store.Users().GetByID(testContext(t), id)
	if err != nil {
		t.Fatalf("reload user %s: %v", id, err)
	}
	return u
}

func actorFor(u domain.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %q (%v)", code, got, err)
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
