package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/service"
)

const (
	accountWarningMessage = "Your account will be deleted soon. Please contact the administrator if you have any concerns."
	attendanceReminder    = "You have not marked your attendance for today. Please mark your attendance ASAP."
	absenceWarningFormat  = "Your account will be deleted due to %d consecutive absences. Please contact the administrator if you have any concerns."
)

// TicketExpirer closes tickets left waiting for confirmation.
type TicketExpirer interface {
	ExpirePendingConfirmations(ctx context.Context, window time.Duration) (int, error)
}

// UserRemover deletes an account and its memberships.
type UserRemover interface {
	RemoveUser(ctx context.Context, userID string) error
}

// Notifier writes inbox entries.
type Notifier interface {
	Notify(ctx context.Context, userID string, taskID *string, message, kind string) (*domain.Notification, error)
}

// LeaveCalendar reports who is on approved leave.
type LeaveCalendar interface {
	UsersOnLeave(ctx context.Context, from, to time.Time) (map[string]bool, error)
}

// MaintenanceRecorder counts records touched per action.
type MaintenanceRecorder interface {
	RecordMaintenance(action string, n int)
}

// Dependencies wires the maintenance worker.
type Dependencies struct {
	Tickets        TicketExpirer
	Members        UserRemover
	Notifier       Notifier
	UserRepo       repository.UserRepository
	AttendanceRepo repository.AttendanceRepository
	Leaves         LeaveCalendar
	Recorder       MaintenanceRecorder
	Logger         *zap.Logger
	Now            func() time.Time
}

// Report summarizes one maintenance pass.
type Report struct {
	TicketsClosed int
	UsersWarned   int
	UsersRemoved  int
	AbsentRemoved int
	RemindersSent int
}

// Maintenance runs the periodic housekeeping job.
type Maintenance struct {
	cfg        config.WorkerConfig
	tickets    TicketExpirer
	members    UserRemover
	notifier   Notifier
	users      repository.UserRepository
	attendance repository.AttendanceRepository
	leaves     LeaveCalendar
	recorder   MaintenanceRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewMaintenance builds the worker.
func NewMaintenance(cfg config.WorkerConfig, deps Dependencies) *Maintenance {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Maintenance{
		cfg:        cfg,
		tickets:    deps.Tickets,
		members:    deps.Members,
		notifier:   deps.Notifier,
		users:      deps.UserRepo,
		attendance: deps.AttendanceRepo,
		leaves:     deps.Leaves,
		recorder:   deps.Recorder,
		logger:     logger,
		now:        now,
	}
}

// Run executes a pass on every tick until ctx is cancelled.
func (m *Maintenance) Run(ctx context.Context) error {
	if !m.cfg.Enabled {
		m.logger.Info("maintenance worker disabled")
		return nil
	}
	interval := m.cfg.CleanupInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("maintenance worker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("maintenance worker stopped")
			return nil
		case <-ticker.C:
			report := m.RunOnce(ctx)
			m.logger.Info("maintenance pass finished",
				zap.Int("tickets_closed", report.TicketsClosed),
				zap.Int("users_warned", report.UsersWarned),
				zap.Int("users_removed", report.UsersRemoved),
				zap.Int("absent_removed", report.AbsentRemoved),
				zap.Int("reminders_sent", report.RemindersSent))
		}
	}
}

// RunOnce performs a single pass. A failing step is logged and the remaining
// steps still run.
func (m *Maintenance) RunOnce(ctx context.Context) Report {
	var report Report
	now := m.now()

	closed, err := m.tickets.ExpirePendingConfirmations(ctx, m.cfg.PendingConfirmationWindow())
	if err != nil {
		m.logger.Error("expire pending confirmations", zap.Error(err))
	}
	report.TicketsClosed = closed
	m.record("tickets_closed", closed)

	removeCutoff := now.Add(-m.cfg.AccountRetention())
	report.UsersWarned, report.UsersRemoved = m.sweepAccounts(ctx, now, removeCutoff)
	m.record("users_warned", report.UsersWarned)
	m.record("users_removed", report.UsersRemoved)

	report.AbsentRemoved = m.sweepAbsences(ctx, now)
	m.record("absent_removed", report.AbsentRemoved)

	report.RemindersSent = m.remindAttendance(ctx, now)
	m.record("attendance_reminders", report.RemindersSent)
	return report
}

// sweepAccounts removes accounts whose end date is older than removeCutoff and
// warns the ones that ended but are still inside the retention window.
func (m *Maintenance) sweepAccounts(ctx context.Context, now, removeCutoff time.Time) (warned, removed int) {
	ended, err := m.users.ListEndedBefore(ctx, now)
	if err != nil {
		m.logger.Error("list ended accounts", zap.Error(err))
		return 0, 0
	}
	for _, user := range ended {
		if user.EndDate.Before(removeCutoff) {
			if err := m.members.RemoveUser(ctx, user.ID); err != nil {
				m.logger.Warn("remove expired account", zap.String("user_id", user.ID), zap.Error(err))
				continue
			}
			removed++
			continue
		}
		if _, err := m.notifier.Notify(ctx, user.ID, nil, accountWarningMessage, domain.NotificationWarning); err != nil {
			m.logger.Warn("warn expiring account", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		warned++
	}
	return warned, removed
}

// sweepAbsences removes interns who attended before but missed each of the
// last AbsenceLimitDays days. A day of approved leave breaks the streak.
func (m *Maintenance) sweepAbsences(ctx context.Context, now time.Time) int {
	limit := m.cfg.AbsenceLimitDays
	if limit <= 0 {
		return 0
	}
	today := service.Today(now)
	from, to := today.AddDate(0, 0, -limit), today.AddDate(0, 0, -1)

	absent, err := m.attendance.InternsAbsentBetween(ctx, from, to)
	if err != nil {
		m.logger.Error("list absent interns", zap.Error(err))
		return 0
	}
	if len(absent) == 0 {
		return 0
	}
	onLeave, err := m.onLeave(ctx, from, to)
	if err != nil {
		m.logger.Error("list approved leave", zap.Error(err))
		return 0
	}

	warning := fmt.Sprintf(absenceWarningFormat, limit)
	removed := 0
	for _, userID := range absent {
		if onLeave[userID] {
			continue
		}
		if _, err := m.notifier.Notify(ctx, userID, nil, warning, domain.NotificationWarning); err != nil {
			m.logger.Warn("warn absent intern", zap.String("user_id", userID), zap.Error(err))
		}
		if err := m.members.RemoveUser(ctx, userID); err != nil {
			m.logger.Warn("remove absent intern", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		m.logger.Info("absent intern removed", zap.String("user_id", userID), zap.Int("days", limit))
		removed++
	}
	return removed
}

func (m *Maintenance) onLeave(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	if m.leaves == nil {
		return map[string]bool{}, nil
	}
	return m.leaves.UsersOnLeave(ctx, from, to)
}

// remindAttendance nudges interns without a mark today unless they are on leave.
func (m *Maintenance) remindAttendance(ctx context.Context, now time.Time) int {
	today := service.Today(now)
	missing, err := m.attendance.InternsWithoutMark(ctx, today)
	if err != nil {
		m.logger.Error("list missing attendance", zap.Error(err))
		return 0
	}
	onLeave, err := m.onLeave(ctx, today, today)
	if err != nil {
		m.logger.Warn("list approved leave", zap.Error(err))
		onLeave = map[string]bool{}
	}
	sent := 0
	for _, userID := range missing {
		if onLeave[userID] {
			continue
		}
		if _, err := m.notifier.Notify(ctx, userID, nil, attendanceReminder, domain.NotificationReminder); err != nil {
			m.logger.Warn("attendance reminder", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func (m *Maintenance) record(action string, n int) {
	if m.recorder != nil {
		m.recorder.RecordMaintenance(action, n)
	}
}
