package handlers

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// LeaveHandler serves leave applications.
type LeaveHandler struct {
	service *service.LeaveService
}

// NewLeaveHandler constructs handler.
func NewLeaveHandler(svc *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{service: svc}
}

// Apply POST /leave.
func (h *LeaveHandler) Apply(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.LeaveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := parseDay("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDay("end_date", req.EndDate)
	if err != nil {
		return err
	}
	leave, err := h.service.Apply(c.UserContext(), p.UserID(), service.LeaveInput{
		Type:      domain.LeaveType(req.LeaveType),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return created(c, leaveResponse(leave))
}

// Mine GET /leave/mine.
func (h *LeaveHandler) Mine(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	leaves, err := h.service.Mine(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	return data(c, leaveResponses(leaves))
}

// List GET /leave.
func (h *LeaveHandler) List(c *fiber.Ctx) error {
	leaves, err := h.service.List(c.UserContext(), domain.LeaveStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return data(c, leaveResponses(leaves))
}

// Decide PATCH /leave/:id.
func (h *LeaveHandler) Decide(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.LeaveDecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	leave, err := h.service.Decide(c.UserContext(), actorOf(p), id, domain.LeaveStatus(req.Status))
	if err != nil {
		return err
	}
	return data(c, leaveResponse(leave))
}

// ReportsHandler serves weekly status reports and progress exports.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(svc *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: svc}
}

// SubmitWeekly POST /reports/weekly.
func (h *ReportsHandler) SubmitWeekly(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.WeeklyReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	weekOf, err := parseDay("week_of", req.WeekOf)
	if err != nil {
		return err
	}
	report, err := h.service.SubmitWeekly(c.UserContext(), p.UserID(), service.WeeklyReportInput{
		WeekOf:         weekOf,
		TasksCompleted: req.TasksCompleted,
		TasksNextWeek:  req.TasksNextWeek,
		SelfAssessment: req.SelfAssessment,
	})
	if err != nil {
		return err
	}
	return created(c, weeklyReportResponse(report))
}

// ListWeekly GET /reports/weekly.
func (h *ReportsHandler) ListWeekly(c *fiber.Ctx) error {
	reports, err := h.service.ListWeekly(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, weeklyReportResponses(reports))
}

// UserWeekly GET /reports/weekly/users/:userId.
func (h *ReportsHandler) UserWeekly(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	reports, err := h.service.WeeklyForUser(c.UserContext(), actorOf(p), userID)
	if err != nil {
		return err
	}
	return data(c, weeklyReportResponses(reports))
}

// HRProgress GET /hr/progress.
func (h *ReportsHandler) HRProgress(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	reports, err := h.service.HRProgress(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	return data(c, weeklyReportResponses(reports))
}

// InternSummaries GET /reports/interns. format=csv streams an attachment.
func (h *ReportsHandler) InternSummaries(c *fiber.Ctx) error {
	format := c.Query("format", "json")
	if format != "json" && format != "csv" {
		return apperrors.NewValidationError("unsupported format", map[string]any{"format": format, "allowed": []string{"json", "csv"}})
	}
	rows, err := h.service.InternSummaries(c.UserContext())
	if err != nil {
		return err
	}
	if format == "json" {
		items := make([]dto.InternSummaryResponse, 0, len(rows))
		for _, r := range rows {
			items = append(items, dto.InternSummaryResponse(r))
		}
		return data(c, items)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="intern-report.csv"`)
	cw := csv.NewWriter(c)
	_ = cw.Write([]string{
		"Name", "Email", "Department", "Attendance Days", "Expected Days", "Attendance %",
		"Tasks Total", "Tasks Completed", "Performance %", "Points",
	})
	for _, r := range rows {
		_ = cw.Write([]string{
			r.Name,
			r.Email,
			r.Department,
			strconv.Itoa(r.AttendanceDays),
			strconv.Itoa(r.ExpectedDays),
			formatPercent(r.AttendancePercent),
			strconv.Itoa(r.TasksTotal),
			strconv.Itoa(r.TasksCompleted),
			formatPercent(r.PerformancePercent),
			strconv.Itoa(r.TotalPoints),
		})
	}
	cw.Flush()
	return cw.Error()
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func leaveResponse(l *domain.LeaveRequest) dto.LeaveResponse {
	return dto.LeaveResponse{
		ID:          l.ID,
		UserID:      l.UserID,
		InternName:  l.InternName,
		InternEmail: l.InternEmail,
		LeaveType:   string(l.Type),
		StartDate:   l.StartDate.Format(dayLayout),
		EndDate:     l.EndDate.Format(dayLayout),
		Days:        l.Days(),
		Reason:      l.Reason,
		Status:      string(l.Status),
		DecidedBy:   l.DecidedBy,
		DecidedAt:   l.DecidedAt,
		CreatedAt:   l.CreatedAt,
	}
}

func leaveResponses(leaves []domain.LeaveRequest) []dto.LeaveResponse {
	items := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		items = append(items, leaveResponse(&leaves[i]))
	}
	return items
}

func weeklyReportResponse(r *domain.WeeklyReport) dto.WeeklyReportResponse {
	return dto.WeeklyReportResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		EmployeeName:   r.EmployeeName,
		Department:     r.Department,
		WeekOf:         r.WeekOf.Format(dayLayout),
		TasksCompleted: r.TasksCompleted,
		TasksNextWeek:  r.TasksNextWeek,
		SelfAssessment: r.SelfAssessment,
		CreatedAt:      r.CreatedAt,
	}
}

func weeklyReportResponses(reports []domain.WeeklyReport) []dto.WeeklyReportResponse {
	items := make([]dto.WeeklyReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, weeklyReportResponse(&reports[i]))
	}
	return items
}
