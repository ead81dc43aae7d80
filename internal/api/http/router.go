package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/codebyviral/irms-backend/internal/api/http/handlers"
	"github.com/codebyviral/irms-backend/internal/auth"
	"github.com/codebyviral/irms-backend/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Tasks          *handlers.TasksHandler
	Membership     *handlers.MembershipHandler
	Inbox          *handlers.InboxHandler
	Leave          *handlers.LeaveHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/verify", cfg.Users.VerifyEmail)
	authGroup.Post("/verify/resend", cfg.Users.ResendVerification)

	authed := auth.RequireRoles()
	staff := auth.RequireRoles(auth.Staff...)
	admin := auth.RequireRoles(domain.RoleAdmin)

	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, authed, cfg.Users.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, authed)

	users := protected.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateMe)
	users.Get("/", staff, cfg.Users.ListUsers)
	users.Get("/requests", admin, cfg.Users.UnverifiedInterns)
	users.Get("/:id", staff, cfg.Users.GetUser)
	users.Post("/:id/accept", admin, cfg.Users.AcceptUser)
	users.Delete("/:id", admin, cfg.Users.DeleteUser)

	tickets := protected.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/ranking", staff, cfg.Tickets.Ranking)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", staff, cfg.Tickets.AssignTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/seen", cfg.Tickets.MarkSeen)

	tasks := protected.Group("/tasks")
	tasks.Post("/", staff, cfg.Tasks.CreateTask)
	tasks.Get("/", cfg.Tasks.ListTasks)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Patch("/:id", staff, cfg.Tasks.UpdateTask)
	tasks.Delete("/:id", staff, cfg.Tasks.DeleteTask)
	tasks.Post("/:id/submission", cfg.Tasks.Submit)
	tasks.Delete("/:id/submission", staff, cfg.Tasks.DeleteSubmission)
	tasks.Post("/:id/review", staff, cfg.Tasks.Review)
	protected.Get("/submissions", staff, cfg.Tasks.ListSubmissions)
	protected.Get("/leaderboard", cfg.Users.Leaderboard)

	batches := protected.Group("/batches", staff)
	batches.Get("/approvals", cfg.Membership.PendingApprovals)
	batches.Post("/approvals/:userId/approve", cfg.Membership.ApproveBatchRequest)
	batches.Post("/approvals/:userId/reject", cfg.Membership.RejectBatchRequest)
	batches.Post("/", cfg.Membership.CreateBatch)
	batches.Get("/", cfg.Membership.ListBatches)
	batches.Get("/:id", cfg.Membership.GetBatch)
	batches.Patch("/:id", cfg.Membership.UpdateBatch)
	batches.Delete("/:id", cfg.Membership.DeleteBatch)
	batches.Post("/:id/interns", cfg.Membership.AssignIntern)
	batches.Get("/:id/teams", cfg.Membership.ListTeams)
	batches.Post("/:id/teams", cfg.Membership.CreateTeam)

	teams := protected.Group("/teams", staff)
	teams.Post("/move", cfg.Membership.MoveMember)
	teams.Patch("/:id", cfg.Membership.RenameTeam)
	teams.Delete("/:id", cfg.Membership.DeleteTeam)
	teams.Post("/:id/members", cfg.Membership.AddMembers)
	teams.Delete("/:id/members/:userId", cfg.Membership.RemoveMember)

	hr := protected.Group("/hr", staff)
	hr.Post("/assign", cfg.Membership.AssignHR)
	hr.Post("/status", cfg.Membership.AssignmentStatuses)
	hr.Get("/progress", cfg.Reports.HRProgress)
	hr.Delete("/interns/:internId", cfg.Membership.UnassignHR)
	hr.Get("/interns/:internId/status", cfg.Membership.AssignmentStatus)
	hr.Get("/:hrId/interns", cfg.Membership.InternsByHR)

	notifications := protected.Group("/notifications")
	notifications.Get("/", cfg.Inbox.ListNotifications)
	notifications.Post("/", staff, cfg.Inbox.Notify)
	notifications.Post("/read-all", cfg.Inbox.MarkAllRead)
	notifications.Post("/broadcast", staff, cfg.Inbox.Broadcast)
	notifications.Patch("/:id/read", cfg.Inbox.MarkRead)

	chat := protected.Group("/chat")
	chat.Post("/messages", cfg.Inbox.SendMessage)
	chat.Get("/:userId", cfg.Inbox.Conversation)
	chat.Post("/:userId/seen", cfg.Inbox.MarkConversationSeen)

	attendance := protected.Group("/attendance")
	attendance.Post("/", cfg.Inbox.MarkAttendance)
	attendance.Get("/", cfg.Inbox.ListAttendance)
	attendance.Get("/:userId", staff, cfg.Inbox.UserAttendance)

	leave := protected.Group("/leave")
	leave.Post("/", cfg.Leave.Apply)
	leave.Get("/mine", cfg.Leave.Mine)
	leave.Get("/", staff, cfg.Leave.List)
	leave.Patch("/:id", staff, cfg.Leave.Decide)

	reports := protected.Group("/reports")
	reports.Post("/weekly", cfg.Reports.SubmitWeekly)
	reports.Get("/weekly", staff, cfg.Reports.ListWeekly)
	reports.Get("/weekly/users/:userId", cfg.Reports.UserWeekly)
	reports.Get("/interns", staff, cfg.Reports.InternSummaries)
}
