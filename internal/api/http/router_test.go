package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/api/http/handlers"
	"github.com/codebyviral/irms-backend/internal/auth"
	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/observability"
	"github.com/codebyviral/irms-backend/internal/service"
	"github.com/codebyviral/irms-backend/internal/testfixtures"
)

type server struct {
	app    *fiber.App
	store  *testfixtures.Store
	clock  *testfixtures.Clock
	tokens *auth.TokenManager
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newServer(t *testing.T) *server {
	t.Helper()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	store := testfixtures.NewStore(testfixtures.WithClock(clock))
	dispatcher := events.NewInMemoryDispatcher(nil)
	publisher := &testfixtures.RecordingPublisher{}
	metrics := observability.NewMetrics("test")
	now := clock.NowFunc()

	authService := service.NewAuthService(config.Config{
		Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 60, PasswordResetTTLMinutes: 30, BcryptCost: 4},
	}, service.AuthDependencies{
		TxManager:         store.TxManager(),
		UserRepo:          store.Users(),
		PasswordResetRepo: store.PasswordResets(),
		VerificationRepo:  store.EmailVerifications(),
		Now:               now,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TxManager:   store.TxManager(),
		TicketRepo:  store.Tickets(),
		MessageRepo: store.TicketMessages(),
		HistoryRepo: store.TicketHistory(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Now:         now,
	})
	tasks := service.NewTaskService(service.TaskDependencies{
		TxManager:       store.TxManager(),
		TaskRepo:        store.Tasks(),
		SubmissionRepo:  store.Submissions(),
		UserRepo:        store.Users(),
		BatchRepo:       store.Batches(),
		AssociationRepo: store.Associations(),
		Dispatcher:      dispatcher,
		Recorder:        metrics,
		Now:             now,
	})
	membership := service.NewMembershipService(service.MembershipDependencies{
		TxManager:       store.TxManager(),
		UserRepo:        store.Users(),
		BatchRepo:       store.Batches(),
		TeamRepo:        store.Teams(),
		AssociationRepo: store.Associations(),
		Dispatcher:      dispatcher,
		Now:             now,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: store.Notifications(),
		UserRepo:         store.Users(),
		BatchRepo:        store.Batches(),
		AssociationRepo:  store.Associations(),
		Dispatcher:       dispatcher,
		Publisher:        publisher,
		Now:              now,
	})
	notifications.RegisterHandlers()
	chat := service.NewChatService(service.ChatDependencies{
		MessageRepo: store.DirectMessages(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Now:         now,
	})
	attendance := service.NewAttendanceService(store.Attendance(), now)
	leave := service.NewLeaveService(service.LeaveDependencies{
		TxManager:  store.TxManager(),
		LeaveRepo:  store.Leaves(),
		UserRepo:   store.Users(),
		Dispatcher: dispatcher,
		Now:        now,
	})
	reports := service.NewReportService(service.ReportDependencies{
		WeeklyReportRepo: store.WeeklyReports(),
		UserRepo:         store.Users(),
		AssociationRepo:  store.Associations(),
		TaskRepo:         store.Tasks(),
		AttendanceRepo:   store.Attendance(),
		Now:              now,
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Minute, nil)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("irms-test", "test", nil),
		Users:          handlers.NewUsersHandler(authService, membership, tasks, true),
		Tickets:        handlers.NewTicketsHandler(tickets),
		Tasks:          handlers.NewTasksHandler(tasks),
		Membership:     handlers.NewMembershipHandler(membership),
		Inbox:          handlers.NewInboxHandler(notifications, chat, attendance, authService),
		Leave:          handlers.NewLeaveHandler(leave),
		Reports:        handlers.NewReportsHandler(reports),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		Metrics:        metrics.Handler(),
	})
	return &server{app: app, store: store, clock: clock, tokens: authService.TokenManager()}
}

func (s *server) login(t *testing.T, name string, role domain.Role) (domain.User, string) {
	t.Helper()
	user := s.store.SeedUser(t, name, role)
	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("token for %s: %v", name, err)
	}
	return user, token
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return out
}

func expectError(t *testing.T, status int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus || env.Error == nil || env.Error.Code != wantCode {
		t.Fatalf("expected %d %s, got %d %+v", wantStatus, wantCode, status, env.Error)
	}
}

func TestHealthLive(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(fiber.MethodGet, "/health/live", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	status, env := s.do(t, fiber.MethodGet, "/tickets", "", nil)
	expectError(t, status, env, fiber.StatusUnauthorized, "UNAUTHORIZED")

	status, env = s.do(t, fiber.MethodGet, "/tickets", "not-a-jwt", nil)
	expectError(t, status, env, fiber.StatusUnauthorized, "UNAUTHORIZED")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newServer(t)
	_, token := s.login(t, "Ina", domain.RoleIntern)
	status, env := s.do(t, fiber.MethodGet, "/nowhere", token, nil)
	expectError(t, status, env, fiber.StatusNotFound, "NOT_FOUND")
}

func TestRegisterLoginAndProfile(t *testing.T) {
	s := newServer(t)
	status, env := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Ina",
		"email":    "Ina@Example.com",
		"password": "secret1",
		"mnumber":  "555-0100",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "ina@example.com", "password": "secret1"})
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %+v", status, env.Error)
	}
	login := decode[struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}](t, env)

	status, env = s.do(t, fiber.MethodPatch, "/users/me", login.Auth.Token, map[string]any{
		"name": "Ina Park",
		"role": "admin",
	})
	if status != fiber.StatusOK {
		t.Fatalf("update profile: %d %+v", status, env.Error)
	}
	me := decode[struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}](t, env)
	if me.Name != "Ina Park" || me.Email != "ina@example.com" || me.Role != "intern" {
		t.Fatalf("unexpected profile %+v", me)
	}

	status, env = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "ina@example.com", "password": "wrong!!"})
	expectError(t, status, env, fiber.StatusUnauthorized, "UNAUTHORIZED")
}

func TestPasswordResetOverHTTP(t *testing.T) {
	s := newServer(t)
	s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{"name": "Ina", "email": "ina@example.com", "password": "secret1"})

	status, env := s.do(t, fiber.MethodPost, "/auth/password/reset/request", "", map[string]string{"email": "ina@example.com"})
	if status != fiber.StatusAccepted {
		t.Fatalf("reset request: %d %+v", status, env.Error)
	}
	reset := decode[struct {
		Token string `json:"token"`
	}](t, env)

	body := map[string]string{"token": reset.Token, "new_password": "changed1"}
	if status, env = s.do(t, fiber.MethodPost, "/auth/password/reset/confirm", "", body); status != fiber.StatusNoContent {
		t.Fatalf("reset confirm: %d %+v", status, env.Error)
	}
	status, env = s.do(t, fiber.MethodPost, "/auth/password/reset/confirm", "", body)
	expectError(t, status, env, fiber.StatusBadRequest, "VALIDATION_FAILED")

	if status, _ = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "ina@example.com", "password": "changed1"}); status != fiber.StatusOK {
		t.Fatalf("login with new password: %d", status)
	}
}

func TestTicketFlowOverHTTP(t *testing.T) {
	s := newServer(t)
	_, internToken := s.login(t, "Ina", domain.RoleIntern)
	hr, hrToken := s.login(t, "Hank", domain.RoleHR)
	_, outsiderToken := s.login(t, "Olga", domain.RoleIntern)

	status, env := s.do(t, fiber.MethodPost, "/tickets", internToken, map[string]string{"title": "Laptop", "description": "Broken screen"})
	if status != fiber.StatusCreated {
		t.Fatalf("create ticket: %d %+v", status, env.Error)
	}
	ticket := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	if ticket.Status != string(domain.TicketStatusOpen) {
		t.Fatalf("unexpected initial status %s", ticket.Status)
	}

	status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/assign", internToken, map[string]string{"assignee_id": hr.ID})
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")

	if status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/assign", hrToken, map[string]string{"assignee_id": hr.ID}); status != fiber.StatusOK {
		t.Fatalf("assign: %d %+v", status, env.Error)
	}
	status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/assign", hrToken, map[string]string{"assignee_id": hr.ID})
	expectError(t, status, env, fiber.StatusConflict, "ALREADY_ASSIGNED")

	status, env = s.do(t, fiber.MethodPatch, "/tickets/"+ticket.ID+"/status", internToken, map[string]string{"status": "Done"})
	expectError(t, status, env, fiber.StatusBadRequest, "INVALID_STATUS")

	status, env = s.do(t, fiber.MethodPatch, "/tickets/"+ticket.ID+"/status", outsiderToken, map[string]string{"status": "Closed"})
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")

	if status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/messages", hrToken, map[string]string{"text": "On it"}); status != fiber.StatusCreated {
		t.Fatalf("post message: %d %+v", status, env.Error)
	}
	if status, env = s.do(t, fiber.MethodPatch, "/tickets/"+ticket.ID+"/status", internToken, map[string]string{"status": "Closed"}); status != fiber.StatusOK {
		t.Fatalf("close: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodGet, "/tickets/"+ticket.ID, internToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get ticket: %d %+v", status, env.Error)
	}
	detail := decode[struct {
		Status   string            `json:"status"`
		Messages []json.RawMessage `json:"messages"`
		History  []struct {
			Action string `json:"action"`
		} `json:"history"`
	}](t, env)
	if detail.Status != string(domain.TicketStatusClosed) || len(detail.Messages) != 1 || len(detail.History) != 3 {
		t.Fatalf("unexpected detail %+v", detail)
	}

	status, env = s.do(t, fiber.MethodGet, "/tickets/ranking", hrToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("ranking: %d %+v", status, env.Error)
	}
	ranks := decode[[]struct {
		UserID      string `json:"user_id"`
		ClosedCount int    `json:"closed_count"`
	}](t, env)
	if len(ranks) != 1 || ranks[0].UserID != hr.ID || ranks[0].ClosedCount != 1 {
		t.Fatalf("unexpected ranking %+v", ranks)
	}

	status, env = s.do(t, fiber.MethodGet, "/tickets/"+ticket.ID, outsiderToken, nil)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")
}

func TestTaskReviewOverHTTP(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)
	intern, internToken := s.login(t, "Ina", domain.RoleIntern)

	start := s.clock.Now()
	task := map[string]any{
		"assigned_to": intern.ID,
		"title":       "Write report",
		"description": "Weekly summary",
		"task_type":   "Technical",
		"start_date":  start,
		"end_date":    start.Add(72 * time.Hour),
	}
	status, env := s.do(t, fiber.MethodPost, "/tasks", internToken, task)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")

	status, env = s.do(t, fiber.MethodPost, "/tasks", adminToken, task)
	if status != fiber.StatusCreated {
		t.Fatalf("create task: %d %+v", status, env.Error)
	}
	created := decode[struct {
		ID string `json:"id"`
	}](t, env)

	status, env = s.do(t, fiber.MethodPost, "/tasks/"+created.ID+"/submission", internToken, map[string]string{"comments": "Done"})
	if status != fiber.StatusCreated {
		t.Fatalf("submit: %d %+v", status, env.Error)
	}

	review := map[string]string{"user_id": intern.ID, "decision": "Accepted"}
	status, env = s.do(t, fiber.MethodPost, "/tasks/"+created.ID+"/review", adminToken, review)
	if status != fiber.StatusOK {
		t.Fatalf("review: %d %+v", status, env.Error)
	}
	result := decode[struct {
		TaskStatus string `json:"task_status"`
		Delta      int    `json:"delta"`
	}](t, env)
	if result.Delta != 1 || result.TaskStatus != string(domain.TaskStatusCompleted) {
		t.Fatalf("unexpected review result %+v", result)
	}

	status, env = s.do(t, fiber.MethodPost, "/tasks/"+created.ID+"/review", adminToken, review)
	expectError(t, status, env, fiber.StatusConflict, "ALREADY_REVIEWED")

	status, env = s.do(t, fiber.MethodGet, "/leaderboard", internToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("leaderboard: %d %+v", status, env.Error)
	}
	board := decode[[]struct {
		Rank        int    `json:"rank"`
		UserID      string `json:"user_id"`
		TotalPoints int    `json:"total_points"`
	}](t, env)
	if len(board) != 1 || board[0].Rank != 1 || board[0].UserID != intern.ID || board[0].TotalPoints != 1 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestTeamMembersMustBelongToBatch(t *testing.T) {
	s := newServer(t)
	_, hrToken := s.login(t, "Hank", domain.RoleHR)
	inside := s.store.SeedUser(t, "Ina", domain.RoleIntern)
	outside := s.store.SeedUser(t, "Olga", domain.RoleIntern)

	status, env := s.do(t, fiber.MethodPost, "/batches", hrToken, map[string]any{"name": "Spring", "interns": []string{inside.ID}})
	if status != fiber.StatusCreated {
		t.Fatalf("create batch: %d %+v", status, env.Error)
	}
	batch := decode[struct {
		ID      string   `json:"id"`
		Interns []string `json:"interns"`
	}](t, env)
	if len(batch.Interns) != 1 || batch.Interns[0] != inside.ID {
		t.Fatalf("unexpected batch %+v", batch)
	}

	status, env = s.do(t, fiber.MethodPost, "/batches/"+batch.ID+"/teams", hrToken, map[string]any{
		"name":    "Alpha",
		"members": []string{inside.ID, outside.ID},
	})
	expectError(t, status, env, fiber.StatusBadRequest, "INVALID_MEMBER")
	invalid, _ := env.Error.Details["invalid_members"].([]any)
	if len(invalid) != 1 || invalid[0] != outside.ID {
		t.Fatalf("unexpected invalid members %v", env.Error.Details)
	}

	status, env = s.do(t, fiber.MethodPost, "/batches/"+batch.ID+"/teams", hrToken, map[string]any{
		"name":    "Alpha",
		"members": []string{inside.ID},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create team: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodGet, "/batches/"+batch.ID, hrToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get batch: %d %+v", status, env.Error)
	}
	detail := decode[struct {
		Teams []struct {
			Name    string   `json:"name"`
			Members []string `json:"members"`
		} `json:"teams"`
	}](t, env)
	if len(detail.Teams) != 1 || detail.Teams[0].Name != "Alpha" {
		t.Fatalf("unexpected teams %+v", detail.Teams)
	}
}

func TestHRAssignDefaultsToCaller(t *testing.T) {
	s := newServer(t)
	hr, hrToken := s.login(t, "Hank", domain.RoleHR)
	intern := s.store.SeedUser(t, "Ina", domain.RoleIntern)

	status, env := s.do(t, fiber.MethodPost, "/hr/assign", hrToken, map[string]string{"intern_id": intern.ID})
	if status != fiber.StatusOK {
		t.Fatalf("assign: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodGet, "/hr/interns/"+intern.ID+"/status", hrToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("status: %d %+v", status, env.Error)
	}
	assigned := decode[struct {
		Assigned bool   `json:"assigned"`
		HRID     string `json:"hr_id"`
	}](t, env)
	if !assigned.Assigned || assigned.HRID != hr.ID {
		t.Fatalf("unexpected status %+v", assigned)
	}
}

func TestInboxOverHTTP(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)
	intern, internToken := s.login(t, "Ina", domain.RoleIntern)

	status, env := s.do(t, fiber.MethodPost, "/notifications/broadcast", adminToken, map[string]string{"message": "Standup at 10"})
	if status != fiber.StatusOK {
		t.Fatalf("broadcast: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodGet, "/notifications?unread=true", internToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: %d %+v", status, env.Error)
	}
	notes := decode[[]struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}](t, env)
	if len(notes) != 1 || notes[0].Message != "Standup at 10" {
		t.Fatalf("unexpected inbox %+v", notes)
	}

	if status, _ = s.do(t, fiber.MethodPatch, "/notifications/"+notes[0].ID+"/read", internToken, nil); status != fiber.StatusNoContent {
		t.Fatalf("mark read: %d", status)
	}
	_, env = s.do(t, fiber.MethodGet, "/notifications?unread=true", internToken, nil)
	if unread := decode[[]json.RawMessage](t, env); len(unread) != 0 {
		t.Fatalf("expected empty unread inbox, got %d", len(unread))
	}

	status, env = s.do(t, fiber.MethodPost, "/attendance", internToken, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("mark attendance: %d %+v", status, env.Error)
	}
	if status, _ = s.do(t, fiber.MethodPost, "/attendance", internToken, nil); status != fiber.StatusOK {
		t.Fatalf("repeat attendance should return 200, got %d", status)
	}

	status, env = s.do(t, fiber.MethodGet, "/attendance/"+intern.ID, internToken, nil)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, fiber.MethodGet, "/health/live", "", nil)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(raw), "test_http_requests_total") {
		t.Fatalf("unexpected metrics response %d", resp.StatusCode)
	}
}

func TestMalformedIDsAreClientErrors(t *testing.T) {
	s := newServer(t)
	_, internToken := s.login(t, "Ina", domain.RoleIntern)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
	}{
		{"ticket path", fiber.MethodGet, "/tickets/abc", internToken, nil},
		{"task path", fiber.MethodGet, "/tasks/abc", internToken, nil},
		{"batch path", fiber.MethodGet, "/batches/abc", adminToken, nil},
		{"user path", fiber.MethodGet, "/users/abc", adminToken, nil},
		{"chat path", fiber.MethodGet, "/chat/abc", internToken, nil},
		{"chat receiver", fiber.MethodPost, "/chat/messages", internToken, map[string]string{"receiver_id": "abc", "content": "hi"}},
		{"leave path", fiber.MethodPatch, "/leave/abc", adminToken, map[string]string{"status": "Approved"}},
		{"weekly reports path", fiber.MethodGet, "/reports/weekly/users/abc", internToken, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			expectError(t, status, env, fiber.StatusBadRequest, "VALIDATION_FAILED")
		})
	}
}

func TestMarkSeenOverHTTPRequiresParticipant(t *testing.T) {
	s := newServer(t)
	_, internToken := s.login(t, "Ina", domain.RoleIntern)
	_, outsiderToken := s.login(t, "Olga", domain.RoleIntern)

	status, env := s.do(t, fiber.MethodPost, "/tickets", internToken, map[string]string{"title": "Mail", "description": "Quota"})
	if status != fiber.StatusCreated {
		t.Fatalf("create ticket: %d %+v", status, env.Error)
	}
	ticket := decode[struct {
		ID string `json:"id"`
	}](t, env)

	status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/seen", outsiderToken, nil)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")

	if status, env = s.do(t, fiber.MethodPost, "/tickets/"+ticket.ID+"/seen", internToken, nil); status != fiber.StatusOK {
		t.Fatalf("mark seen: %d %+v", status, env.Error)
	}
}

func TestLeaveOverHTTP(t *testing.T) {
	s := newServer(t)
	intern, internToken := s.login(t, "Ina", domain.RoleIntern)
	_, otherToken := s.login(t, "Otto", domain.RoleIntern)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)

	status, env := s.do(t, fiber.MethodPost, "/leave", internToken, map[string]any{
		"leave_type": "Sick Leave",
		"start_date": "2024-03-04",
		"end_date":   "2024-03-05",
		"reason":     "Flu",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("apply leave: %d %+v", status, env.Error)
	}
	leave := decode[map[string]any](t, env)
	if leave["status"] != "Pending" || leave["days"] != float64(2) || leave["start_date"] != "2024-03-04" {
		t.Fatalf("unexpected leave %v", leave)
	}
	id := leave["id"].(string)

	status, env = s.do(t, fiber.MethodPost, "/leave", internToken, map[string]any{
		"leave_type": "Sick Leave",
		"start_date": "4th of March",
		"end_date":   "2024-03-05",
		"reason":     "Flu",
	})
	expectError(t, status, env, fiber.StatusBadRequest, "VALIDATION_FAILED")

	status, env = s.do(t, fiber.MethodGet, "/leave", internToken, nil)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")
	status, env = s.do(t, fiber.MethodPatch, "/leave/"+id, otherToken, map[string]any{"status": "Approved"})
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")

	status, env = s.do(t, fiber.MethodPatch, "/leave/"+id, adminToken, map[string]any{"status": "Approved"})
	if status != fiber.StatusOK {
		t.Fatalf("approve leave: %d %+v", status, env.Error)
	}

	status, env = s.do(t, fiber.MethodGet, "/leave?status=Approved", adminToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list leave: %d %+v", status, env.Error)
	}
	all := decode[[]map[string]any](t, env)
	if len(all) != 1 || all[0]["intern_name"] != "Ina" || all[0]["intern_email"] != intern.Email {
		t.Fatalf("unexpected admin listing %v", all)
	}

	status, env = s.do(t, fiber.MethodGet, "/leave/mine", otherToken, nil)
	if status != fiber.StatusOK || len(decode[[]map[string]any](t, env)) != 0 {
		t.Fatalf("other intern must see no leave, got %d %s", status, env.Data)
	}
}

func TestWeeklyReportsAndInternExport(t *testing.T) {
	s := newServer(t)
	intern, internToken := s.login(t, "Ina", domain.RoleIntern)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)
	_, hrToken := s.login(t, "Hank", domain.RoleHR)

	status, env := s.do(t, fiber.MethodPost, "/reports/weekly", internToken, map[string]any{
		"tasks_completed": "Login page",
		"tasks_next_week": "Signup page",
		"self_assessment": "Good",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("submit report: %d %+v", status, env.Error)
	}
	if report := decode[map[string]any](t, env); report["week_of"] != "2024-02-26" || report["employee_name"] != "Ina" {
		t.Fatalf("unexpected report %v", report)
	}

	status, env = s.do(t, fiber.MethodGet, "/reports/weekly", internToken, nil)
	expectError(t, status, env, fiber.StatusForbidden, "FORBIDDEN")
	status, env = s.do(t, fiber.MethodGet, "/reports/weekly/users/"+intern.ID, internToken, nil)
	if status != fiber.StatusOK || len(decode[[]map[string]any](t, env)) != 1 {
		t.Fatalf("own reports: %d %s", status, env.Data)
	}
	status, env = s.do(t, fiber.MethodGet, "/hr/progress", hrToken, nil)
	expectError(t, status, env, fiber.StatusNotFound, "NOT_FOUND")

	status, env = s.do(t, fiber.MethodGet, "/reports/interns?format=xml", adminToken, nil)
	expectError(t, status, env, fiber.StatusBadRequest, "VALIDATION_FAILED")

	req := httptest.NewRequest(fiber.MethodGet, "/reports/interns?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected export response %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "attachment") {
		t.Fatalf("export must be an attachment, got %q", resp.Header.Get("Content-Disposition"))
	}
	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Name,Email,") || !strings.HasPrefix(lines[1], "Ina,ina@example.com,") {
		t.Fatalf("unexpected csv %q", raw)
	}
}

func TestSignupVerificationOverHTTP(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.login(t, "Ada", domain.RoleAdmin)

	status, env := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Vera",
		"email":    "vera@example.com",
		"password": "secret1",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register: %d %+v", status, env.Error)
	}
	registered := decode[map[string]any](t, env)
	code, _ := registered["verification_code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected verification code, got %v", registered)
	}

	status, env = s.do(t, fiber.MethodGet, "/users/requests", adminToken, nil)
	if status != fiber.StatusOK || len(decode[[]map[string]any](t, env)) != 1 {
		t.Fatalf("expected one unverified intern, got %d %s", status, env.Data)
	}

	status, env = s.do(t, fiber.MethodPost, "/auth/verify", "", map[string]any{"email": "vera@example.com", "code": code})
	if status != fiber.StatusOK {
		t.Fatalf("verify: %d %+v", status, env.Error)
	}
	if user := decode[map[string]any](t, env); user["is_verified"] != true {
		t.Fatalf("expected verified user, got %v", user)
	}
	status, env = s.do(t, fiber.MethodPost, "/auth/verify/resend", "", map[string]any{"email": "vera@example.com"})
	expectError(t, status, env, fiber.StatusConflict, "CONFLICT")
}
