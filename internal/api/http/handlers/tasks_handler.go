package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// TasksHandler serves tasks, submissions and reviews.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// CreateTask POST /tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("assigned_to", req.AssignedTo); err != nil {
		return err
	}
	task, err := h.service.CreateTask(c.UserContext(), p.UserID(), service.TaskCreateInput{
		AssignedTo:  req.AssignedTo,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.TaskType(req.TaskType),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return err
	}
	return created(c, taskResponse(task))
}

// ListTasks GET /tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.ListTasks(c.UserContext(), actorOf(p))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return data(c, items)
}

// GetTask GET /tasks/:id.
func (h *TasksHandler) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	task, err := h.service.GetTask(c.UserContext(), actorOf(p), id)
	if err != nil {
		return err
	}
	return data(c, taskResponse(task))
}

// UpdateTask PATCH /tasks/:id.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.TaskType != nil {
		kind := domain.TaskType(*req.TaskType)
		input.Type = &kind
	}
	task, err := h.service.UpdateTask(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return data(c, taskResponse(task))
}

// DeleteTask DELETE /tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit POST /tasks/:id/submission.
func (h *TasksHandler) Submit(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitTaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sub, err := h.service.Submit(c.UserContext(), p.UserID(), id, service.SubmissionInput{
		Comments:       req.Comments,
		FileURL:        req.FileURL,
		ImageURL:       req.ImageURL,
		Methods:        req.Methods,
		Results:        req.Results,
		Challenges:     req.Challenges,
		TimeSpent:      req.TimeSpent,
		GithubLink:     req.GithubLink,
		ExternalLink:   req.ExternalLink,
		SelfEvaluation: req.SelfEvaluation,
	})
	if err != nil {
		return err
	}
	return created(c, submissionResponse(sub))
}

// DeleteSubmission DELETE /tasks/:id/submission.
func (h *TasksHandler) DeleteSubmission(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteSubmission(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Review POST /tasks/:id/review.
func (h *TasksHandler) Review(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("user_id", req.UserID); err != nil {
		return err
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	result, err := h.service.Review(c.UserContext(), p.UserID(), req.UserID, id, domain.ReviewStatus(req.Decision))
	if err != nil {
		return err
	}
	return data(c, dto.ReviewResponse{
		Submission: submissionResponse(result.Submission),
		TaskStatus: string(result.Task.Status),
		Delta:      result.Delta,
		OnTime:     result.OnTime,
	})
}

// ListSubmissions GET /submissions. HR users see their own interns only.
func (h *TasksHandler) ListSubmissions(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var subs []domain.Submission
	if p.Role.IsHR() {
		subs, err = h.service.ListSubmissionsForHR(c.UserContext(), p.UserID())
	} else {
		subs, err = h.service.ListSubmissions(c.UserContext())
	}
	if err != nil {
		return err
	}
	items := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, submissionResponse(&subs[i]))
	}
	return data(c, items)
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             t.ID,
		AssignedTo:     t.AssignedTo,
		Title:          t.Title,
		Description:    t.Description,
		TaskType:       string(t.Type),
		Status:         string(t.Status),
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		PenaltyApplied: t.PenaltyApplied,
		CreatedAt:      t.CreatedAt,
	}
}

func submissionResponse(s *domain.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		TaskID:         s.TaskID,
		Comments:       s.Comments,
		FileURL:        s.FileURL,
		ImageURL:       s.ImageURL,
		Methods:        s.Methods,
		Results:        s.Results,
		Challenges:     s.Challenges,
		TimeSpent:      s.TimeSpent,
		GithubLink:     s.GithubLink,
		ExternalLink:   s.ExternalLink,
		SelfEvaluation: s.SelfEvaluation,
		Reviewed:       s.Reviewed,
		ReviewStatus:   string(s.ReviewStatus),
		CreatedAt:      s.CreatedAt,
	}
}
