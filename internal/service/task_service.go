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

// ReviewRecorder observes review decisions.
type ReviewRecorder interface {
	RecordReview(decision string)
}

// TaskService owns tasks, submissions and the points ranking.
type TaskService struct {
	tx           repository.TxManager
	tasks        repository.TaskRepository
	submissions  repository.SubmissionRepository
	users        repository.UserRepository
	batches      repository.BatchRepository
	associations repository.AssociationRepository
	dispatcher   events.Dispatcher
	recorder     ReviewRecorder
	logger       *zap.Logger
	now          func() time.Time
}

// TaskDependencies bundles repositories for the task service.
type TaskDependencies struct {
	TxManager       repository.TxManager
	TaskRepo        repository.TaskRepository
	SubmissionRepo  repository.SubmissionRepository
	UserRepo        repository.UserRepository
	BatchRepo       repository.BatchRepository
	AssociationRepo repository.AssociationRepository
	Dispatcher      events.Dispatcher
	Recorder        ReviewRecorder
	Logger          *zap.Logger
	Now             func() time.Time
}

// TaskCreateInput describes a new task.
type TaskCreateInput struct {
	AssignedTo  string
	Title       string
	Description string
	Type        domain.TaskType
	StartDate   time.Time
	EndDate     time.Time
}

// TaskUpdateInput lists the fields a task update may change. Nil means unchanged.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Type        *domain.TaskType
	StartDate   *time.Time
	EndDate     *time.Time
}

// SubmissionInput is the payload of a task submission.
type SubmissionInput struct {
	Comments       string
	FileURL        string
	ImageURL       string
	Methods        string
	Results        string
	Challenges     string
	TimeSpent      string
	GithubLink     string
	ExternalLink   string
	SelfEvaluation string
}

// ReviewResult reports the outcome of a review.
type ReviewResult struct {
	Submission *domain.Submission
	Task       *domain.Task
	Delta      int
	OnTime     bool
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tx:           deps.TxManager,
		tasks:        deps.TaskRepo,
		submissions:  deps.SubmissionRepo,
		users:        deps.UserRepo,
		batches:      deps.BatchRepo,
		associations: deps.AssociationRepo,
		dispatcher:   deps.Dispatcher,
		recorder:     deps.Recorder,
		logger:       loggerOrNop(deps.Logger),
		now:          nowOrDefault(deps.Now),
	}
}

// CreateTask assigns a task to a user. When the user belongs to a batch the
// batch gains a task link and its task counter grows.
func (s *TaskService) CreateTask(ctx context.Context, actorID string, input TaskCreateInput) (*domain.Task, error) {
	task := &domain.Task{
		AssignedTo:  strings.TrimSpace(input.AssignedTo),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Type:        input.Type,
		Status:      domain.TaskStatusPending,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		assignee, err := s.users.GetByID(ctx, task.AssignedTo)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": task.AssignedTo})
		}
		if err := s.tasks.Create(ctx, task); err != nil {
			return apperrors.MapError(err)
		}
		if assignee.BatchID == nil {
			return nil
		}
		link := &domain.TaskLink{
			BatchID:    *assignee.BatchID,
			TaskID:     task.ID,
			Status:     domain.TaskStatusPending,
			AssignedTo: task.AssignedTo,
		}
		if err := s.batches.AddTaskLink(ctx, link); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(s.batches.AdjustCounters(ctx, link.BatchID, 1, 0))
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventTaskAssigned, task.ID, strPtr(actorID), s.now(),
		events.TaskAssignedPayload{AssignedTo: task.AssignedTo, Title: task.Title, EndDate: task.EndDate}))
	return task, nil
}

// ListTasks returns every task to staff and own tasks to interns.
func (s *TaskService) ListTasks(ctx context.Context, actor Actor) ([]domain.Task, error) {
	var filter *string
	if !actor.IsStaff() {
		filter = strPtr(actor.ID)
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// GetTask loads one task visible to the actor.
func (s *TaskService) GetTask(ctx context.Context, actor Actor, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", map[string]any{"task_id": taskID})
	}
	if !actor.IsStaff() && task.AssignedTo != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return task, nil
}

// UpdateTask applies the allow-listed fields of input.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, input TaskUpdateInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "task", map[string]any{"task_id": taskID})
		}
		if input.Title != nil {
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			task.Description = strings.TrimSpace(*input.Description)
		}
		if input.Type != nil {
			task.Type = *input.Type
		}
		if input.StartDate != nil {
			task.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			task.EndDate = *input.EndDate
		}
		if err := validateTask(task); err != nil {
			return err
		}
		task.UpdatedAt = s.now()
		return apperrors.MapError(s.tasks.Update(ctx, task))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task with its submission and batch link, keeping the
// batch counters in step.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.tasks.GetByIDForUpdate(ctx, taskID); err != nil {
			return notFoundOr(err, "task", map[string]any{"task_id": taskID})
		}
		link, err := s.batches.GetTaskLinkByTask(ctx, taskID)
		switch {
		case err == nil:
			completed := 0
			if link.Status == domain.TaskStatusCompleted {
				completed = -1
			}
			if err := s.batches.AdjustCounters(ctx, link.BatchID, -1, completed); err != nil {
				return apperrors.MapError(err)
			}
		case !isNoRows(err):
			return apperrors.MapError(err)
		}
		return apperrors.MapError(s.tasks.Delete(ctx, taskID))
	})
}

// Submit records the assignee's work for a task. A second submission for the
// same task is a conflict.
func (s *TaskService) Submit(ctx context.Context, userID, taskID string, input SubmissionInput) (*domain.Submission, error) {
	comments := strings.TrimSpace(input.Comments)
	if comments == "" {
		return nil, apperrors.NewValidationError("comments are required", map[string]any{"fields": []string{"comments"}})
	}
	if !validSelfEvaluation(input.SelfEvaluation) {
		return nil, apperrors.NewValidationError("invalid self evaluation", map[string]any{
			"self_evaluation": input.SelfEvaluation,
			"allowed":         domain.SelfEvaluations[1:],
		})
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", map[string]any{"task_id": taskID})
	}
	if task.AssignedTo != userID {
		return nil, apperrors.NewForbidden("task is not assigned to this user")
	}

	sub := &domain.Submission{
		UserID:         userID,
		TaskID:         taskID,
		Comments:       comments,
		FileURL:        strings.TrimSpace(input.FileURL),
		ImageURL:       strings.TrimSpace(input.ImageURL),
		Methods:        input.Methods,
		Results:        input.Results,
		Challenges:     input.Challenges,
		TimeSpent:      input.TimeSpent,
		GithubLink:     strings.TrimSpace(input.GithubLink),
		ExternalLink:   strings.TrimSpace(input.ExternalLink),
		SelfEvaluation: input.SelfEvaluation,
		ReviewStatus:   domain.ReviewPending,
		CreatedAt:      s.now(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.NewConflict("task already submitted", map[string]any{"task_id": taskID, "user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventSubmissionCreated, taskID, strPtr(userID), s.now(),
		events.SubmissionCreatedPayload{UserID: userID, TaskID: taskID, Title: task.Title}))
	return sub, nil
}

// Review records a decision on a submission and applies the point delta. All
// writes happen in one transaction so a second review sees the first.
func (s *TaskService) Review(ctx context.Context, reviewerID, userID, taskID string, decision domain.ReviewStatus) (*ReviewResult, error) {
	if decision != domain.ReviewAccepted && decision != domain.ReviewRejected {
		return nil, apperrors.NewValidationError("invalid review decision", map[string]any{
			"decision": decision,
			"allowed":  []domain.ReviewStatus{domain.ReviewAccepted, domain.ReviewRejected},
		})
	}

	result := &ReviewResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		task, err := s.tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "task", map[string]any{"task_id": taskID})
		}
		if _, err := s.users.GetByIDForUpdate(ctx, userID); err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": userID})
		}
		sub, err := s.submissions.GetByUserAndTaskForUpdate(ctx, userID, taskID)
		if err != nil {
			return notFoundOr(err, "submission", map[string]any{"task_id": taskID, "user_id": userID})
		}
		if sub.Reviewed {
			return apperrors.NewAlreadyReviewed(map[string]any{
				"submission_id": sub.ID,
				"review_status": sub.ReviewStatus,
			})
		}

		onTime := sub.OnTime(task.EndDate)
		delta := domain.RankDelta(decision, task.Type, onTime)

		if delta != 0 {
			if err := s.users.AdjustPoints(ctx, userID, delta); err != nil {
				return apperrors.MapError(err)
			}
		}
		if delta < 0 {
			if err := s.tasks.MarkPenaltyApplied(ctx, task.ID); err != nil {
				return apperrors.MapError(err)
			}
			task.PenaltyApplied = true
		}
		if err := s.submissions.MarkReviewed(ctx, sub.ID, decision); err != nil {
			return apperrors.MapError(err)
		}
		sub.Reviewed = true
		sub.ReviewStatus = decision

		if decision == domain.ReviewAccepted {
			if err := s.completeTask(ctx, task); err != nil {
				return err
			}
		}

		result.Submission = sub
		result.Task = task
		result.Delta = delta
		result.OnTime = onTime
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordReview(string(decision))
	}
	s.logger.Info("submission reviewed",
		zap.String("task_id", taskID),
		zap.String("user_id", userID),
		zap.String("decision", string(decision)),
		zap.Int("delta", result.Delta),
	)
	publish(ctx, s.dispatcher, events.New(events.EventSubmissionReviewed, taskID, strPtr(reviewerID), s.now(),
		events.SubmissionReviewedPayload{
			UserID:   userID,
			TaskID:   taskID,
			Title:    result.Task.Title,
			Decision: decision,
			Delta:    result.Delta,
		}))
	return result, nil
}

func (s *TaskService) completeTask(ctx context.Context, task *domain.Task) error {
	if err := s.tasks.SetStatus(ctx, task.ID, domain.TaskStatusCompleted); err != nil {
		return apperrors.MapError(err)
	}
	task.Status = domain.TaskStatusCompleted

	link, err := s.batches.GetTaskLinkByTask(ctx, task.ID)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if link.Status == domain.TaskStatusCompleted {
		return nil
	}
	if err := s.batches.SetTaskLinkStatus(ctx, task.ID, domain.TaskStatusCompleted); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.batches.AdjustCounters(ctx, link.BatchID, 0, 1))
}

// DeleteSubmission removes the submission of a task and reopens it. The batch
// completed counter drops by one, never below zero. Points already granted are
// kept.
func (s *TaskService) DeleteSubmission(ctx context.Context, taskID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.tasks.GetByIDForUpdate(ctx, taskID); err != nil {
			return notFoundOr(err, "task", map[string]any{"task_id": taskID})
		}
		removed, err := s.submissions.DeleteByTask(ctx, taskID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if removed == 0 {
			return apperrors.NewNotFound("submission", map[string]any{"task_id": taskID})
		}
		if err := s.tasks.SetStatus(ctx, taskID, domain.TaskStatusPending); err != nil {
			return apperrors.MapError(err)
		}

		link, err := s.batches.GetTaskLinkByTask(ctx, taskID)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return apperrors.MapError(err)
		}
		if err := s.batches.SetTaskLinkStatus(ctx, taskID, domain.TaskStatusPending); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.MapError(s.batches.AdjustCounters(ctx, link.BatchID, 0, -1))
	})
}

// ListSubmissions returns every submission, newest first.
func (s *TaskService) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.submissions.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}

// ListSubmissionsForHR returns submissions of the interns associated with hrID.
func (s *TaskService) ListSubmissionsForHR(ctx context.Context, hrID string) ([]domain.Submission, error) {
	assoc, err := s.associations.GetByHR(ctx, hrID)
	if err != nil {
		if isNoRows(err) {
			return []domain.Submission{}, nil
		}
		return nil, apperrors.MapError(err)
	}
	subs, err := s.submissions.ListByUsers(ctx, assoc.InternIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}

// Leaderboard ranks interns by total points.
func (s *TaskService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func validateTask(task *domain.Task) error {
	missing := []string{}
	if task.AssignedTo == "" {
		missing = append(missing, "assigned_to")
	}
	if task.Title == "" {
		missing = append(missing, "title")
	}
	if task.Description == "" {
		missing = append(missing, "description")
	}
	if task.StartDate.IsZero() {
		missing = append(missing, "start_date")
	}
	if task.EndDate.IsZero() {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !task.Type.Valid() {
		return apperrors.NewValidationError("invalid task type", map[string]any{
			"task_type": task.Type,
			"allowed":   []domain.TaskType{domain.TaskTypeTechnical, domain.TaskTypeSocial},
		})
	}
	if task.EndDate.Before(task.StartDate) {
		return apperrors.NewValidationError("end date must not precede start date", nil)
	}
	return nil
}

func validSelfEvaluation(v string) bool {
	for _, allowed := range domain.SelfEvaluations {
		if v == allowed {
			return true
		}
	}
	return false
}
