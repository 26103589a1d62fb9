package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/platform/marketplace"
	"time"

	"go.uber.org/zap"
)

type TaskService struct {
	api      *marketplace.Client
	sessions *SessionService
	log      *zap.Logger
	now      func() time.Time
}

func NewTaskService(api *marketplace.Client, sessions *SessionService, log *zap.Logger) *TaskService {
	return &TaskService{api: api, sessions: sessions, log: log, now: time.Now}
}

type fetchFunc func(ctx context.Context, token, userID string) ([]model.Task, error)

func (s *TaskService) fetcherFor(view model.View, role model.Role) (fetchFunc, error) {
	switch {
	case view == model.ViewHome && role == model.RolePO,
		view == model.ViewMyTasks && role == model.RolePO:
		return withActor(s.api.TasksByPO), nil
	case view == model.ViewHome && role == model.RoleHunter:
		return func(ctx context.Context, token, _ string) ([]model.Task, error) {
			return s.api.AllTasks(ctx, token)
		}, nil
	case view == model.ViewMyTasks && role == model.RoleHunter:
		return withActor(s.api.TasksByHunter), nil
	case view == model.ViewApply && role == model.RoleHunter:
		return withActor(s.api.TasksNotApplied), nil
	}
	return nil, fmt.Errorf("view %s is not available to role %q: %w", view, role, common.ErrForbidden)
}

func withActor(fn func(ctx context.Context, token, userID string) ([]model.Task, error)) fetchFunc {
	return func(ctx context.Context, token, userID string) ([]model.Task, error) {
		if userID == "" {
			return nil, common.ErrMissingActor
		}
		return fn(ctx, token, userID)
	}
}

// LoadBoard refreshes the task list of view for session. A session without
// token fails with ErrMissingToken before any upstream call. Upstream and
// decode failures keep the previous list on the board, set its error and are
// returned alongside the board.
func (s *TaskService) LoadBoard(ctx context.Context, session *model.Session, view model.View) (*model.Board, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("load %s: %w", view, common.ErrMissingToken)
	}
	fetch, err := s.fetcherFor(view, session.Role)
	if err != nil {
		return nil, err
	}
	board := session.Board(view)
	tasks, err := fetch(ctx, session.Token, session.UserID)
	return board, s.settle(ctx, session, board, view, nil, tasks, err)
}

// Filter replaces the home board with the marketplace's filtered list. An
// empty filter leaves the board unfiltered.
func (s *TaskService) Filter(ctx context.Context, session *model.Session, filter model.TaskFilter) (*model.Board, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("filter tasks: %w", common.ErrMissingToken)
	}
	board := session.Board(model.ViewHome)
	tasks, err := s.api.FilterTasks(ctx, session.Token, filter)
	var applied *model.TaskFilter
	if !filter.IsZero() {
		applied = &filter
	}
	return board, s.settle(ctx, session, board, model.ViewHome, applied, tasks, err)
}

// settle stores the outcome of a list fetch. The board's filter only changes
// together with its list, so a failed load keeps both.
func (s *TaskService) settle(ctx context.Context, session *model.Session, board *model.Board, view model.View, filter *model.TaskFilter, tasks []model.Task, err error) error {
	if err != nil {
		s.log.Warn("Task list fetch failed", zap.String("view", string(view)), zap.String("user_id", session.UserID), zap.Error(err))
		board.Fail(common.Message(err))
		s.sessions.Save(ctx, session)
		return fmt.Errorf("load %s: %w", view, err)
	}
	board.Replace(tasks, s.now())
	board.Filter = filter
	s.sessions.Save(ctx, session)
	return nil
}

// MatchTitle filters tasks by a case-insensitive title substring. An empty
// query matches everything.
func MatchTitle(tasks []model.Task, query string) []model.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tasks
	}
	matched := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), query) {
			matched = append(matched, t)
		}
	}
	return matched
}

const defaultApplyMessage = "Hunter applied successfully"

// Apply registers the session's hunter on a task. On success the task leaves
// every board and a success flash carries the marketplace's answer. On
// failure an error flash is queued and the boards are left alone.
func (s *TaskService) Apply(ctx context.Context, session *model.Session, taskID string) (string, error) {
	if err := requireActor(session); err != nil {
		return "", err
	}
	if session.Role != model.RoleHunter {
		return "", fmt.Errorf("only hunters can apply: %w", common.ErrForbidden)
	}

	msg, err := s.api.ApplyToTask(ctx, session.Token, taskID, session.UserID)
	if err != nil {
		s.log.Warn("Apply failed", zap.String("task_id", taskID), zap.String("user_id", session.UserID), zap.Error(err))
		session.AddFlash(model.FlashError, "Could not apply to task", common.Message(err))
		s.sessions.Save(ctx, session)
		return "", fmt.Errorf("apply to task %s: %w", taskID, err)
	}
	if msg == "" {
		msg = defaultApplyMessage
	}
	session.EachBoard(func(_ model.View, b *model.Board) {
		b.Remove(model.ID(taskID))
	})
	session.AddFlash(model.FlashSuccess, "Application sent", msg)
	s.sessions.Save(ctx, session)
	return msg, nil
}

// Complete marks a task DONE upstream and on every board.
func (s *TaskService) Complete(ctx context.Context, session *model.Session, taskID string) error {
	if err := requireActor(session); err != nil {
		return err
	}
	if session.Role != model.RolePO {
		return fmt.Errorf("only product owners can complete tasks: %w", common.ErrForbidden)
	}

	if err := s.api.CompleteTask(ctx, session.Token, taskID); err != nil {
		s.log.Warn("Complete failed", zap.String("task_id", taskID), zap.Error(err))
		session.AddFlash(model.FlashError, "Could not complete task", common.Message(err))
		s.sessions.Save(ctx, session)
		return fmt.Errorf("complete task %s: %w", taskID, err)
	}
	session.EachBoard(func(_ model.View, b *model.Board) {
		b.MarkDone(model.ID(taskID))
	})
	session.AddFlash(model.FlashSuccess, "Task completed", "")
	s.sessions.Save(ctx, session)
	return nil
}

// CreateTaskRequest is the task form as submitted. Numbers stay strings
// until Validate so a bad field can be reported instead of dropped.
type CreateTaskRequest struct {
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	Deadline                string   `json:"deadline"`
	Reward                  string   `json:"reward"`
	NumberOfMeetings        string   `json:"numberOfMeetings"`
	NumberOfHuntersRequired string   `json:"numberOfHuntersRequired"`
	RatingRequired          string   `json:"ratingRequired"`
	Tags                    []string `json:"tags"`
}

var deadlineLayouts = []string{"2006-01-02T15:04", time.RFC3339, "2006-01-02"}

// Validate checks required fields and returns the body sent upstream.
func (r CreateTaskRequest) Validate() (model.TaskDraft, error) {
	v := &common.ValidationError{}
	draft := model.TaskDraft{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Deadline:    strings.TrimSpace(r.Deadline),
	}
	if draft.Title == "" {
		v.Add("title", "Title is required")
	}
	if draft.Description == "" {
		v.Add("description", "Description is required")
	}
	if draft.Deadline == "" {
		v.Add("deadline", "Deadline is required")
	} else if !parsesAsDeadline(draft.Deadline) {
		v.Add("deadline", "Deadline is not a valid date")
	}

	draft.Reward = positiveInt(v, "reward", "Reward", r.Reward)
	draft.NumberOfMeetings = positiveInt(v, "numberOfMeetings", "Number of meetings", r.NumberOfMeetings)
	draft.NumberOfHuntersRequired = positiveInt(v, "numberOfHuntersRequired", "Number of hunters", r.NumberOfHuntersRequired)
	draft.RatingRequired = positiveInt(v, "ratingRequired", "Rating required", r.RatingRequired)

	draft.Tags = make([]string, 0, len(r.Tags))
	seen := make(map[string]bool, len(r.Tags))
	for _, tag := range r.Tags {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if !model.IsKnownTag(tag) {
			v.Add("tags", fmt.Sprintf("Unknown tag %s", tag))
			continue
		}
		seen[tag] = true
		draft.Tags = append(draft.Tags, tag)
	}

	if err := v.OrNil(); err != nil {
		return model.TaskDraft{}, err
	}
	return draft, nil
}

func parsesAsDeadline(s string) bool {
	for _, layout := range deadlineLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func positiveInt(v *common.ValidationError, field, label, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, label+" is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(field, label+" must be a whole number")
		return 0
	}
	if n < 1 {
		v.Add(field, label+" must be at least 1")
		return 0
	}
	return n
}

// Create posts a new task for the session's product owner.
func (s *TaskService) Create(ctx context.Context, session *model.Session, req CreateTaskRequest) error {
	if err := requireActor(session); err != nil {
		return err
	}
	if session.Role != model.RolePO {
		return fmt.Errorf("only product owners can create tasks: %w", common.ErrForbidden)
	}
	draft, err := req.Validate()
	if err != nil {
		return err
	}
	if err := s.api.CreateTask(ctx, session.Token, session.UserID, draft); err != nil {
		s.log.Warn("Create task failed", zap.String("user_id", session.UserID), zap.Error(err))
		return fmt.Errorf("create task: %w", err)
	}
	session.AddFlash(model.FlashSuccess, "Task created", draft.Title)
	s.sessions.Save(ctx, session)
	return nil
}

// Task loads one task. A task still on one of the session's boards is used
// when the marketplace cannot be reached.
func (s *TaskService) Task(ctx context.Context, session *model.Session, taskID string) (*model.Task, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("load task: %w", common.ErrMissingToken)
	}
	task, err := s.api.Task(ctx, session.Token, taskID)
	if err == nil {
		return task, nil
	}
	var upErr *common.UpstreamError
	gone := errors.As(err, &upErr) && upErr.Status == http.StatusNotFound
	if errors.Is(err, common.ErrUpstream) && !gone {
		var cached *model.Task
		session.EachBoard(func(_ model.View, b *model.Board) {
			if t, ok := b.Find(model.ID(taskID)); ok && cached == nil {
				cached = &t
			}
		})
		if cached != nil {
			s.log.Warn("Task fetch failed, using board copy", zap.String("task_id", taskID), zap.Error(err))
			return cached, nil
		}
	}
	return nil, fmt.Errorf("load task %s: %w", taskID, err)
}

// Applicants lists hunters that applied to one of the session's tasks.
func (s *TaskService) Applicants(ctx context.Context, session *model.Session, taskID string) ([]model.Applicant, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("load applicants: %w", common.ErrMissingToken)
	}
	if session.Role != model.RolePO {
		return nil, fmt.Errorf("only product owners can see applicants: %w", common.ErrForbidden)
	}
	applicants, err := s.api.Applicants(ctx, session.Token, taskID)
	if err != nil {
		return nil, fmt.Errorf("load applicants of %s: %w", taskID, err)
	}
	return applicants, nil
}

// Hunter loads a hunter card for a product owner reviewing applicants.
func (s *TaskService) Hunter(ctx context.Context, session *model.Session, hunterID string) (*model.HunterProfile, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("load hunter: %w", common.ErrMissingToken)
	}
	hunter, err := s.api.Hunter(ctx, session.Token, hunterID)
	if err != nil {
		return nil, fmt.Errorf("load hunter %s: %w", hunterID, err)
	}
	return hunter, nil
}

func requireActor(session *model.Session) error {
	if !session.HasToken() {
		return common.ErrMissingToken
	}
	if session.UserID == "" {
		return common.ErrMissingActor
	}
	return nil
}
