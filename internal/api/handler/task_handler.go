package handler

import (
	"errors"
	"net/http"
	"taskhunt_web/internal/api/middleware"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService *service.TaskService
	pages       *Pages
}

func NewTaskHandler(ts *service.TaskService, pages *Pages) *TaskHandler {
	return &TaskHandler{taskService: ts, pages: pages}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(h.pages.Error))
		r.Get("/home", h.home)
		r.Get("/tasks/filter", h.filter)
		r.Get("/mytasks", h.myTasks)
		r.Get("/tasks/{taskID}", h.detail)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.pages.Error, model.RoleHunter))
		r.Get("/apply", h.applyBoard)
		r.Post("/tasks/{taskID}/apply", h.apply)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.pages.Error, model.RolePO))
		r.Get("/tasks/new", h.newForm)
		r.Post("/tasks", h.create)
		r.Post("/tasks/{taskID}/complete", h.complete)
		r.Get("/tasks/{taskID}/hunters", h.applicants)
		r.Get("/hunters/{hunterID}", h.hunter)
	})
}

type BoardPage struct {
	View           model.View         `json:"view"`
	Tasks          []model.Task       `json:"tasks"`
	Error          string             `json:"error,omitempty"`
	Query          string             `json:"query,omitempty"`
	Filter         *model.TaskFilter  `json:"filter,omitempty"`
	Tags           []string           `json:"-"`
	Statuses       []model.TaskStatus `json:"-"`
	SelectedStatus string             `json:"-"`
	SelectedTags   []string           `json:"-"`
}

type TaskForm struct {
	Request service.CreateTaskRequest `json:"request"`
	Tags    []string                  `json:"-"`
}

type TaskDetail struct {
	Task *model.Task `json:"task"`
}

type ApplicantsPage struct {
	TaskID     string            `json:"task_id"`
	Applicants []model.Applicant `json:"applicants"`
}

var boardTitles = map[model.View]string{
	model.ViewHome:    "Tasks",
	model.ViewApply:   "Apply to tasks",
	model.ViewMyTasks: "My tasks",
}

// showBoard renders a board. A failed load still shows the board's previous
// list next to the error; only a load that produced no board is an error page.
func (h *TaskHandler) showBoard(w http.ResponseWriter, r *http.Request, view model.View, board *model.Board, err error, query string) {
	if board == nil {
		h.pages.Error(w, r, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = common.HTTPStatusFromError(err)
	}

	tasks := board.Tasks
	if view == model.ViewApply {
		tasks = service.MatchTitle(tasks, query)
	}
	data := BoardPage{
		View:     view,
		Tasks:    tasks,
		Error:    board.Error,
		Query:    query,
		Filter:   board.Filter,
		Tags:     model.Tags,
		Statuses: []model.TaskStatus{model.TaskStatusOpen, model.TaskStatusInProgress, model.TaskStatusDone},
	}
	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	if f := board.Filter; f != nil {
		if f.Status != nil {
			data.SelectedStatus = string(*f.Status)
		}
		data.SelectedTags = f.Tags
	}
	h.pages.Render(w, r, status, "board", boardTitles[view], string(view), data)
}

func (h *TaskHandler) home(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	board, err := h.taskService.LoadBoard(r.Context(), session, model.ViewHome)
	h.showBoard(w, r, model.ViewHome, board, err, "")
}

func (h *TaskHandler) filter(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	session := middleware.GetSessionFromContext(r.Context())
	board, err := h.taskService.Filter(r.Context(), session, filter)
	h.showBoard(w, r, model.ViewHome, board, err, "")
}

func (h *TaskHandler) myTasks(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	board, err := h.taskService.LoadBoard(r.Context(), session, model.ViewMyTasks)
	h.showBoard(w, r, model.ViewMyTasks, board, err, "")
}

func (h *TaskHandler) applyBoard(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	board, err := h.taskService.LoadBoard(r.Context(), session, model.ViewApply)
	h.showBoard(w, r, model.ViewApply, board, err, r.URL.Query().Get("q"))
}

func (h *TaskHandler) detail(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	task, err := h.taskService.Task(r.Context(), session, chi.URLParam(r, "taskID"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "task_detail", task.Title, "", TaskDetail{Task: task})
}

// mutationDone finishes apply and complete. Marketplace failures were
// already queued as an error flash, so browsers go back to the page they
// came from; other failures and JSON callers get an error response.
func (h *TaskHandler) mutationDone(w http.ResponseWriter, r *http.Request, next string, payload any, err error) {
	if err != nil && (common.WantsJSON(r) || !errors.Is(err, common.ErrUpstream)) {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Redirect(w, r, next, payload)
}

func (h *TaskHandler) apply(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	taskID := chi.URLParam(r, "taskID")
	msg, err := h.taskService.Apply(r.Context(), session, taskID)
	next := localPath(r.PostFormValue("next"), "/apply")
	h.mutationDone(w, r, next, map[string]string{"message": msg, "task_id": taskID}, err)
}

func (h *TaskHandler) complete(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	taskID := chi.URLParam(r, "taskID")
	err := h.taskService.Complete(r.Context(), session, taskID)
	next := localPath(r.PostFormValue("next"), "/mytasks")
	h.mutationDone(w, r, next, map[string]string{"message": "Task completed", "task_id": taskID}, err)
}

func (h *TaskHandler) newForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "task_new", "New task", "new", TaskForm{Tags: model.Tags})
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	isJSON, err := readBody(r, &req)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	if !isJSON {
		req = service.CreateTaskRequest{
			Title:                   r.PostFormValue("title"),
			Description:             r.PostFormValue("description"),
			Deadline:                r.PostFormValue("deadline"),
			Reward:                  r.PostFormValue("reward"),
			NumberOfMeetings:        r.PostFormValue("numberOfMeetings"),
			NumberOfHuntersRequired: r.PostFormValue("numberOfHuntersRequired"),
			RatingRequired:          r.PostFormValue("ratingRequired"),
			Tags:                    r.PostForm["tags"],
		}
	}

	session := middleware.GetSessionFromContext(r.Context())
	if err := h.taskService.Create(r.Context(), session, req); err != nil {
		h.pages.Form(w, r, "task_new", "New task", "new", TaskForm{Request: req, Tags: model.Tags}, err)
		return
	}
	h.pages.Redirect(w, r, "/mytasks", map[string]string{"message": "Task created"})
}

func (h *TaskHandler) applicants(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	taskID := chi.URLParam(r, "taskID")
	applicants, err := h.taskService.Applicants(r.Context(), session, taskID)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "applicants", "Applicants", "mytasks", ApplicantsPage{TaskID: taskID, Applicants: applicants})
}

func (h *TaskHandler) hunter(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	hunter, err := h.taskService.Hunter(r.Context(), session, chi.URLParam(r, "hunterID"))
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "hunter", hunter.Name, "", hunter)
}
