package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/users/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	res := &model.LoginResult{}
	ok, err := decode(data, res)
	if err != nil {
		return nil, err
	}
	if !ok || res.Token == "" {
		return nil, fmt.Errorf("%w: login response without token", common.ErrDecode)
	}
	return res, nil
}

func (c *Client) SignupHunter(ctx context.Context, signup model.HunterSignup) error {
	_, _, err := c.do(ctx, http.MethodPost, "/hunters", "", signup)
	return err
}

// listTasks treats an empty body as an empty list.
func (c *Client) listTasks(ctx context.Context, token, path string) ([]model.Task, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	data, _, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	tasks := []model.Task{}
	if _, err := decode(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil { // body was "null"
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) AllTasks(ctx context.Context, token string) ([]model.Task, error) {
	return c.listTasks(ctx, token, "/api/task")
}

func (c *Client) TasksByPO(ctx context.Context, token, poID string) ([]model.Task, error) {
	return c.listTasks(ctx, token, "/api/task/po/"+seg(poID))
}

func (c *Client) TasksByHunter(ctx context.Context, token, hunterID string) ([]model.Task, error) {
	return c.listTasks(ctx, token, "/api/task/hunter/"+seg(hunterID))
}

func (c *Client) TasksNotApplied(ctx context.Context, token, hunterID string) ([]model.Task, error) {
	return c.listTasks(ctx, token, "/api/task/not-applied/"+seg(hunterID))
}

func (c *Client) FilterTasks(ctx context.Context, token string, filter model.TaskFilter) ([]model.Task, error) {
	path := "/api/task/filter"
	if q := filter.Encode(); q != "" {
		path += "?" + q
	}
	return c.listTasks(ctx, token, path)
}

func (c *Client) Task(ctx context.Context, token, taskID string) (*model.Task, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	data, _, err := c.do(ctx, http.MethodGet, "/api/task/"+seg(taskID), token, nil)
	if err != nil {
		return nil, err
	}
	task := &model.Task{}
	ok, err := decode(data, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, common.ErrNotFound)
	}
	return task, nil
}

func (c *Client) CreateTask(ctx context.Context, token, poID string, draft model.TaskDraft) error {
	if err := requireToken(token); err != nil {
		return err
	}
	_, _, err := c.do(ctx, http.MethodPost, "/api/task/"+seg(poID), token, draft)
	return err
}

// ApplyToTask returns the marketplace's plain-text confirmation.
func (c *Client) ApplyToTask(ctx context.Context, token, taskID, hunterID string) (string, error) {
	if err := requireToken(token); err != nil {
		return "", err
	}
	path := "/api/task/" + seg(taskID) + "/applying/" + seg(hunterID)
	data, _, err := c.do(ctx, http.MethodPost, path, token, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Client) CompleteTask(ctx context.Context, token, taskID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	_, _, err := c.do(ctx, http.MethodPut, "/api/task/"+seg(taskID)+"/complete", token, nil)
	return err
}

// Applicants lists hunters that applied to a task. The marketplace answers
// 204 or 404 when there are none, so any non-2xx status is an empty list.
func (c *Client) Applicants(ctx context.Context, token, taskID string) ([]model.Applicant, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/api/task/"+seg(taskID)+"/hunters", token, nil)
	if err != nil {
		var upErr *common.UpstreamError
		if errors.As(err, &upErr) {
			return []model.Applicant{}, nil
		}
		return nil, err
	}
	applicants := []model.Applicant{}
	if _, err := decode(data, &applicants); err != nil {
		return nil, err
	}
	if applicants == nil {
		applicants = []model.Applicant{}
	}
	return applicants, nil
}

func (c *Client) Hunter(ctx context.Context, token, hunterID string) (*model.HunterProfile, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	data, _, err := c.do(ctx, http.MethodGet, "/api/hunters/"+seg(hunterID), token, nil)
	if err != nil {
		return nil, err
	}
	hunter := &model.HunterProfile{}
	ok, err := decode(data, hunter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("hunter %s: %w", hunterID, common.ErrNotFound)
	}
	return hunter, nil
}

func (c *Client) PO(ctx context.Context, token, poID string) (*model.POProfile, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	data, _, err := c.do(ctx, http.MethodGet, "/api/po/"+seg(poID), token, nil)
	if err != nil {
		return nil, err
	}
	po := &model.POProfile{}
	ok, err := decode(data, po)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("po %s: %w", poID, common.ErrNotFound)
	}
	return po, nil
}
