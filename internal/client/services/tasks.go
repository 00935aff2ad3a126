// Package services contains application services for the taskdesk client.
// This file defines the task service: validated CRUD over the task API.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidID     = errors.New("task id must be a UUID")
	ErrAmbiguousID   = errors.New("task id prefix matches more than one task")
	ErrNothingToEdit = errors.New("no changes given")
)

// minPrefix is the shortest id prefix ResolveID will look up.
const minPrefix = 4

// TaskService defines task operations for the CLI.
//
// Inputs are validated before any request is sent: ids must be UUIDs and
// forms must pass models validation.
type TaskService interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, in models.TaskInput) (*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (*models.Task, error)
	ResolveID(ctx context.Context, ref string) (string, error)
}

type taskService struct {
	api client.TaskAPI
}

func NewTaskService(api client.TaskAPI) TaskService {
	return &taskService{api: api}
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		in.Description = nil
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *taskService) Get(ctx context.Context, id string) (*models.Task, error) {
	id, err := checkID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.api.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *taskService) Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	id, err := checkID(id)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, ErrNothingToEdit
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	t, err := s.api.UpdateTask(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	id, err := checkID(id)
	if err != nil {
		return err
	}
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (s *taskService) Toggle(ctx context.Context, id string) (*models.Task, error) {
	id, err := checkID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.api.ToggleTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return t, nil
}

// ResolveID accepts a full id or a unique prefix of one (as printed by
// `tasks list`) and returns the full id.
func (s *taskService) ResolveID(ctx context.Context, ref string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := checkID(ref); err == nil {
		return id, nil
	}
	if len(ref) < minPrefix {
		return "", ErrInvalidID
	}

	tasks, err := s.List(ctx)
	if err != nil {
		return "", err
	}

	match := ""
	for _, t := range tasks {
		if !strings.HasPrefix(strings.ToLower(t.ID), ref) {
			continue
		}
		if match != "" {
			return "", ErrAmbiguousID
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("task %q: %w", ref, client.ErrNotFound)
	}
	return checkID(match)
}

// ShortID is the prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func checkID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u.String(), nil
}
