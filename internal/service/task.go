package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("forbidden")
)

// TaskStore is the relational store boundary for task records.
type TaskStore interface {
	CreateTask(ctx context.Context, ownerID int64, name, description, status string) (*model.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, ownerID int64, statusFilter string) ([]model.Task, error)
	UpdateTask(ctx context.Context, id int64, name, description, status string) error
	DeleteTask(ctx context.Context, id int64) error
}

type TaskService struct {
	repo TaskStore
	log  *slog.Logger
}

func NewTaskService(repo TaskStore, logger *slog.Logger) *TaskService {
	return &TaskService{repo: repo, log: logger}
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, in model.TaskRequest) (*model.Task, error) {
	task, err := s.repo.CreateTask(ctx, ownerID, in.TaskName, in.Description, in.Status)
	if err != nil {
		s.log.Error("create task failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, ownerID int64, statusFilter string) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, ownerID, statusFilter)
	if err != nil {
		s.log.Error("list tasks failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return tasks, nil
}

// Update overwrites all mutable fields of a task. The requester must own it.
func (s *TaskService) Update(ctx context.Context, taskID, requesterID int64, in model.TaskRequest) error {
	if err := s.authorize(ctx, taskID, requesterID); err != nil {
		return err
	}

	if err := s.repo.UpdateTask(ctx, taskID, in.TaskName, in.Description, in.Status); err != nil {
		s.log.Error("update task failed", "task_id", taskID, "error", err)
		return err
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, requesterID int64) error {
	if err := s.authorize(ctx, taskID, requesterID); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		s.log.Error("delete task failed", "task_id", taskID, "error", err)
		return err
	}
	return nil
}

// authorize loads the task and checks that the requester owns it. The owner
// is set at creation and never changes.
func (s *TaskService) authorize(ctx context.Context, taskID, requesterID int64) error {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrTaskNotFound
		}
		s.log.Error("load task failed", "task_id", taskID, "error", err)
		return err
	}
	if task.UserID != requesterID {
		return ErrForbidden
	}
	return nil
}
