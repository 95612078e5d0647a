package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"tugas-go/internal/models"
	"tugas-go/internal/repository"
)

const (
	msgInvalidTaskID = "Invalid task ID format"
	msgTaskNotFound  = "Task not found"
)

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// TaskCache is a read-through cache. Fill must not replace an entry that
// Invalidate wrote after the caller's database read started.
type TaskCache interface {
	Get(ctx context.Context, id string) (*models.Task, bool)
	Fill(ctx context.Context, t *models.Task)
	Invalidate(ctx context.Context, ids ...string)
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*models.Task, bool) { return nil, false }
func (noCache) Fill(context.Context, *models.Task)   {}
func (noCache) Invalidate(context.Context, ...string) {}

type CreateTaskInput struct {
	Title       string
	Description string
	UserID      string
	IsCompleted bool
	DueDate     string
}

// UpdateTaskInput holds the fields to change; nil means untouched. A
// non-nil empty DueDate clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
	DueDate     *string
}

type TaskService struct {
	tasks    TaskStore
	cache    TaskCache
	validate *validator.Validate
}

// NewTaskService builds the service; cache may be nil.
func NewTaskService(tasks TaskStore, cache TaskCache, validate *validator.Validate) *TaskService {
	if cache == nil {
		cache = noCache{}
	}
	return &TaskService{tasks: tasks, cache: cache, validate: validate}
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, validationError(msgAllFieldsRequired)
	}
	if err := check(s.validate, taskRules{Title: &title, Description: &description}); err != nil {
		return nil, err
	}
	ownerID := strings.TrimSpace(in.UserID)
	if !validID(ownerID) {
		return nil, validationError(msgInvalidUserID)
	}
	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		IsCompleted: in.IsCompleted,
		DueDate:     due,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, validationError(msgUserNotFound)
		}
		return nil, internalError(err)
	}
	return task, nil
}

func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if !validID(id) {
		return nil, validationError(msgInvalidTaskID)
	}
	if task, ok := s.cache.Get(ctx, id); ok {
		return task, nil
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgTaskNotFound)
		}
		return nil, internalError(err)
	}
	s.cache.Fill(ctx, task)
	return task, nil
}

// ListByOwner returns the owner's tasks; an owner without tasks gets an empty list.
func (s *TaskService) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	if !validID(ownerID) {
		return nil, validationError(msgInvalidUserID)
	}
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, internalError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput) (*models.Task, error) {
	if !validID(id) {
		return nil, validationError(msgInvalidTaskID)
	}

	var rules taskRules
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		rules.Title = &title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		rules.Description = &description
	}
	if err := check(s.validate, rules); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgTaskNotFound)
		}
		return nil, internalError(err)
	}

	if rules.Title != nil {
		task.Title = *rules.Title
	}
	if rules.Description != nil {
		task.Description = *rules.Description
	}
	if in.IsCompleted != nil {
		task.IsCompleted = *in.IsCompleted
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}

	err = s.tasks.Update(ctx, task)
	// selalu invalidate setelah tulis; baca berikutnya mengisi ulang dari DB
	s.cache.Invalidate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgTaskNotFound)
		}
		return nil, internalError(err)
	}
	return task, nil
}

func (s *TaskService) Remove(ctx context.Context, id string) error {
	if !validID(id) {
		return validationError(msgInvalidTaskID)
	}
	err := s.tasks.Delete(ctx, id)
	s.cache.Invalidate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgTaskNotFound)
		}
		return internalError(err)
	}
	return nil
}

// PurgeOwner deletes every task of ownerID and evicts them from the cache.
func (s *TaskService) PurgeOwner(ctx context.Context, ownerID string) error {
	ids, err := s.tasks.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, ids...)
	return nil
}
