package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/internal/middleware"
	"tugas-go/internal/service"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	IsCompleted bool   `json:"isCompleted"`
	DueDate     string `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
	DueDate     *string `json:"dueDate"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Audit.Warn("Bad request in create task", zap.Error(err))
		return badRequest(c)
	}

	// userId kosong: pakai id dari token
	if strings.TrimSpace(req.UserID) == "" {
		if id, ok := middleware.IdentityFrom(c); ok {
			req.UserID = id.ID
		}
	}

	task, err := h.tasks.Create(c.UserContext(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		UserID:      req.UserID,
		IsCompleted: req.IsCompleted,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.fail(c, "creating task", err)
	}

	h.log.Audit.Info("Task created successfully", zap.String("task_id", task.ID), zap.String("user_id", task.UserID))
	return respond(c, fiber.StatusCreated, "Task created successfully", task)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	task, err := h.tasks.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "fetching task", err)
	}
	return respond(c, fiber.StatusOK, "Task retrieved successfully", task)
}

// ListTasks returns every task of the user in :id, oldest first.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListByOwner(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "fetching tasks", err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Audit.Warn("Bad request in update task", zap.Error(err))
		return badRequest(c)
	}

	id := c.Params("id")
	task, err := h.tasks.Update(c.UserContext(), id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.fail(c, "updating task", err)
	}

	h.log.Audit.Info("Task updated successfully", zap.String("task_id", id))
	return respond(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.tasks.Remove(c.UserContext(), id); err != nil {
		return h.fail(c, "deleting task", err)
	}

	h.log.Audit.Info("Task deleted successfully", zap.String("task_id", id))
	return respond(c, fiber.StatusOK, "Task deleted successfully", nil)
}
