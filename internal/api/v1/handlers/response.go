package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/internal/models"
	"tugas-go/internal/service"
	"tugas-go/pkg/logger"
)

// Accounts is the account use-case surface the handlers need.
type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Update(ctx context.Context, id string, in service.UpdateUserInput) (*models.PublicUser, error)
	Remove(ctx context.Context, id string) error
}

// Tasks is the task use-case surface the handlers need.
type Tasks interface {
	Create(ctx context.Context, in service.CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	Update(ctx context.Context, id string, in service.UpdateTaskInput) (*models.Task, error)
	Remove(ctx context.Context, id string) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	accounts Accounts
	tasks    Tasks
	db       Pinger
	log      *logger.Loggers
}

func New(accounts Accounts, tasks Tasks, db Pinger, log *logger.Loggers) *Handler {
	return &Handler{accounts: accounts, tasks: tasks, db: db, log: log}
}

// envelope adalah bentuk respons yang sama untuk semua endpoint
type envelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{
		Message: message,
		Success: status < fiber.StatusBadRequest,
		Status:  status,
		Data:    data,
	})
}

func badRequest(c *fiber.Ctx) error {
	return respond(c, fiber.StatusBadRequest, "Bad request", nil)
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	case service.KindConflict:
		return fiber.StatusConflict
	case service.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail maps a service error to its status. Internal faults are logged with
// their cause and answered with a generic message only.
func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Message: "Internal server error", Err: err}
	}
	status := statusOf(se.Kind)

	switch se.Kind {
	case service.KindInternal:
		h.log.Error.Error("Error "+op,
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
	case service.KindUnauthorized:
		h.log.Security.Warn("Unauthorized "+op,
			zap.String("request_id", requestID(c)),
			zap.String("ip", c.IP()),
		)
	default:
		h.log.Audit.Info("Rejected "+op,
			zap.String("request_id", requestID(c)),
			zap.Int("status", status),
			zap.String("reason", se.Message),
		)
	}
	return respond(c, status, se.Message, nil)
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// ErrorHandler answers errors that escape the handlers (unknown route,
// wrong method) with the same envelope.
func ErrorHandler(log *logger.Loggers) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return respond(c, fe.Code, fe.Message, nil)
		}
		log.Error.Error("Unhandled error",
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return respond(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
