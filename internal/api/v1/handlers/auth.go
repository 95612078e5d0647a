package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register membuat user baru dan langsung mengembalikan token
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Audit.Warn("Bad request in register", zap.Error(err))
		return badRequest(c)
	}

	res, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.fail(c, "registering user", err)
	}

	h.log.Audit.Info("User registered successfully", zap.String("user_id", res.User.ID))
	return c.Status(fiber.StatusCreated).JSON(envelope{
		Message: "User registered successfully",
		Success: true,
		Status:  fiber.StatusCreated,
		Data:    res.User,
		Token:   res.Token,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Audit.Warn("Bad request in login", zap.Error(err))
		return badRequest(c)
	}

	res, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "logging in", err)
	}

	h.log.Audit.Info("Login success", zap.String("user_id", res.User.ID))
	return c.JSON(envelope{
		Message: "Login successful",
		Success: true,
		Status:  fiber.StatusOK,
		Data:    res.User,
		Token:   res.Token,
	})
}
