package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/internal/service"
)

// field yang tidak dikirim tetap nil dan tidak diubah
type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Audit.Warn("Bad request in update user", zap.Error(err))
		return badRequest(c)
	}

	id := c.Params("id")
	user, err := h.accounts.Update(c.UserContext(), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.fail(c, "updating user", err)
	}

	h.log.Audit.Info("User updated successfully", zap.String("user_id", id))
	return respond(c, fiber.StatusOK, "User updated successfully", user)
}

// DeleteUser menghapus user beserta semua task miliknya
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.accounts.Remove(c.UserContext(), id); err != nil {
		return h.fail(c, "deleting user", err)
	}

	h.log.Audit.Info("User deleted successfully", zap.String("user_id", id))
	return respond(c, fiber.StatusOK, "User deleted successfully", nil)
}
