package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/pkg/logger"
)

// ErrorHandler recovers panics into a generic 500 and logs every request.
// It expects the requestid middleware to run first.
func ErrorHandler(log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("request_id", requestID(c)),
					zap.String("stack", string(debug.Stack())),
				)
				// pesan panic tidak dikirim ke client
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
			log.Request.Info("Incoming request",
				zap.String("request_id", requestID(c)),
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("latency", time.Since(start)),
			)
		}()

		// error dari handler diproses di sini supaya status yang di-log sudah final
		if chainErr := c.Next(); chainErr != nil {
			if herr := c.App().ErrorHandler(c, chainErr); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
