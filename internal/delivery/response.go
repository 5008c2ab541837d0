package delivery

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse - стандартный формат ошибки; подробности остаются в логах сервера
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondWithError - вспомогательная функция для отправки ошибок
func respondWithError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// respondBadRequest - ошибка валидации (400)
func respondBadRequest(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusBadRequest, message)
}

// respondConflict - запрос вытеснен более новым (409)
func respondConflict(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusConflict, message)
}

// respondInternalError - внутренняя ошибка (500), детали наружу не отдаются
func respondInternalError(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusInternalServerError, message)
}

// respondServiceUnavailable - сервис останавливается (503)
func respondServiceUnavailable(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusServiceUnavailable, message)
}

// respondOK - успешный ответ (200)
func respondOK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// ErrorHandler - обработчик ошибок fiber, отдает {"error": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return respondWithError(c, code, err.Error())
}
