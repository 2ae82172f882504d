package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
)

// errorMapping código HTTP y code estable para cada error de dominio, en orden de prioridad.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrReferential, fiber.StatusUnprocessableEntity, "REFERENTIAL"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUpstream, fiber.StatusBadGateway, "UPSTREAM"},
}

// ErrorHandler traduce los errores devueltos por handlers y middlewares a dto.ErrorResponse.
// Los errores inesperados se registran y nunca se devuelven al cliente.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := mapError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error interno")
		}
		return c.Status(status).JSON(body)
	}
}

func mapError(err error) (int, dto.ErrorResponse) {
	var verr *validationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: verr.fields}
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, dto.ErrorResponse{Code: m.code, Message: publicMessage(err, m.target)}
		}
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		switch ferr.Code {
		case fiber.StatusNotFound:
			return ferr.Code, dto.ErrorResponse{Code: "NOT_FOUND", Message: "ruta no encontrada"}
		case fiber.StatusMethodNotAllowed:
			return ferr.Code, dto.ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: ferr.Message}
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
		}
		if ferr.Code < fiber.StatusInternalServerError {
			return ferr.Code, dto.ErrorResponse{Code: "HTTP_ERROR", Message: ferr.Message}
		}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
}

// publicMessage usa el detalle que el caso de uso agregó al envolver el sentinel
// ("%w: detalle"); si no lo hay, el texto del sentinel. Upstream nunca expone el detalle.
func publicMessage(err, target error) string {
	if target == domain.ErrUpstream {
		return target.Error()
	}
	msg := err.Error()
	prefix := target.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return target.Error()
}
