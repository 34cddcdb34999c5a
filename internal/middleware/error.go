package middleware

import (
	"errors"

	"github.com/emandor/learn2play_service/internal/model"
	"github.com/emandor/learn2play_service/internal/telemetry"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors that escape handlers. Upload errors keep the
// upload response shape; everything unknown becomes a generic 500.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := telemetry.L().With().Str("req_id", RequestIDFrom(c)).Str("path", c.Path()).Logger()
		upload := c.Method() == fiber.MethodPost && c.Path() == "/upload"

		var rej *UploadRejection
		if errors.As(err, &rej) {
			return c.Status(fiber.StatusBadRequest).JSON(model.NewUploadResponse("", rej.FileName, rej.Message))
		}

		// the body limit trips in the server before any route matches
		if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
			log.Warn().Msg("upload_body_too_large")
			return c.Status(fiber.StatusBadRequest).JSON(model.NewUploadResponse("", "", model.MsgFileTooLarge))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			log.Warn().Int("status", fe.Code).Str("error", fe.Message).Msg("http_error")
			if upload {
				return c.Status(fe.Code).JSON(model.NewUploadResponse("", "", fe.Message))
			}
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error().Err(err).Msg("unhandled_error")
		if upload {
			return c.Status(fiber.StatusInternalServerError).JSON(model.NewUploadResponse("", "", model.MsgUploadFailed))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
