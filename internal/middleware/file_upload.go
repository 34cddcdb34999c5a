package middleware

import (
	"mime/multipart"
	"strings"

	"github.com/emandor/learn2play_service/internal/config"
	"github.com/emandor/learn2play_service/internal/model"
	"github.com/emandor/learn2play_service/internal/telemetry"
	"github.com/gofiber/fiber/v2"
)

const (
	FormField    = "file"
	UploadExtKey = "uploadExt"
)

// UploadRejection is a client input error on the upload form.
type UploadRejection struct {
	FileName string
	Message  string
}

func (r *UploadRejection) Error() string { return r.Message }

// file upload validator middleware for checking presence, extension and size
func FileUploadValidator(cfg *config.Config) fiber.Handler {
	extMap := make(map[string]struct{})
	for _, e := range cfg.AllowedFileExt {
		extMap[strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")] = struct{}{}
	}

	maxSize := int64(cfg.AllowedMaxFileSize) * 1024 * 1024

	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(FormField)
		if err != nil {
			return reject(c, &UploadRejection{Message: model.MsgFileRequired})
		}

		ext, rej := validateFile(fh, extMap, maxSize)
		if rej != nil {
			return reject(c, rej)
		}

		c.Locals(UploadExtKey, ext)
		return c.Next()
	}
}

// UploadExt returns the lower-cased extension stored by FileUploadValidator.
func UploadExt(c *fiber.Ctx) string {
	ext, _ := c.Locals(UploadExtKey).(string)
	return ext
}

// validateFile returns the lower-cased extension without the dot
func validateFile(file *multipart.FileHeader, extMap map[string]struct{}, maxSize int64) (string, *UploadRejection) {
	if file.Size == 0 {
		return "", &UploadRejection{Message: model.MsgFileEmpty}
	}

	name := file.Filename
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return "", &UploadRejection{Message: model.MsgNoExtension}
	}

	ext := strings.ToLower(name[dot+1:])
	if _, ok := extMap[ext]; !ok {
		return "", &UploadRejection{FileName: name, Message: model.MsgExtNotAllowed}
	}

	if file.Size > maxSize {
		return "", &UploadRejection{FileName: name, Message: model.MsgFileTooLarge}
	}

	return ext, nil
}

func reject(c *fiber.Ctx, rej *UploadRejection) error {
	l := telemetry.L()
	l.Warn().
		Str("req_id", RequestIDFrom(c)).
		Str("file", rej.FileName).
		Str("reason", rej.Message).
		Msg("upload_rejected")
	return c.Status(fiber.StatusBadRequest).JSON(model.NewUploadResponse("", rej.FileName, rej.Message))
}
