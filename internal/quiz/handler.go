package quiz

import (
	"github.com/gofiber/fiber/v2"

	"github.com/emandor/learn2play_service/internal/config"
	"github.com/emandor/learn2play_service/internal/middleware"
	"github.com/emandor/learn2play_service/internal/model"
	"github.com/emandor/learn2play_service/internal/quizgen"
	"github.com/emandor/learn2play_service/internal/telemetry"
)

// LatestSource serves the last successfully generated quiz.
type LatestSource interface {
	Latest() []model.QuizItem
}

type Handler struct {
	cfg    *config.Config
	svc    *Service
	latest LatestSource
}

func NewHandler(cfg *config.Config, gen Generator, latest LatestSource) *Handler {
	svc := NewService(cfg.ProjectRoot, cfg.UploadDir, gen)
	return &Handler{cfg: cfg, svc: svc, latest: latest}
}

func (h *Handler) Routes(r fiber.Router) {
	r.Post("/upload", middleware.FileUploadValidator(h.cfg), h.Upload)
	r.Get("/quiz", h.Latest)
}

func (h *Handler) Upload(c *fiber.Ctx) error {
	log := telemetry.L().With().Str("req_id", middleware.RequestIDFrom(c)).Logger()

	fh, err := c.FormFile(middleware.FormField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.NewUploadResponse("", "", model.MsgFileRequired))
	}
	name := fh.Filename
	ext := middleware.UploadExt(c)

	rel, err := h.svc.SaveUpload(fh, c.SaveFile)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("upload_save_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(model.NewUploadResponse("", "", model.MsgUploadFailed))
	}

	fileID := h.svc.NewFileID()
	log = log.With().Str("file_id", fileID).Str("file", name).Logger()
	log.Info().Int64("size", fh.Size).Str("path", rel).Msg("file_saved")

	if ext != "pdf" {
		log.Info().Msg("quizgen_skipped_not_pdf")
		return c.JSON(model.NewUploadResponse(fileID, name, model.MsgNoQuiz))
	}

	items, err := h.svc.GenerateQuiz(c.UserContext(), rel)
	if err != nil {
		log.Error().Err(err).Str("kind", string(quizgen.KindOf(err))).Msg("quizgen_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(model.NewUploadResponse("", "", model.MsgUploadFailed))
	}

	log.Info().Int("questions", len(items)).Msg("quiz_generated")
	return c.JSON(model.NewUploadResponse(fileID, name, model.MsgQuizGenerated))
}

func (h *Handler) Latest(c *fiber.Ctx) error {
	items := h.latest.Latest()
	if len(items) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(items)
}
