package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emandor/learn2play_service/internal/model"
)

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestID())
	app.Use(Recover())
	app.Post("/upload", func(c *fiber.Ctx) error {
		switch c.Query("case") {
		case "reject":
			return &UploadRejection{FileName: "a.exe", Message: model.MsgExtNotAllowed}
		case "too_large":
			return fiber.ErrRequestEntityTooLarge
		case "panic":
			panic("boom")
		}
		return errors.New("disk full")
	})
	app.Get("/other", func(c *fiber.Ctx) error {
		return errors.New("hidden detail")
	})

	do := func(method, target string) (int, model.UploadResponse, map[string]any) {
		resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var raw map[string]any
		var ur model.UploadResponse
		dec := json.NewDecoder(resp.Body)
		require.NoError(t, dec.Decode(&raw))
		b, _ := json.Marshal(raw)
		require.NoError(t, json.Unmarshal(b, &ur))
		return resp.StatusCode, ur, raw
	}

	t.Run("rejection", func(t *testing.T) {
		status, ur, _ := do(fiber.MethodPost, "/upload?case=reject")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, model.MsgExtNotAllowed, ur.Message)
		require.NotNil(t, ur.FileName)
		assert.Equal(t, "a.exe", *ur.FileName)
	})

	t.Run("body too large is a 400 on upload", func(t *testing.T) {
		status, ur, _ := do(fiber.MethodPost, "/upload?case=too_large")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, model.MsgFileTooLarge, ur.Message)
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		status, ur, raw := do(fiber.MethodPost, "/upload")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, model.MsgUploadFailed, ur.Message)
		assert.Contains(t, raw, "fileId")
		assert.Nil(t, raw["fileId"])
	})

	t.Run("panic is generic", func(t *testing.T) {
		status, ur, _ := do(fiber.MethodPost, "/upload?case=panic")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, model.MsgUploadFailed, ur.Message)
	})

	t.Run("other routes", func(t *testing.T) {
		status, _, raw := do(fiber.MethodGet, "/other")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "internal error", raw["error"])

		status, _, raw = do(fiber.MethodGet, "/missing")
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.NotEmpty(t, raw["error"])
	})
}
