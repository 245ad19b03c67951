package api

import (
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/middleware"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/bilgisen/addconnect/internal/preview"
	"github.com/bilgisen/addconnect/internal/service"
	"github.com/bilgisen/addconnect/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

type Handlers struct {
	contents  *service.ContentService
	previews  *preview.Service
	validator *middleware.Validator
}

func NewHandlers(contents *service.ContentService, previews *preview.Service) *Handlers {
	return &Handlers{
		contents:  contents,
		previews:  previews,
		validator: middleware.NewValidator(),
	}
}

// toFiberError maps service errors onto HTTP statuses
func toFiberError(err error) error {
	switch {
	case service.IsInputError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}
	return err
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Preview handles GET /api/content/preview?url=
func (h *Handlers) Preview(c *fiber.Ctx) error {
	url := strings.TrimSpace(c.Query("url"))
	if !preview.ValidURL(url) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid url",
		})
	}

	return c.JSON(h.previews.Get(c.UserContext(), url))
}

// CreateContent handles POST /api/content
func (h *Handlers) CreateContent(c *fiber.Ctx) error {
	var sub models.ContentSubmission
	if err := c.BodyParser(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"msg":   err.Error(),
		})
	}
	if err := h.validator.Validate(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": middleware.FieldErrors(err),
		})
	}

	item, err := h.contents.Create(c.UserContext(), &sub)
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UploadContent handles POST /api/content/upload
func (h *Handlers) UploadContent(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file missing",
		})
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "empty filename",
		})
	}

	file, err := fh.Open()
	if err != nil {
		logger.Get().Error().Err(err).Str("filename", fh.Filename).Msg("Failed to open uploaded file")
		return fiber.NewError(fiber.StatusBadRequest, "unreadable file")
	}
	defer file.Close()

	res, err := h.contents.Upload(c.UserContext(), service.UploadRequest{
		File:     file,
		Filename: fh.Filename,
		Size:     fh.Size,
		MIMEType: fh.Header.Get(fiber.HeaderContentType),
		Type:     c.FormValue("type"),
		Title:    c.FormValue("title"),
		Tags:     c.FormValue("tags"),
		Status:   c.FormValue("status"),
	})
	if err != nil {
		return toFiberError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListQuery is the query string of GET /api/contents
type ListQuery struct {
	Type   string `query:"type" validate:"omitempty,oneof=trend technology inspiration"`
	Status string `query:"status" validate:"omitempty,oneof=draft approved"`
	Search string `query:"search"`
}

// ListContents handles GET /api/contents. An absent status means approved;
// an explicitly empty one lists every status.
func (h *Handlers) ListContents(c *fiber.Ctx) error {
	q, ok := c.Locals("queryParams").(*ListQuery)
	if !ok {
		q = &ListQuery{}
	}

	status := models.Status(q.Status)
	if !c.Context().QueryArgs().Has("status") {
		status = models.StatusApproved
	}

	items, err := h.contents.List(c.UserContext(), storage.Filter{
		Type:   models.ContentType(q.Type),
		Status: status,
		Search: q.Search,
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing contents")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list contents")
	}
	return c.JSON(items)
}

// GetContent handles GET /api/contents/:id
func (h *Handlers) GetContent(c *fiber.Ctx) error {
	item, err := h.contents.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(item)
}

// DeleteContent handles DELETE /api/admin/contents/:id
func (h *Handlers) DeleteContent(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.contents.Delete(c.UserContext(), id); err != nil {
		return toFiberError(err)
	}

	return c.JSON(fiber.Map{
		"status":  "deleted",
		"message": "Content deleted successfully",
	})
}

// Stats handles GET /api/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	st, err := h.contents.Stats(c.UserContext())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error computing stats")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute stats")
	}
	return c.JSON(st)
}

// ClearPreviews handles DELETE /api/admin/previews
func (h *Handlers) ClearPreviews(c *fiber.Ctx) error {
	if err := h.previews.Clear(c.UserContext()); err != nil {
		logger.Get().Error().Err(err).Msg("Error clearing preview cache")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to clear preview cache")
	}
	return c.JSON(fiber.Map{"ok": true})
}
