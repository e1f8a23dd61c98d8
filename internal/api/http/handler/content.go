package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/simorq_portal/internal/service/content"
)

type ContentHandler struct {
	svc content.Service
}

func NewContentHandler(svc content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// POST /api/v1/patients/:id/exams  (multipart: title, exam_date, file)
func (h *ContentHandler) CreateExam(c fiber.Ctx) error {
	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	req := content.CreateExamRequest{
		PatientID: patientID,
		Title:     c.FormValue("title"),
	}
	if raw := c.FormValue("exam_date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return badRequest(c, "exam_date must be YYYY-MM-DD")
		}
		req.ExamDate = &d
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return mapContentError(c, content.ErrFileRequired)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read file")
	}
	defer f.Close()

	req.File = content.ExamFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}

	exam, err := h.svc.CreateExam(c.Context(), req)
	if err != nil {
		return mapContentError(c, err)
	}
	return created(c, exam)
}

type contentBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// POST /api/v1/patients/:id/recommendations
func (h *ContentHandler) CreateRecommendation(c fiber.Ctx) error {
	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}
	var body contentBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	rec, err := h.svc.CreateRecommendation(c.Context(), patientID, body.Title, body.Body)
	if err != nil {
		return mapContentError(c, err)
	}
	return created(c, rec)
}

// POST /api/v1/news
func (h *ContentHandler) CreateNews(c fiber.Ctx) error {
	var body contentBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.CreateNews(c.Context(), body.Title, body.Body)
	if err != nil {
		return mapContentError(c, err)
	}
	return created(c, n)
}

// POST /api/v1/exams/:id/publish
func (h *ContentHandler) PublishExam(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid exam id")
	}
	exam, err := h.svc.PublishExam(c.Context(), id)
	if err != nil {
		return mapContentError(c, err)
	}
	return accepted(c, exam)
}

// POST /api/v1/recommendations/:id/publish
func (h *ContentHandler) PublishRecommendation(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid recommendation id")
	}
	rec, err := h.svc.PublishRecommendation(c.Context(), id)
	if err != nil {
		return mapContentError(c, err)
	}
	return accepted(c, rec)
}

// POST /api/v1/news/:id/publish
func (h *ContentHandler) PublishNews(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid news id")
	}
	n, err := h.svc.PublishNews(c.Context(), id)
	if err != nil {
		return mapContentError(c, err)
	}
	return accepted(c, n)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapContentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, content.ErrTitleRequired), errors.Is(err, content.ErrFileRequired):
		return badRequest(c, err.Error())
	case errors.Is(err, content.ErrFileTooLarge):
		return errorCode(c, fiber.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case errors.Is(err, content.ErrPatientNotFound), errors.Is(err, content.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, content.ErrAlreadyPublished):
		return conflict(c, "already_published", err.Error())
	default:
		slog.ErrorContext(c.Context(), "content request failed", "err", err)
		return internalError(c)
	}
}
