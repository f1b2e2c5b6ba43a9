package job

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type JobController struct {
	Service JobService
}

func NewJobController(service JobService) *JobController {
	return &JobController{Service: service}
}

// CreateCertificateJob takes a multipart roster file plus the certificate
// config as form values, creates the job, and starts it.
func (c *JobController) CreateCertificateJob(ctx *fiber.Ctx) error {
	data, filename, err := readUpload(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cfg := CertificateConfig{
		TemplateID:    ctx.FormValue("template_id"),
		NamingPattern: ctx.FormValue("naming_pattern"),
		OutputPath:    ctx.FormValue("output_path"),
	}

	created, err := c.Service.CreateCertificateJob(ctx.UserContext(), data, filename, cfg)
	if err != nil {
		return ctx.Status(statusForCreateError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Service.Start(created.ID.Hex()); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

type CreateEmailJobRequest struct {
	SourceJobID     string `json:"source_job_id"`
	EmailTemplateID string `json:"email_template_id"`
	SmtpConfigID    string `json:"smtp_config_id"`
	Subject         string `json:"subject"`
	DelayMs         int    `json:"delay_ms"`
}

// CreateEmailJob accepts either a multipart roster upload or a JSON body
// whose source_job_id clones the recipients of an earlier job, generated
// certificates included.
func (c *JobController) CreateEmailJob(ctx *fiber.Ctx) error {
	var created *BatchJob
	var err error

	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req CreateEmailJobRequest
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if req.SourceJobID == "" {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source_job_id or a roster upload is required"})
		}
		cfg := EmailConfig{
			EmailTemplateID: req.EmailTemplateID,
			SmtpConfigID:    req.SmtpConfigID,
			Subject:         req.Subject,
			DelayMs:         req.DelayMs,
		}
		created, err = c.Service.CreateEmailJobFromJob(ctx.UserContext(), req.SourceJobID, cfg)
	} else {
		var data []byte
		var filename string
		data, filename, err = readUpload(ctx)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		delayMs, _ := strconv.Atoi(ctx.FormValue("delay_ms"))
		cfg := EmailConfig{
			EmailTemplateID: ctx.FormValue("email_template_id"),
			SmtpConfigID:    ctx.FormValue("smtp_config_id"),
			Subject:         ctx.FormValue("subject"),
			DelayMs:         delayMs,
		}
		created, err = c.Service.CreateEmailJob(ctx.UserContext(), data, filename, cfg)
	}
	if err != nil {
		return ctx.Status(statusForCreateError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Service.Start(created.ID.Hex()); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *JobController) Get(ctx *fiber.Ctx) error {
	j, err := c.Service.GetJob(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(j)
}

func (c *JobController) List(ctx *fiber.Ctx) error {
	page, limit := pagination(ctx)
	jobs, total, err := c.Service.ListJobs(ctx.UserContext(), ctx.Query("type"), page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"data": jobs, "total": total, "page": page, "limit": limit})
}

func (c *JobController) Recipients(ctx *fiber.Ctx) error {
	page, limit := pagination(ctx)
	recipients, total, err := c.Service.ListRecipients(ctx.UserContext(), ctx.Params("id"), ctx.Query("status"), page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"data": recipients, "total": total, "page": page, "limit": limit})
}

func (c *JobController) Retry(ctx *fiber.Ctx) error {
	j, err := c.Service.RetryFailed(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, ErrJobRunning) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(j)
}

func (c *JobController) Cancel(ctx *fiber.Ctx) error {
	if err := c.Service.Cancel(ctx.UserContext(), ctx.Params("id")); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, ErrJobTerminal) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"success": true})
}

func (c *JobController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteJob(ctx.UserContext(), ctx.Params("id")); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, ErrJobRunning) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func readUpload(ctx *fiber.Ctx) ([]byte, string, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", errors.New("roster file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Filename, nil
}

func pagination(ctx *fiber.Ctx) (int64, int64) {
	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(ctx.Query("limit", "50"), 10, 64)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return page, limit
}

func statusForCreateError(err error) int {
	if errors.Is(err, ErrInvalidPayload) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadRequest
}
