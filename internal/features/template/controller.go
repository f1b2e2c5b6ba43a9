package template

import (
	"encoding/json"
	"io"

	"go-certify/internal/pdf"

	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

// Upload accepts a multipart PDF plus a display name and registers it as a
// certificate template.
func (c *TemplateController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "template file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name := ctx.FormValue("name")
	if name == "" {
		name = fileHeader.Filename
	}

	template, err := c.Service.UploadTemplate(ctx.UserContext(), name, fileHeader.Filename, data)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(template)
}

func (c *TemplateController) Get(ctx *fiber.Ctx) error {
	template, err := c.Service.GetTemplate(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(template)
}

func (c *TemplateController) List(ctx *fiber.Ctx) error {
	templates, err := c.Service.ListTemplates(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(templates)
}

type UpdateTemplateRequest struct {
	Name   string               `json:"name"`
	Fields []pdf.FieldPlacement `json:"fields"`
}

func (c *TemplateController) Update(ctx *fiber.Ctx) error {
	var req UpdateTemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template, err := c.Service.UpdateTemplate(ctx.UserContext(), ctx.Params("id"), req.Name, req.Fields)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(template)
}

func (c *TemplateController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteTemplate(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// File streams the raw uploaded PDF back to the client.
func (c *TemplateController) File(ctx *fiber.Ctx) error {
	data, err := c.Service.TemplateBytes(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(data)
}

type PreviewRequest struct {
	SampleData json.RawMessage `json:"sample_data"`
}

// Preview renders the template with sample data and returns the PDF.
func (c *TemplateController) Preview(ctx *fiber.Ctx) error {
	var req PreviewRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sampleData := map[string]interface{}{}
	if len(req.SampleData) > 0 {
		if err := json.Unmarshal(req.SampleData, &sampleData); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sample_data must be an object"})
		}
	}

	rendered, err := c.Service.Preview(ctx.UserContext(), ctx.Params("id"), sampleData)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(rendered)
}
