package importer

import (
	"io"

	"github.com/gofiber/fiber/v2"
)

type ImporterController struct {
	Service ImporterService
}

func NewImporterController(service ImporterService) *ImporterController {
	return &ImporterController{Service: service}
}

// Preview parses an uploaded CSV/XLSX and returns headers, a data sample
// and the validation verdict without creating anything.
func (c *ImporterController) Preview(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "data file is required"})
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

	preview, err := c.Service.Preview(data, fileHeader.Filename)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(preview)
}
