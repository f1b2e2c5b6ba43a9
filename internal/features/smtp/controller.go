package smtp

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SmtpConfigController struct {
	Service SmtpConfigService
}

func NewSmtpConfigController(service SmtpConfigService) *SmtpConfigController {
	return &SmtpConfigController{Service: service}
}

func (c *SmtpConfigController) Create(ctx *fiber.Ctx) error {
	var config SmtpConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.CreateConfig(ctx.UserContext(), &config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(config)
}

func (c *SmtpConfigController) Get(ctx *fiber.Ctx) error {
	config, err := c.Service.GetConfig(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

func (c *SmtpConfigController) List(ctx *fiber.Ctx) error {
	configs, err := c.Service.ListConfigs(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(configs)
}

func (c *SmtpConfigController) Update(ctx *fiber.Ctx) error {
	var config SmtpConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	oid, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	config.ID = oid

	if err := c.Service.UpdateConfig(ctx.UserContext(), &config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(config)
}

func (c *SmtpConfigController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteConfig(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *SmtpConfigController) SetDefault(ctx *fiber.Ctx) error {
	config, err := c.Service.SetDefault(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

// Verify reports connectivity as a result payload, always 200.
func (c *SmtpConfigController) Verify(ctx *fiber.Ctx) error {
	success, message := c.Service.Verify(ctx.UserContext(), ctx.Params("id"))
	return ctx.JSON(fiber.Map{
		"success": success,
		"message": message,
	})
}
