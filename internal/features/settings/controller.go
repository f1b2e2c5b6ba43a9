package settings

import (
	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{Service: service}
}

func (c *SettingsController) Get(ctx *fiber.Ctx) error {
	cfg, err := c.Service.GetAppConfig(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(cfg)
}

func (c *SettingsController) Update(ctx *fiber.Ctx) error {
	var cfg AppConfig
	if err := ctx.BodyParser(&cfg); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.UpdateAppConfig(ctx.UserContext(), cfg); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(cfg)
}
