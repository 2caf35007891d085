package controller

import (
	"docworkspace/internal/feature/filterpanel"
	"docworkspace/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IPanelController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
}

type panelController struct {
	sessions *SessionResolver
	auth     fiber.Handler
}

func NewPanelController(sessions *SessionResolver, auth fiber.Handler) IPanelController {
	return &panelController{sessions: sessions, auth: auth}
}

func (c *panelController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/panels")
	h.Use(c.auth)
	h.Get(":id", c.Show)
	h.Post(":id/open", c.Open)
	h.Post(":id/close", c.Close)
	h.Post(":id/toggle", c.Toggle)
}

func (c *panelController) respond(ctx *fiber.Ctx, fire func(filterpanel.IFilterPanelService, string)) error {
	s, _ := c.sessions.Resolve(ctx)
	id := ctx.Params("id")
	if fire != nil {
		fire(s.FilterPanel, id)
	}
	m := filterpanel.SelectPanel(id)(s.State())
	return ctx.JSON(serverutils.SuccessResponse("Panel state", fiber.Map{
		"id":      id,
		"state":   m.State,
		"visible": m.Visible(),
	}))
}

func (c *panelController) Show(ctx *fiber.Ctx) error { return c.respond(ctx, nil) }

func (c *panelController) Open(ctx *fiber.Ctx) error {
	return c.respond(ctx, filterpanel.IFilterPanelService.Open)
}

func (c *panelController) Close(ctx *fiber.Ctx) error {
	return c.respond(ctx, filterpanel.IFilterPanelService.Close)
}

func (c *panelController) Toggle(ctx *fiber.Ctx) error {
	return c.respond(ctx, filterpanel.IFilterPanelService.Toggle)
}
