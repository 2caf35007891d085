package controller

import (
	"docworkspace/internal/dto"
	"docworkspace/internal/feature/projectmodal"
	"docworkspace/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IProjectController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	SetName(ctx *fiber.Ctx) error
	ToggleElement(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
}

type projectController struct {
	sessions *SessionResolver
	auth     fiber.Handler
}

func NewProjectController(sessions *SessionResolver, auth fiber.Handler) IProjectController {
	return &projectController{sessions: sessions, auth: auth}
}

func (c *projectController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/projects/draft")
	h.Use(c.auth)
	h.Get("", c.Show)
	h.Post("", c.Open)
	h.Delete("", c.Close)
	h.Put("name", c.SetName)
	h.Post("elements/:id/toggle", c.ToggleElement)
	h.Post("submit", c.Submit)
}

func (c *projectController) draft(ctx *fiber.Ctx, message string) error {
	s, _ := c.sessions.Resolve(ctx)
	st := s.State()
	return ctx.JSON(serverutils.SuccessResponse(message, fiber.Map{
		"open":       projectmodal.SelectModalOpen(st),
		"draft":      projectmodal.SelectProjectDraft(st),
		"submitting": projectmodal.SelectProjectSubmitting(st),
		"error":      projectmodal.SelectProjectError(st),
	}))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	return c.draft(ctx, "Success get project draft")
}

func (c *projectController) Open(ctx *fiber.Ctx) error {
	var req dto.OpenProjectModalRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	s, _ := c.sessions.Resolve(ctx)
	s.Project.Open(req.DocumentIDs)
	return c.draft(ctx, "Project draft opened")
}

func (c *projectController) Close(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	s.Project.Close()
	return c.draft(ctx, "Project draft closed")
}

func (c *projectController) SetName(ctx *fiber.Ctx) error {
	var req dto.ProjectNameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	s, _ := c.sessions.Resolve(ctx)
	s.Project.SetName(req.Name)
	return c.draft(ctx, "Project name updated")
}

func (c *projectController) ToggleElement(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	s.Project.ToggleElement(ctx.Params("id"))
	return c.draft(ctx, "Project selection updated")
}

func (c *projectController) Submit(ctx *fiber.Ctx) error {
	s, rctx := c.sessions.Resolve(ctx)
	project, err := s.Project.Submit(rctx)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Project created", project))
}
