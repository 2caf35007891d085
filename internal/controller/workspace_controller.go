package controller

import (
	"docworkspace/internal/dto"
	"docworkspace/internal/feature/workspace"
	"docworkspace/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	ToggleSection(ctx *fiber.Ctx) error
	HideSection(ctx *fiber.Ctx) error
	ShowSection(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
	Markdown(ctx *fiber.Ctx) error
}

type workspaceController struct {
	sessions *SessionResolver
	auth     fiber.Handler
}

func NewWorkspaceController(sessions *SessionResolver, auth fiber.Handler) IWorkspaceController {
	return &workspaceController{sessions: sessions, auth: auth}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workspace")
	h.Use(c.auth)
	h.Get("", c.Show)
	h.Delete("", c.Reset)
	h.Get("document", c.Document)
	h.Get("markdown", c.Markdown)
	h.Post("elements", c.Add)
	h.Put("elements/move", c.Move)
	h.Delete("elements/:index", c.Remove)
	h.Post("elements/:index/restore", c.Restore)
	h.Put("sections/:section/toggle", c.ToggleSection)
	h.Put("sections/:section/hide", c.HideSection)
	h.Put("sections/:section/show", c.ShowSection)
}

func (c *workspaceController) snapshot(ctx *fiber.Ctx) dto.WorkspaceResponse {
	s, _ := c.sessions.Resolve(ctx)
	st := s.State()
	return dto.WorkspaceResponse{
		Elements:     workspace.SelectElements(st),
		Removed:      workspace.SelectRemoved(st),
		Payloads:     s.Workspace.Payloads(),
		Hidden:       workspace.SelectHiddenSections(st),
		VisibleCount: workspace.SelectVisibleCount(st),
		TotalCount:   workspace.SelectTotalCount(st),
	}
}

func (c *workspaceController) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get workspace", c.snapshot(ctx)))
}

func (c *workspaceController) Add(ctx *fiber.Ctx) error {
	var req dto.AddElementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	s, rctx := c.sessions.Resolve(ctx)
	el, err := s.Workspace.Add(rctx, req.Chunk())
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Element added", el))
}

func (c *workspaceController) Remove(ctx *fiber.Ctx) error {
	index, err := intParam(ctx, "index")
	if err != nil {
		return err
	}
	s, rctx := c.sessions.Resolve(ctx)
	if err := s.Workspace.Remove(rctx, index); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Element removed", c.snapshot(ctx)))
}

func (c *workspaceController) Restore(ctx *fiber.Ctx) error {
	index, err := intParam(ctx, "index")
	if err != nil {
		return err
	}
	s, rctx := c.sessions.Resolve(ctx)
	if err := s.Workspace.Restore(rctx, index); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Element restored", c.snapshot(ctx)))
}

func (c *workspaceController) Move(ctx *fiber.Ctx) error {
	var req dto.MoveElementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	s, rctx := c.sessions.Resolve(ctx)
	if err := s.Workspace.Move(rctx, *req.From, *req.To); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Element moved", c.snapshot(ctx)))
}

func (c *workspaceController) section(ctx *fiber.Ctx, apply func(workspace.IWorkspaceService, string) error) error {
	s, _ := c.sessions.Resolve(ctx)
	if err := apply(s.Workspace, ctx.Params("section")); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sections updated", workspace.SelectHiddenSections(s.State())))
}

func (c *workspaceController) ToggleSection(ctx *fiber.Ctx) error {
	return c.section(ctx, workspace.IWorkspaceService.ToggleSection)
}

func (c *workspaceController) HideSection(ctx *fiber.Ctx) error {
	return c.section(ctx, workspace.IWorkspaceService.HideSection)
}

func (c *workspaceController) ShowSection(ctx *fiber.Ctx) error {
	return c.section(ctx, workspace.IWorkspaceService.ShowSection)
}

func (c *workspaceController) Reset(ctx *fiber.Ctx) error {
	s, rctx := c.sessions.Resolve(ctx)
	s.Workspace.Reset(rctx)
	return ctx.JSON(serverutils.SuccessResponse("Workspace cleared", c.snapshot(ctx)))
}

func (c *workspaceController) Document(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	return ctx.JSON(serverutils.SuccessResponse("Success compose workspace", s.Workspace.Document()))
}

func (c *workspaceController) Markdown(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return ctx.SendString(s.Workspace.Markdown())
}
