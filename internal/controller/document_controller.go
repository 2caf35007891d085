package controller

import (
	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/feature/documents"
	"docworkspace/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Chunks(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
}

type documentController struct {
	sessions *SessionResolver
	auth     fiber.Handler
}

func NewDocumentController(sessions *SessionResolver, auth fiber.Handler) IDocumentController {
	return &documentController{sessions: sessions, auth: auth}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Use(c.auth)
	h.Get("", c.GetAll)
	h.Post(":id/select", c.Select)
	h.Get(":id/chunks", c.Chunks)
	h.Get(":id/summary", c.Summary)
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	s, rctx := c.sessions.Resolve(ctx)
	docs, err := s.Documents.List(rctx)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", docs))
}

func (c *documentController) Select(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	if err := s.Documents.Select(ctx.Params("id")); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Document selected", fiber.Map{
		"id":  ctx.Params("id"),
		"url": documents.SelectCurrentDocumentURL(s.State()),
	}))
}

// Chunks loads the document's chunks. With ?page=N only that page is returned.
func (c *documentController) Chunks(ctx *fiber.Ctx) error {
	s, rctx := c.sessions.Resolve(ctx)
	set, err := s.Chunks.Fetch(rctx, ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}
	if page := ctx.QueryInt("page", -1); page >= 0 {
		return ctx.JSON(serverutils.SuccessResponse("Success get page chunks", chunks.SelectChunksForPage(page)(s.State())))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chunks", set))
}

func (c *documentController) Summary(ctx *fiber.Ctx) error {
	s, rctx := c.sessions.Resolve(ctx)
	entry, ok, err := s.Summary.Summarize(rctx, ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Sign in to summarize documents")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get summary", entry))
}
