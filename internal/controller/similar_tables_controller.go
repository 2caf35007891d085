package controller

import (
	"docworkspace/internal/dto"
	"docworkspace/internal/feature/simtables"
	"docworkspace/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ISimilarTablesController interface {
	RegisterRoutes(r fiber.Router)
	Lookup(ctx *fiber.Ctx) error
	SetSelectedDocs(ctx *fiber.Ctx) error
}

type similarTablesController struct {
	sessions *SessionResolver
	auth     fiber.Handler
}

func NewSimilarTablesController(sessions *SessionResolver, auth fiber.Handler) ISimilarTablesController {
	return &similarTablesController{sessions: sessions, auth: auth}
}

func (c *similarTablesController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/similar-tables")
	h.Use(c.auth)
	h.Post("", c.Lookup)
	h.Put("selected-docs", c.SetSelectedDocs)
}

func (c *similarTablesController) Lookup(ctx *fiber.Ctx) error {
	var req dto.SimilarTablesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	s, rctx := c.sessions.Resolve(ctx)
	key := simtables.NewKey(req.TableID, req.Company, req.DocumentType, req.Year)
	leaf, ok, err := s.SimilarTables.Lookup(rctx, key)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Sign in to compare tables")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get similar tables", leaf))
}

func (c *similarTablesController) SetSelectedDocs(ctx *fiber.Ctx) error {
	var req dto.SelectedDocsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	s, _ := c.sessions.Resolve(ctx)
	s.SimilarTables.SetSelectedDocs(req.DocumentIDs)
	return ctx.JSON(serverutils.SuccessResponse("Selected documents updated", simtables.SelectSelectedDocs(s.State())))
}
