package controller

import (
	"context"

	"docworkspace/internal/pkg/logger"
	"docworkspace/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
)

type PDFOpener interface {
	OpenPDF(ctx context.Context, token, documentID string) ([]byte, string, error)
}

type IPDFController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

// pdfController proxies document bytes so the viewer never talks to the
// document service directly.
type pdfController struct {
	api    PDFOpener
	cache  *memory.PDFCache
	auth   fiber.Handler
	logger logger.ILogger
}

func NewPDFController(api PDFOpener, cache *memory.PDFCache, auth fiber.Handler, log logger.ILogger) IPDFController {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &pdfController{api: api, cache: cache, auth: auth, logger: log}
}

func (c *pdfController) RegisterRoutes(r fiber.Router) {
	r.Get("/documents/:id/pdf", c.auth, c.Show)
}

func (c *pdfController) Show(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	pdf, ok := c.cache.Get(id)
	if !ok {
		token, _ := ctx.Locals("token").(string)
		body, contentType, err := c.api.OpenPDF(ctx.UserContext(), token, id)
		if err != nil {
			c.logger.Warn("PDFController", "Failed to fetch document bytes", map[string]interface{}{
				"document_id": id,
				"error":       err.Error(),
			})
			return httpError(err)
		}
		if contentType == "" {
			contentType = "application/pdf"
		}
		pdf = memory.PDF{Bytes: body, ContentType: contentType}
		c.cache.Put(id, pdf)
	}

	ctx.Set(fiber.HeaderContentType, pdf.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return ctx.Send(pdf.Bytes)
}
