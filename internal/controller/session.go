package controller

import (
	"context"
	"errors"
	"strconv"

	"docworkspace/internal/client"
	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/feature/documents"
	"docworkspace/internal/feature/projectmodal"
	"docworkspace/internal/feature/summary"
	"docworkspace/internal/feature/workspace"
	"docworkspace/internal/repository/memory"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// SessionResolver finds or creates the caller's client session.
type SessionResolver struct {
	repo   *memory.SessionRepository
	create func(userID string) *client.Session
}

func NewSessionResolver(repo *memory.SessionRepository, create func(userID string) *client.Session) *SessionResolver {
	return &SessionResolver{repo: repo, create: create}
}

// Resolve returns the session of the authenticated caller together with a
// context that carries the caller's bearer token for outgoing requests.
func (r *SessionResolver) Resolve(ctx *fiber.Ctx) (*client.Session, context.Context) {
	userID, _ := ctx.Locals("user_id").(string)
	token, _ := ctx.Locals("token").(string)
	s := r.repo.GetOrCreate(userID, r.create)
	return s, session.WithBearer(ctx.UserContext(), token)
}

func intParam(ctx *fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

// httpError maps feature errors onto HTTP statuses.
func httpError(err error) error {
	var status *docapi.StatusError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workspace.ErrIndexOutOfRange),
		errors.Is(err, documents.ErrUnknownDocument):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, workspace.ErrAlreadyRemoved),
		errors.Is(err, workspace.ErrNotRemoved),
		errors.Is(err, workspace.ErrDuplicateElement),
		errors.Is(err, projectmodal.ErrModalClosed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, workspace.ErrEmptySection),
		errors.Is(err, chunks.ErrNoDocument),
		errors.Is(err, summary.ErrNoDocument),
		errors.Is(err, projectmodal.ErrEmptyName),
		errors.Is(err, projectmodal.ErrNothingSelected):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, projectmodal.ErrNotSignedIn):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.As(err, &status):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	}
	return err
}
