package controller

import (
	"docworkspace/internal/pkg/logger"
	"docworkspace/internal/pkg/serverutils"
	"docworkspace/internal/service"
	internalWS "docworkspace/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IFeedController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	Activity(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

// feedController exposes the session snapshot and the live change feed.
type feedController struct {
	sessions *SessionResolver
	hub      *internalWS.Hub
	activity service.IActivityService
	auth     fiber.Handler
	logger   logger.ILogger
}

func NewFeedController(sessions *SessionResolver, hub *internalWS.Hub, activity service.IActivityService, auth fiber.Handler, log logger.ILogger) IFeedController {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &feedController{sessions: sessions, hub: hub, activity: activity, auth: auth, logger: log}
}

func (c *feedController) RegisterRoutes(r fiber.Router) {
	r.Get("/state", c.auth, c.State)
	r.Get("/activity", c.auth, c.Activity)
	r.Get("/ws", c.auth, c.ServeWs)
}

func (c *feedController) State(ctx *fiber.Ctx) error {
	s, _ := c.sessions.Resolve(ctx)
	state := s.State()
	return ctx.JSON(serverutils.SuccessResponse("Success get state", fiber.Map{
		"session_id": s.ID,
		"version":    state.Version(),
		"state":      state,
	}))
}

func (c *feedController) Activity(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get activity", c.activity.Counts()))
}

// ServeWs upgrades to a websocket that receives a frame after every change
// to the caller's session. Browsers pass the token as ?token=.
func (c *feedController) ServeWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	s, _ := c.sessions.Resolve(ctx)
	userID := s.UserID

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("FeedController", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(c.hub, conn, userID)
		c.logger.Info("FeedController", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(ctx)
}
