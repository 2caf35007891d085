package bootstrap

import (
	"context"
	"time"

	"docworkspace/internal/client"
	"docworkspace/internal/config"
	"docworkspace/internal/controller"
	"docworkspace/internal/pkg/logger"
	"docworkspace/internal/pkg/serverutils"
	"docworkspace/internal/repository/memory"
	"docworkspace/internal/service"
	"docworkspace/internal/websocket"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/events"
	pktNats "docworkspace/pkg/nats"
	"docworkspace/pkg/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

type Container struct {
	// Controllers
	WorkspaceController     controller.IWorkspaceController
	DocumentController      controller.IDocumentController
	SimilarTablesController controller.ISimilarTablesController
	PanelController         controller.IPanelController
	ProjectController       controller.IProjectController
	PDFController           controller.IPDFController
	FeedController          controller.IFeedController

	// Middleware
	RouteGuard fiber.Handler

	// Background Services (Exposed for main.go to run)
	ChangeFeedService service.IChangeFeedService
	ActivityService   service.IActivityService
	WebSocketHub      *websocket.Hub

	Logger   logger.ILogger
	Sessions *memory.SessionRepository

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)

	// 2. Infrastructure
	// NATS
	var publisher events.Publisher = events.Nop{}
	var eventSource service.EventSource
	var closers []func()

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher, activity events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		publisher = natsPub
		closers = append(closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		eventSource = natsSub
		closers = append(closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to Redis, change feed stays local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		rdb = nil
	} else {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/changefeed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 3. Services
	api := docapi.NewClient(cfg.DocService.BaseURL, cfg.DocService.Timeout)
	verifier := session.NewVerifier(cfg.Auth.JWTSecret)
	auth := serverutils.JwtMiddleware(verifier)

	// Request tokens first; a configured refresh token covers calls made
	// outside a request.
	providers := session.FirstOf{session.BearerProvider{}}
	if cfg.Auth.OAuthRefreshToken != "" {
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.Auth.OAuthClientID,
			ClientSecret: cfg.Auth.OAuthClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.Auth.OAuthTokenURL},
		}
		providers = append(providers, session.NewRefreshTokenProvider(oauthCfg, cfg.Auth.OAuthRefreshToken))
	}

	changeFeed := service.NewChangeFeedService(pubSub, wsHub, wsLogger)
	activity := service.NewActivityService(eventSource, sysLogger)

	sessionRepo := memory.NewSessionRepository(cfg.Cache.SessionTTL)
	resolver := controller.NewSessionResolver(sessionRepo, func(userID string) *client.Session {
		s := client.NewSession(userID, client.Deps{
			API:            api,
			Sessions:       providers,
			Publisher:      publisher,
			Logger:         sysLogger,
			PanelAnimation: cfg.UI.PanelAnimation,
		})
		changeFeed.Attach(s)
		return s
	})

	// 4. Controllers
	return &Container{
		WorkspaceController:     controller.NewWorkspaceController(resolver, auth),
		DocumentController:      controller.NewDocumentController(resolver, auth),
		SimilarTablesController: controller.NewSimilarTablesController(resolver, auth),
		PanelController:         controller.NewPanelController(resolver, auth),
		ProjectController:       controller.NewProjectController(resolver, auth),
		PDFController:           controller.NewPDFController(api, memory.NewPDFCache(cfg.Cache.PDFTTL), auth, sysLogger),
		FeedController:          controller.NewFeedController(resolver, wsHub, activity, auth, wsLogger),

		RouteGuard: serverutils.RouteGuard(serverutils.GuardConfig{
			Verifier:  verifier,
			LoginPath: cfg.Auth.LoginPath,
			Protected: cfg.Auth.ProtectedPaths,
		}),

		ChangeFeedService: changeFeed,
		ActivityService:   activity,
		WebSocketHub:      wsHub,

		Logger:   sysLogger,
		Sessions: sessionRepo,

		closers: append(closers, func() { _ = pubSub.Close() }),
	}
}

// Close releases broker connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
