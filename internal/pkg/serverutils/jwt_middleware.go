package serverutils

import (
	"net/url"
	"strings"

	"docworkspace/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the access token for browser navigations, which
// cannot set an Authorization header.
const SessionCookie = "access_token"

// BearerToken reads the access token from the Authorization header, the
// "token" query parameter (websocket clients) or the session cookie.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if token := ctx.Query("token"); token != "" {
		return token
	}
	return ctx.Cookies(SessionCookie)
}

// JwtMiddleware rejects requests without a valid token and stores the
// caller's user id and token in Locals.
func JwtMiddleware(verifier *session.Verifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
		}

		ctx.Locals("user_id", claims.Identity())
		ctx.Locals("token", tokenStr)
		return ctx.Next()
	}
}

type GuardConfig struct {
	Verifier  *session.Verifier
	LoginPath string
	// Protected lists path prefixes that require a signed-in user.
	Protected []string
}

// RouteGuard redirects unauthenticated requests for protected paths to the
// login page, keeping the original path in the "next" query parameter.
func RouteGuard(cfg GuardConfig) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !isProtected(ctx.Path(), cfg.Protected) {
			return ctx.Next()
		}
		if token := BearerToken(ctx); token != "" {
			if _, err := cfg.Verifier.Verify(token); err == nil {
				return ctx.Next()
			}
		}
		return ctx.Redirect(cfg.LoginPath+"?next="+url.QueryEscape(ctx.OriginalURL()), fiber.StatusFound)
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
