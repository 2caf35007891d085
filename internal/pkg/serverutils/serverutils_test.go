package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworkspace/pkg/session"
)

const secret = "test-secret"

func signed(t *testing.T, userID string) string {
	t.Helper()
	tok, err := session.NewVerifier(secret).Sign(session.Claims{UserID: userID})
	require.NoError(t, err)
	return tok
}

func guardedApp() *fiber.App {
	app := fiber.New()
	app.Use(RouteGuard(GuardConfig{
		Verifier:  session.NewVerifier(secret),
		LoginPath: "/login",
		Protected: []string{"/workspace", "/documents/"},
	}))
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/login", ok)
	app.Get("/workspace", ok)
	app.Get("/workspace/edit", ok)
	app.Get("/workspaces", ok)
	app.Get("/documents/:id", ok)
	return app
}

func TestRouteGuard(t *testing.T) {
	valid := signed(t, "user-1")
	tests := []struct {
		name     string
		path     string
		header   string
		cookie   string
		status   int
		location string
	}{
		{name: "public path", path: "/login", status: 200},
		{name: "unrelated prefix sibling", path: "/workspaces", status: 200},
		{name: "protected without token", path: "/workspace", status: 302, location: "/login?next=%2Fworkspace"},
		{name: "protected child without token", path: "/workspace/edit?tab=2", status: 302, location: "/login?next=%2Fworkspace%2Fedit%3Ftab%3D2"},
		{name: "protected with header", path: "/documents/doc-1", header: "Bearer " + valid, status: 200},
		{name: "protected with cookie", path: "/workspace", cookie: valid, status: 200},
		{name: "protected with bad token", path: "/workspace", header: "Bearer nope", status: 302, location: "/login?next=%2Fworkspace"},
	}

	app := guardedApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JwtMiddleware(session.NewVerifier(secret)), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "user-7"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "user-7", string(body))
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return ValidateRequest(createRequest{Name: "too long"})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "no such element")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("upstream down")
	})

	tests := []struct {
		path    string
		status  int
		message string
		errors  map[string]string
	}{
		{path: "/invalid", status: 400, message: "Invalid request", errors: map[string]string{"name": "max=5"}},
		{path: "/missing", status: 404, message: "no such element"},
		{path: "/boom", status: 500, message: "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body Response[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.errors, body.Errors)
		})
	}
}

func TestValidateRequestPasses(t *testing.T) {
	assert.NoError(t, ValidateRequest(createRequest{Name: "ok"}))
}
