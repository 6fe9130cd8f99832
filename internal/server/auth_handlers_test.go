package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stanhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(t *testing.T, app *fiber.App, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Post("/signup", s.Signup)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]string{
				"nickname": "newstan",
				"email":    "newstan@example.com",
				"password": "Str0ng#Passw0rd",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "weak password",
			body: map[string]string{
				"nickname": "weakling",
				"email":    "weak@example.com",
				"password": "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]string{
				"nickname": "othernick",
				"email":    "newstan@example.com",
				"password": "Str0ng#Passw0rd",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate nickname",
			body: map[string]string{
				"nickname": "newstan",
				"email":    "fresh@example.com",
				"password": "Str0ng#Passw0rd",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"email": "x@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/signup", tt.body, nil)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var out struct {
					Token string      `json:"token"`
					User  models.User `json:"user"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.NotEmpty(t, out.Token)
				assert.Equal(t, models.RoleUser, out.User.Role)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Post("/login", s.Login)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Str0ng#Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{
		Nickname: "stan", Email: "stan@example.com", Password: string(hashed),
	}).Error)

	t.Run("success", func(t *testing.T) {
		resp := postJSON(t, app, "/login", map[string]string{
			"email": "stan@example.com", "password": "Str0ng#Passw0rd",
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/login", map[string]string{
			"email": "stan@example.com", "password": "wrong-password!",
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/login", map[string]string{
			"email": "ghost@example.com", "password": "Str0ng#Passw0rd",
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	user := seedUser(t, s.db, "stan", models.RoleUser)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearerToken(t, s, user))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	withMiniredis(t, s)

	app := fiber.New()
	app.Post("/logout", s.AuthRequired(), s.Logout)
	app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	user := seedUser(t, s.db, "stan", models.RoleUser)
	auth := bearerToken(t, s, user)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/logout", nil, map[string]string{"Authorization": auth})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The same token is refused after logout.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", auth)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIsAdmin(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Get("/is-admin", s.AuthRequired(), s.IsAdmin)

	member := seedUser(t, s.db, "member", models.RoleUser)
	admin := seedUser(t, s.db, "mod", models.RoleAdmin)

	check := func(t *testing.T, auth string) bool {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/is-admin", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			IsAdmin bool `json:"is_admin"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out.IsAdmin
	}

	assert.False(t, check(t, bearerToken(t, s, member)))
	assert.True(t, check(t, bearerToken(t, s, admin)))

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/is-admin", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminRequired(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Get("/admin", s.AuthRequired(), s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	member := seedUser(t, s.db, "member", models.RoleUser)
	admin := seedUser(t, s.db, "mod", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearerToken(t, s, member))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearerToken(t, s, admin))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Demotion takes effect on the next request, not at token expiry.
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", admin.ID).
		Update("role", models.RoleUser).Error)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearerToken(t, s, admin))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
