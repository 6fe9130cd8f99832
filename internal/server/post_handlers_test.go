package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"stanhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetFeedEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Get("/posts", s.GetFeed)

	author := seedUser(t, s.db, "author", models.RoleUser)
	require.NoError(t, s.db.Create(&models.ForumPost{
		UserID: author.ID, Title: "visible", Content: "c", Status: models.StatusApproved,
	}).Error)
	require.NoError(t, s.db.Create(&models.ForumPost{
		UserID: author.ID, Title: "hidden", Content: "c", Status: models.StatusPending,
	}).Error)
	// Post whose author is gone still renders, with a placeholder.
	require.NoError(t, s.db.Create(&models.ForumPost{
		UserID: 999, Title: "orphan", Content: "c", Status: models.StatusApproved,
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	feed := decodeJSON[[]models.FeedPost](t, resp)
	require.Len(t, feed, 2)

	byTitle := map[string]models.FeedPost{}
	for _, p := range feed {
		byTitle[p.Title] = p
	}
	assert.Equal(t, "author", byTitle["visible"].Author.Nickname)
	assert.Equal(t, "Unknown User", byTitle["orphan"].Author.Nickname)
	assert.NotContains(t, byTitle, "hidden")
}

func TestGetPostThreadVisibility(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()
	app.Get("/posts/:id", s.GetPostThread)

	author := seedUser(t, s.db, "author", models.RoleUser)
	other := seedUser(t, s.db, "other", models.RoleUser)
	admin := seedUser(t, s.db, "mod", models.RoleAdmin)

	pending := &models.ForumPost{UserID: author.ID, Title: "pending", Content: "c", Status: models.StatusPending}
	require.NoError(t, s.db.Create(pending).Error)

	get := func(auth string) int {
		req := httptest.NewRequest(http.MethodGet, "/posts/1", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNotFound, get(""), "anonymous")
	assert.Equal(t, http.StatusNotFound, get(bearerToken(t, s, other)), "unrelated user")
	assert.Equal(t, http.StatusOK, get(bearerToken(t, s, author)), "author sees own pending post")
	assert.Equal(t, http.StatusOK, get(bearerToken(t, s, admin)), "admin sees pending post")
}

func TestCreatePostEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()

	member := seedUser(t, s.db, "member", models.RoleUser)
	app.Post("/posts", func(c *fiber.Ctx) error {
		c.Locals("userID", member.ID)
		return s.CreatePost(c)
	})

	form := func(fields map[string]string) (*bytes.Buffer, string) {
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for k, v := range fields {
			require.NoError(t, w.WriteField(k, v))
		}
		require.NoError(t, w.Close())
		return buf, w.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		body, contentType := form(map[string]string{
			"title":    "First post",
			"content":  "hello",
			"category": "General",
			"tags":     "comeback, tour",
		})
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		post := decodeJSON[models.ForumPost](t, resp)
		assert.Equal(t, models.StatusPending, post.Status)
		assert.Equal(t, models.StringList{"comeback", "tour"}, post.Tags)
	})

	t.Run("reserved category", func(t *testing.T) {
		body, contentType := form(map[string]string{
			"title": "Fake", "content": "x", "category": "announcement",
		})
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		body, contentType := form(map[string]string{"content": "x"})
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLikePostEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()

	author := seedUser(t, s.db, "author", models.RoleUser)
	fan := seedUser(t, s.db, "fan", models.RoleUser)
	app.Post("/posts/:id/like", func(c *fiber.Ctx) error {
		c.Locals("userID", fan.ID)
		return s.LikePost(c)
	})

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusApproved}
	require.NoError(t, s.db.Create(post).Error)

	toggle := func() models.ForumPost {
		req := httptest.NewRequest(http.MethodPost, "/posts/1/like", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decodeJSON[models.ForumPost](t, resp)
	}

	liked := toggle()
	assert.Equal(t, 1, liked.LikeCount)
	assert.True(t, liked.Liked)

	unliked := toggle()
	assert.Equal(t, 0, unliked.LikeCount)
	assert.False(t, unliked.Liked)
}

func TestReportPostEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := fiber.New()

	author := seedUser(t, s.db, "author", models.RoleUser)
	fan := seedUser(t, s.db, "fan", models.RoleUser)
	app.Post("/posts/:id/report", func(c *fiber.Ctx) error {
		c.Locals("userID", fan.ID)
		return s.ReportPost(c)
	})

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusApproved}
	require.NoError(t, s.db.Create(post).Error)

	resp := postJSON(t, app, "/posts/1/report", map[string]string{"reason": "spam"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Duplicate open report is rejected.
	resp = postJSON(t, app, "/posts/1/report", map[string]string{"reason": "spam again"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// Missing post.
	resp = postJSON(t, app, "/posts/42/report", map[string]string{"reason": "spam"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTags("a, b"))
	assert.Equal(t, []string{"solo"}, splitTags("solo"))
	assert.Nil(t, splitTags(""))
	assert.Empty(t, splitTags(" , ,"))
}
