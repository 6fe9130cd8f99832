package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stanhub/internal/config"
	"stanhub/internal/models"
	"stanhub/internal/repository"
	"stanhub/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ForumPost{},
		&models.ForumReply{},
		&models.ForumPostLike{},
		&models.ForumReport{},
		&models.Album{},
		&models.MediaItem{},
		&models.TimelineEvent{},
		&models.Charm{},
		&models.HomeContent{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer builds a Server over in-memory sqlite without the metrics
// or tracing middleware; tests register the routes they exercise.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := setupTestDB(t)

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		Env:         "test",
		UploadDir:   t.TempDir(),
		MaxUploadMB: 10,
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	reportRepo := repository.NewReportRepository(db)
	contentRepo := repository.NewContentRepository(db)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		replyRepo:   replyRepo,
		reportRepo:  reportRepo,
		contentRepo: contentRepo,
	}
	s.uploadService = service.NewUploadService(cfg)
	s.feedService = service.NewFeedService(postRepo, replyRepo, userRepo)
	s.postService = service.NewPostService(postRepo, reportRepo, replyRepo, userRepo, s.uploadService)
	s.moderationService = service.NewModerationService(postRepo, reportRepo, userRepo, contentRepo)
	s.userService = service.NewUserService(userRepo)
	s.contentService = service.NewContentService(contentRepo, s.uploadService)

	return s
}

func withMiniredis(t *testing.T, s *Server) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func seedUser(t *testing.T, db *gorm.DB, nickname, role string) *models.User {
	t.Helper()
	user := &models.User{
		Nickname: nickname,
		Email:    nickname + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func bearerToken(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Nickname)
	require.NoError(t, err)
	return "Bearer " + token
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}
