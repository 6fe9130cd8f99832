package service

import (
	"context"
	"mime/multipart"
	"testing"

	"stanhub/internal/models"
	"stanhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
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

type fakeUploader struct {
	failNames map[string]bool
	calls     int
}

func (f *fakeUploader) SavePostImage(_ context.Context, file *multipart.FileHeader) (string, error) {
	f.calls++
	if f.failNames[file.Filename] {
		return "", assert.AnError
	}
	return "/uploads/posts/" + file.Filename, nil
}

func newPostService(db *gorm.DB, uploader ImageUploader) *PostService {
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewReportRepository(db),
		repository.NewReplyRepository(db),
		repository.NewUserRepository(db),
		uploader,
	)
}

func createTestUser(t *testing.T, db *gorm.DB, nickname, role string) *models.User {
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

func TestCreatePostStatusByRole(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()

	member := createTestUser(t, db, "member", models.RoleUser)
	admin := createTestUser(t, db, "mod", models.RoleAdmin)

	post, err := svc.CreatePost(ctx, CreatePostInput{
		UserID: member.ID, Title: "First light", Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, post.Status)

	post, err = svc.CreatePost(ctx, CreatePostInput{
		UserID: admin.ID, Title: "Notice", Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, post.Status)
}

func TestCreatePostReservedCategory(t *testing.T) {
	db := setupServiceDB(t)
	uploader := &fakeUploader{}
	svc := newPostService(db, uploader)
	ctx := context.Background()

	member := createTestUser(t, db, "member", models.RoleUser)
	admin := createTestUser(t, db, "mod", models.RoleAdmin)

	_, err := svc.CreatePost(ctx, CreatePostInput{
		UserID:   member.ID,
		Title:    "Fake headline",
		Content:  "nope",
		Category: "Headline",
		Images:   []*multipart.FileHeader{{Filename: "a.jpg"}},
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	// Rejection happens before uploads or inserts run.
	assert.Zero(t, uploader.calls)
	var count int64
	db.Model(&models.ForumPost{}).Count(&count)
	assert.Zero(t, count)

	// The same category is fine for an admin.
	post, err := svc.CreatePost(ctx, CreatePostInput{
		UserID: admin.ID, Title: "Real headline", Content: "yes", Category: "Headline",
	})
	require.NoError(t, err)
	assert.Equal(t, "Headline", post.Category)
}

func TestCreatePostSkipsFailedImage(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{failNames: map[string]bool{"bad.jpg": true}})
	ctx := context.Background()

	member := createTestUser(t, db, "member", models.RoleUser)

	post, err := svc.CreatePost(ctx, CreatePostInput{
		UserID:  member.ID,
		Title:   "Concert pics",
		Content: "look",
		Images: []*multipart.FileHeader{
			{Filename: "one.jpg"},
			{Filename: "bad.jpg"},
			{Filename: "two.jpg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"/uploads/posts/one.jpg", "/uploads/posts/two.jpg"}, post.ImageURLs)
}

func TestCreatePostValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()
	member := createTestUser(t, db, "member", models.RoleUser)

	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: member.ID, Title: "  ", Content: "x"})
	assert.ErrorContains(t, err, "Title is required")

	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: member.ID, Title: "t", Content: " "})
	assert.ErrorContains(t, err, "Content is required")
}

func TestToggleLike(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()

	author := createTestUser(t, db, "author", models.RoleUser)
	fan := createTestUser(t, db, "fan", models.RoleUser)

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusApproved}
	require.NoError(t, db.Create(post).Error)

	liked, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)
	assert.True(t, liked.Liked)

	unliked, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)
	assert.False(t, unliked.Liked)
}

func TestToggleLikePendingPost(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()

	author := createTestUser(t, db, "author", models.RoleUser)
	fan := createTestUser(t, db, "fan", models.RoleUser)

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusPending}
	require.NoError(t, db.Create(post).Error)

	_, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

type failingLikeRepo struct {
	repository.PostRepository
}

func (failingLikeRepo) Like(context.Context, uint, uint) error {
	return assert.AnError
}

func TestToggleLikeWriteFailure(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPostService(
		failingLikeRepo{repository.NewPostRepository(db)},
		repository.NewReportRepository(db),
		repository.NewReplyRepository(db),
		repository.NewUserRepository(db),
		&fakeUploader{},
	)
	ctx := context.Background()

	author := createTestUser(t, db, "author", models.RoleUser)
	fan := createTestUser(t, db, "fan", models.RoleUser)

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusApproved}
	require.NoError(t, db.Create(post).Error)

	_, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.ErrorIs(t, err, assert.AnError)

	// The failed write must leave no membership row behind.
	var rows int64
	require.NoError(t, db.Model(&models.ForumPostLike{}).Where("post_id = ? AND user_id = ?", post.ID, fan.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	isLiked, err := repository.NewPostRepository(db).IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, isLiked)
}

func TestCreateReplyOnlyOnApproved(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()

	author := createTestUser(t, db, "author", models.RoleUser)
	fan := createTestUser(t, db, "fan", models.RoleUser)

	approved := &models.ForumPost{UserID: author.ID, Title: "a", Content: "c", Status: models.StatusApproved}
	pending := &models.ForumPost{UserID: author.ID, Title: "p", Content: "c", Status: models.StatusPending}
	require.NoError(t, db.Create(approved).Error)
	require.NoError(t, db.Create(pending).Error)

	reply, err := svc.CreateReply(ctx, CreateReplyInput{UserID: fan.ID, PostID: approved.ID, Content: "so true"})
	require.NoError(t, err)
	assert.Equal(t, approved.ID, reply.PostID)

	_, err = svc.CreateReply(ctx, CreateReplyInput{UserID: fan.ID, PostID: pending.ID, Content: "so true"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestReportPostDedupe(t *testing.T) {
	db := setupServiceDB(t)
	svc := newPostService(db, &fakeUploader{})
	ctx := context.Background()

	author := createTestUser(t, db, "author", models.RoleUser)
	fan := createTestUser(t, db, "fan", models.RoleUser)
	other := createTestUser(t, db, "other", models.RoleUser)

	post := &models.ForumPost{UserID: author.ID, Title: "t", Content: "c", Status: models.StatusApproved}
	require.NoError(t, db.Create(post).Error)

	_, err := svc.ReportPost(ctx, ReportPostInput{UserID: fan.ID, PostID: post.ID, Reason: "spam"})
	require.NoError(t, err)

	// Second report by the same user while the first is open is rejected.
	_, err = svc.ReportPost(ctx, ReportPostInput{UserID: fan.ID, PostID: post.ID, Reason: "spam again"})
	assert.ErrorContains(t, err, "open report")

	// A different user may still report.
	_, err = svc.ReportPost(ctx, ReportPostInput{UserID: other.ID, PostID: post.ID, Reason: "spam"})
	require.NoError(t, err)

	// Once the first report is closed, the user may file again.
	require.NoError(t, db.Model(&models.ForumReport{}).
		Where("user_id = ?", fan.ID).
		Update("status", models.ReportResolved).Error)
	_, err = svc.ReportPost(ctx, ReportPostInput{UserID: fan.ID, PostID: post.ID, Reason: "still spam"})
	require.NoError(t, err)
}
