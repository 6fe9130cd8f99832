package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"stanhub/internal/models"
	"stanhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newContentService(db *gorm.DB) *ContentService {
	return NewContentService(repository.NewContentRepository(db), nil)
}

func TestAlbumLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	svc := newContentService(db)
	ctx := context.Background()

	_, err := svc.CreateAlbum(ctx, AlbumInput{Title: "  "})
	assert.ErrorContains(t, err, "Title is required")

	a, err := svc.CreateAlbum(ctx, AlbumInput{Title: "Debut Era", Category: "photo"})
	require.NoError(t, err)
	b, err := svc.CreateAlbum(ctx, AlbumInput{Title: "Tour", Category: "photo"})
	require.NoError(t, err)

	updated, err := svc.UpdateAlbum(ctx, a.ID, AlbumInput{Description: "the beginning"})
	require.NoError(t, err)
	assert.Equal(t, "Debut Era", updated.Title)
	assert.Equal(t, "the beginning", updated.Description)

	require.NoError(t, svc.ReorderAlbums(ctx, []uint{b.ID, a.ID}))
	albums, err := svc.ListAlbums(ctx, "")
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, b.ID, albums[0].ID)
	assert.Equal(t, a.ID, albums[1].ID)

	require.NoError(t, svc.DeleteAlbum(ctx, b.ID))
	albums, err = svc.ListAlbums(ctx, "")
	require.NoError(t, err)
	assert.Len(t, albums, 1)
}

func TestSubmitCharm(t *testing.T) {
	db := setupServiceDB(t)
	svc := newContentService(db)
	ctx := context.Background()

	_, err := svc.SubmitCharm(ctx, "  ")
	assert.ErrorContains(t, err, "required")

	_, err = svc.SubmitCharm(ctx, strings.Repeat("a", maxCharmLen+1))
	assert.Error(t, err)

	charm, err := svc.SubmitCharm(ctx, "their stage presence is unreal")
	require.NoError(t, err)
	assert.False(t, charm.IsApproved)

	// Unapproved submissions never show on the public list.
	public, err := svc.ListCharms(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, public)

	require.NoError(t, db.Model(&models.Charm{}).Where("id = ?", charm.ID).
		Update("is_approved", true).Error)
	public, err = svc.ListCharms(ctx, true)
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestHomeContentUpsert(t *testing.T) {
	db := setupServiceDB(t)
	svc := newContentService(db)
	ctx := context.Background()

	_, err := svc.GetHomeContent(ctx, "hero_title")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	set, err := svc.SetHomeContent(ctx, "hero_title", "Welcome")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", set.Value)

	set, err = svc.SetHomeContent(ctx, "hero_title", "Welcome back")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", set.Value)

	got, err := svc.GetHomeContent(ctx, "hero_title")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", got.Value)
}

func TestTimelineOrdering(t *testing.T) {
	db := setupServiceDB(t)
	svc := newContentService(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.TimelineEvent{Title: "Debut", EventDate: mustDate("2021-06-12")}).Error)
	require.NoError(t, db.Create(&models.TimelineEvent{Title: "Tour", EventDate: mustDate("2023-09-22")}).Error)
	require.NoError(t, db.Create(&models.TimelineEvent{Title: "Win", EventDate: mustDate("2022-03-04")}).Error)

	events, err := svc.ListTimeline(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Tour", events[0].Title)
	assert.Equal(t, "Win", events[1].Title)
	assert.Equal(t, "Debut", events[2].Title)
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
