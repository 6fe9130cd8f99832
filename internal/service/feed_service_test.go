package service

import (
	"context"
	"testing"
	"time"

	"stanhub/internal/models"
	"stanhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedPost(id uint, opts ...func(*models.FeedPost)) models.FeedPost {
	p := models.FeedPost{
		ForumPost: models.ForumPost{
			ID:        id,
			Status:    models.StatusApproved,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func TestAssembleFeed(t *testing.T) {
	posts := []*models.ForumPost{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 99},
	}
	profiles := map[uint]models.PublicProfile{
		10: {ID: 10, Nickname: "stan4life"},
	}
	replyCounts := map[uint]int{1: 3}

	feed := AssembleFeed(posts, profiles, replyCounts)
	require.Len(t, feed, 2)

	assert.Equal(t, "stan4life", feed[0].Author.Nickname)
	assert.Equal(t, 3, feed[0].ReplyCount)

	// Unresolvable author keeps the post in the feed with a placeholder.
	assert.Equal(t, "Unknown User", feed[1].Author.Nickname)
	assert.Zero(t, feed[1].Author.ID)
	assert.Equal(t, 0, feed[1].ReplyCount)
}

func TestSortFeedLatest(t *testing.T) {
	feed := []models.FeedPost{feedPost(1), feedPost(3), feedPost(2)}

	SortFeed(feed, SortLatest, true)

	assert.Equal(t, uint(3), feed[0].ID)
	assert.Equal(t, uint(2), feed[1].ID)
	assert.Equal(t, uint(1), feed[2].ID)
}

func TestSortFeedPinnedFirst(t *testing.T) {
	pinned := feedPost(1, func(p *models.FeedPost) { p.IsPinned = true })
	feed := []models.FeedPost{feedPost(5), feedPost(4), pinned}

	SortFeed(feed, SortLatest, true)
	assert.Equal(t, uint(1), feed[0].ID, "pinned post leads despite being oldest")

	SortFeed(feed, SortTrending, true)
	assert.Equal(t, uint(1), feed[0].ID, "pinned post leads under trending too")
}

func TestSortFeedTrending(t *testing.T) {
	hot := feedPost(1, func(p *models.FeedPost) { p.ReplyCount = 4; p.LikeCount = 1 }) // score 9
	warm := feedPost(2, func(p *models.FeedPost) { p.LikeCount = 6 })                  // score 6
	cold := feedPost(3)

	feed := []models.FeedPost{cold, warm, hot}
	SortFeed(feed, SortTrending, true)

	assert.Equal(t, uint(1), feed[0].ID)
	assert.Equal(t, uint(2), feed[1].ID)
	assert.Equal(t, uint(3), feed[2].ID)
}

func TestSortFeedTrendingTiesStayNewestFirst(t *testing.T) {
	a := feedPost(1, func(p *models.FeedPost) { p.LikeCount = 4 })
	b := feedPost(2, func(p *models.FeedPost) { p.ReplyCount = 2 })

	feed := []models.FeedPost{a, b}
	SortFeed(feed, SortTrending, true)

	assert.Equal(t, uint(2), feed[0].ID, "equal scores fall back to recency")
}

func TestSortFeedUnknownPolicyKeepsPinnedInvariant(t *testing.T) {
	pinned := feedPost(1, func(p *models.FeedPost) { p.IsPinned = true })
	feed := []models.FeedPost{feedPost(9), pinned}

	SortFeed(feed, "bogus", true)
	assert.True(t, feed[0].IsPinned)
}

func TestSortFeedTagFilteredKeepsUniformOrder(t *testing.T) {
	pinned := feedPost(1, func(p *models.FeedPost) { p.IsPinned = true })
	feed := []models.FeedPost{feedPost(3), pinned, feedPost(2)}

	SortFeed(feed, SortLatest, false)

	assert.Equal(t, uint(3), feed[0].ID)
	assert.Equal(t, uint(2), feed[1].ID)
	assert.Equal(t, uint(1), feed[2].ID, "pinned post is not hoisted on a tag-filtered feed")
}

type downRepliesPostRepo struct {
	repository.PostRepository
}

func (downRepliesPostRepo) ReplyCounts(context.Context, []uint) (map[uint]int, error) {
	return nil, assert.AnError
}

type downProfilesUserRepo struct {
	repository.UserRepository
}

func (downProfilesUserRepo) GetProfiles(context.Context, []uint) (map[uint]models.PublicProfile, error) {
	return nil, assert.AnError
}

func TestGetFeedSurvivesSecondaryFetchFailures(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "stan1", models.RoleUser)
	post := &models.ForumPost{UserID: author.ID, Title: "comeback", Content: "soon", Status: models.StatusApproved}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&models.ForumReply{PostID: post.ID, UserID: author.ID, Content: "first"}).Error)

	svc := NewFeedService(
		downRepliesPostRepo{repository.NewPostRepository(db)},
		repository.NewReplyRepository(db),
		downProfilesUserRepo{repository.NewUserRepository(db)},
	)

	feed, err := svc.GetFeed(context.Background(), SortLatest, "", 0)
	require.NoError(t, err, "secondary fetch failures must not abort the feed")
	require.Len(t, feed, 1)
	assert.Equal(t, "Unknown User", feed[0].Author.Nickname)
	assert.Zero(t, feed[0].ReplyCount)
}

func TestGetThreadSurvivesProfileFetchFailure(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "stan2", models.RoleUser)
	post := &models.ForumPost{UserID: author.ID, Title: "setlist", Content: "guesses", Status: models.StatusApproved}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&models.ForumReply{PostID: post.ID, UserID: author.ID, Content: "encore?"}).Error)

	svc := NewFeedService(
		repository.NewPostRepository(db),
		repository.NewReplyRepository(db),
		downProfilesUserRepo{repository.NewUserRepository(db)},
	)

	thread, err := svc.GetThread(context.Background(), post.ID, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", thread.Post.Author.Nickname)
	require.Len(t, thread.Replies, 1)
	assert.Equal(t, "Unknown User", thread.Replies[0].Author.Nickname)
}

func TestGetFeedTagFilterLeavesPinnedInline(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "stan3", models.RoleUser)

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pinned := &models.ForumPost{
		UserID: author.ID, Title: "tour faq", Content: "read first",
		Status: models.StatusApproved, IsPinned: true,
		Tags: models.StringList{"tour"}, CreatedAt: old,
	}
	fresh := &models.ForumPost{
		UserID: author.ID, Title: "tour dates", Content: "leaked",
		Status: models.StatusApproved,
		Tags:   models.StringList{"tour"}, CreatedAt: old.Add(time.Hour),
	}
	require.NoError(t, db.Create(pinned).Error)
	require.NoError(t, db.Create(fresh).Error)

	svc := NewFeedService(
		repository.NewPostRepository(db),
		repository.NewReplyRepository(db),
		repository.NewUserRepository(db),
	)

	feed, err := svc.GetFeed(context.Background(), SortLatest, "tour", 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "tour dates", feed[0].Title, "recency wins over pinning under a tag filter")

	feed, err = svc.GetFeed(context.Background(), SortLatest, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "tour faq", feed[0].Title, "pinned leads the unfiltered feed")
}
