package service

import (
	"context"
	"sort"

	"stanhub/internal/cache"
	"stanhub/internal/middleware"
	"stanhub/internal/models"
	"stanhub/internal/repository"
)

// Feed sort policies.
const (
	SortLatest   = "latest"
	SortTrending = "trending"
)

// FeedService builds the display-ready forum feed and thread views out of
// posts, author profiles and reply counts.
type FeedService struct {
	postRepo  repository.PostRepository
	replyRepo repository.ReplyRepository
	userRepo  repository.UserRepository
}

func NewFeedService(
	postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository,
	userRepo repository.UserRepository,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		replyRepo: replyRepo,
		userRepo:  userRepo,
	}
}

// AssembleFeed merges posts with their author profiles and reply counts.
// A post whose author is missing from profiles gets the placeholder profile
// instead of being dropped; a post absent from replyCounts has zero replies.
func AssembleFeed(posts []*models.ForumPost, profiles map[uint]models.PublicProfile, replyCounts map[uint]int) []models.FeedPost {
	feed := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		author, ok := profiles[p.UserID]
		if !ok {
			author = models.PlaceholderProfile()
		}
		feed = append(feed, models.FeedPost{
			ForumPost:  *p,
			Author:     author,
			ReplyCount: replyCounts[p.ID],
		})
	}
	return feed
}

// SortFeed orders feed entries per the requested policy. With pinnedFirst
// set, pinned posts come before everything else regardless of policy; a tag-
// filtered feed passes false so matches sort uniformly. The sort is stable,
// so entries that tie on trending score keep their newest-first order.
func SortFeed(feed []models.FeedPost, sortBy string, pinnedFirst bool) {
	sort.SliceStable(feed, func(i, j int) bool {
		if pinnedFirst && feed[i].IsPinned != feed[j].IsPinned {
			return feed[i].IsPinned
		}
		if sortBy == SortTrending {
			si, sj := feed[i].TrendingScore(), feed[j].TrendingScore()
			if si != sj {
				return si > sj
			}
		}
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
}

// GetFeed returns the approved feed window, assembled and sorted. Anonymous
// requests are served through the cache; logged-in requests always hit the
// database so liked flags are personal.
func (s *FeedService) GetFeed(ctx context.Context, sortBy, tag string, currentUserID uint) ([]models.FeedPost, error) {
	if sortBy != SortTrending {
		sortBy = SortLatest
	}

	if currentUserID == 0 {
		var feed []models.FeedPost
		err := cache.Aside(ctx, cache.FeedKey(sortBy, tag), &feed, cache.FeedTTL, func() error {
			var fetchErr error
			feed, fetchErr = s.buildFeed(ctx, sortBy, tag, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return feed, nil
	}

	return s.buildFeed(ctx, sortBy, tag, currentUserID)
}

func (s *FeedService) buildFeed(ctx context.Context, sortBy, tag string, currentUserID uint) ([]models.FeedPost, error) {
	posts, err := s.postRepo.ListApproved(ctx, tag, currentUserID)
	if err != nil {
		return nil, err
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	seen := map[uint]struct{}{}
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	// Reply counts and author profiles are secondary: if either fetch
	// fails the feed still renders, with zero counts or placeholder
	// authors. Only the post fetch above aborts the request.
	replyCounts, err := s.postRepo.ReplyCounts(ctx, postIDs)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "reply count fetch failed, rendering zeros", "error", err)
		replyCounts = map[uint]int{}
	}
	profiles, err := s.userRepo.GetProfiles(ctx, authorIDs)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "author profile fetch failed, rendering placeholders", "error", err)
		profiles = map[uint]models.PublicProfile{}
	}

	feed := AssembleFeed(posts, profiles, replyCounts)
	SortFeed(feed, sortBy, tag == "")
	return feed, nil
}

// GetThread returns one post with its author, reply count and full reply
// thread. Posts that are not approved are only visible to their author and
// to admins; everyone else gets a not-found error, never a partial view.
func (s *FeedService) GetThread(ctx context.Context, postID, currentUserID uint, isAdmin bool) (*models.PostThread, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.StatusApproved && post.UserID != currentUserID && !isAdmin {
		return nil, models.NewNotFoundError("Post", postID)
	}

	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	authorIDs := []uint{post.UserID}
	seen := map[uint]struct{}{post.UserID: {}}
	for _, r := range replies {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			authorIDs = append(authorIDs, r.UserID)
		}
	}
	profiles, err := s.userRepo.GetProfiles(ctx, authorIDs)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "author profile fetch failed, rendering placeholders",
			"post_id", postID, "error", err)
		profiles = map[uint]models.PublicProfile{}
	}

	author, ok := profiles[post.UserID]
	if !ok {
		author = models.PlaceholderProfile()
	}
	thread := &models.PostThread{
		Post: models.FeedPost{
			ForumPost:  *post,
			Author:     author,
			ReplyCount: len(replies),
		},
		Replies: make([]models.ThreadReply, 0, len(replies)),
	}
	for _, r := range replies {
		replyAuthor, ok := profiles[r.UserID]
		if !ok {
			replyAuthor = models.PlaceholderProfile()
		}
		thread.Replies = append(thread.Replies, models.ThreadReply{
			ForumReply: *r,
			Author:     replyAuthor,
		})
	}

	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to bump view count", "post_id", postID, "error", err)
	}

	return thread, nil
}
