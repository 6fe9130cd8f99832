package service

import (
	"context"
	"mime/multipart"
	"strings"

	"stanhub/internal/middleware"
	"stanhub/internal/models"
	"stanhub/internal/repository"
)

// ImageUploader saves a composer attachment and returns its public URL.
type ImageUploader interface {
	SavePostImage(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type PostService struct {
	postRepo   repository.PostRepository
	reportRepo repository.ReportRepository
	replyRepo  repository.ReplyRepository
	userRepo   repository.UserRepository
	uploader   ImageUploader
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Category string
	Tags     []string
	Images   []*multipart.FileHeader
}

type CreateReplyInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type ReportPostInput struct {
	UserID uint
	PostID uint
	Reason string
}

func NewPostService(
	postRepo repository.PostRepository,
	reportRepo repository.ReportRepository,
	replyRepo repository.ReplyRepository,
	userRepo repository.UserRepository,
	uploader ImageUploader,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		reportRepo: reportRepo,
		replyRepo:  replyRepo,
		userRepo:   userRepo,
		uploader:   uploader,
	}
}

const (
	maxTitleLen   = 200
	maxContentLen = 20000
	maxReasonLen  = 1000
	maxTags       = 10
	maxImages     = 5
)

// CreatePost runs the full composer flow: validation, reserved-category
// check, attachment uploads and the insert. The reserved-category check
// happens before any upload or insert so a rejected post leaves no trace.
// Attachment uploads are sequential and a failed upload is skipped rather
// than failing the whole post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.ForumPost, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 20000 characters)")
	}
	if len(in.Tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}
	if len(in.Images) > maxImages {
		return nil, models.NewValidationError("Too many images (max 5)")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "General"
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if models.AdminOnlyCategories[strings.ToLower(category)] && !author.IsAdmin() {
		return nil, models.NewUnauthorizedError("This category is reserved for site announcements")
	}

	tags := make(models.StringList, 0, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}

	imageURLs := make(models.StringList, 0, len(in.Images))
	for _, file := range in.Images {
		url, upErr := s.uploader.SavePostImage(ctx, file)
		if upErr != nil {
			middleware.Logger.WarnContext(ctx, "skipping failed image upload",
				"filename", file.Filename, "error", upErr)
			continue
		}
		imageURLs = append(imageURLs, url)
	}

	status := models.StatusPending
	if author.IsAdmin() {
		status = models.StatusApproved
	}

	post := &models.ForumPost{
		UserID:    in.UserID,
		Title:     title,
		Content:   content,
		Category:  category,
		Tags:      tags,
		ImageURLs: imageURLs,
		Status:    status,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// The authored-post counter is decorative; a failed bump never fails
	// the create.
	go func() {
		bgCtx := context.WithoutCancel(ctx)
		if err := s.userRepo.IncrementPostCount(bgCtx, in.UserID, 1); err != nil {
			middleware.Logger.WarnContext(bgCtx, "failed to bump post count",
				"user_id", in.UserID, "error", err)
		}
	}()

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ToggleLike flips the (post, user) like membership and returns the post
// with its recomputed counter. A failed write surfaces as an error; the
// caller never sees an optimistic count.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.ForumPost, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.StatusApproved {
		return nil, models.NewNotFoundError("Post", postID)
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
		middleware.LikeToggles.WithLabelValues("unlike").Inc()
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
		middleware.LikeToggles.WithLabelValues("like").Inc()
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// CreateReply adds a flat reply to an approved post.
func (s *PostService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.ForumReply, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 20000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.StatusApproved {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	reply := &models.ForumReply{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: content,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ReportPost files a report against a post. A user can hold at most one
// pending report per post; filing again while one is open is a no-op error.
func (s *PostService) ReportPost(ctx context.Context, in ReportPostInput) (*models.ForumReport, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}
	if len(reason) > maxReasonLen {
		return nil, models.NewValidationError("Reason too long (max 1000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID); err != nil {
		return nil, err
	}

	pending, err := s.reportRepo.HasPending(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.NewValidationError("You already have an open report on this post")
	}

	report := &models.ForumReport{
		PostID: in.PostID,
		UserID: in.UserID,
		Reason: reason,
		Status: models.ReportPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// GetUserPosts lists a user's own posts, whatever their moderation status.
func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.ForumPost, error) {
	return s.postRepo.ListByUserID(ctx, userID, limit, offset)
}
