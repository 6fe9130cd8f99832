package service

import (
	"context"

	"stanhub/internal/middleware"
	"stanhub/internal/models"
	"stanhub/internal/repository"
)

// Moderation verdicts accepted for queue items.
const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
)

// QueueItem is one pending post in the moderation queue with its author.
type QueueItem struct {
	models.ForumPost
	Author models.PublicProfile `json:"user"`
}

// ReportItem is one report joined with the reported post and both authors.
type ReportItem struct {
	models.ForumReport
	Reporter models.PublicProfile `json:"reporter"`
	Post     *models.ForumPost    `json:"post,omitempty"`
}

// QueueSummary is the admin dashboard counters row.
type QueueSummary struct {
	PendingPosts   int64 `json:"pending_posts"`
	PendingReports int64 `json:"pending_reports"`
	PendingMedia   int64 `json:"pending_media"`
}

// ModerationService provides the admin moderation queue and verdict logic.
type ModerationService struct {
	postRepo    repository.PostRepository
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	postRepo repository.PostRepository,
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	contentRepo repository.ContentRepository,
) *ModerationService {
	return &ModerationService{
		postRepo:    postRepo,
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		contentRepo: contentRepo,
	}
}

// GetQueue lists pending posts newest first, each with its author profile.
func (s *ModerationService) GetQueue(ctx context.Context, limit, offset int) ([]QueueItem, error) {
	posts, err := s.postRepo.ListByStatus(ctx, models.StatusPending, limit, offset)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(posts))
	seen := map[uint]struct{}{}
	for _, p := range posts {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			authorIDs = append(authorIDs, p.UserID)
		}
	}
	profiles, err := s.userRepo.GetProfiles(ctx, authorIDs)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "author profile fetch failed, rendering placeholders", "error", err)
		profiles = map[uint]models.PublicProfile{}
	}

	items := make([]QueueItem, 0, len(posts))
	for _, p := range posts {
		author, ok := profiles[p.UserID]
		if !ok {
			author = models.PlaceholderProfile()
		}
		items = append(items, QueueItem{ForumPost: *p, Author: author})
	}
	return items, nil
}

// QueueOverview bundles everything awaiting review in one payload.
type QueueOverview struct {
	Posts   []QueueItem         `json:"posts"`
	Media   []*models.MediaItem `json:"media"`
	Charms  []*models.Charm     `json:"charms"`
	Reports []ReportItem        `json:"reports"`
}

// GetOverview assembles pending posts, pending media, unapproved charms and
// pending reports for the admin queue. The sections degrade independently:
// a failing fetch logs a warning and leaves its section empty instead of
// failing the whole payload.
func (s *ModerationService) GetOverview(ctx context.Context, limit, offset int) *QueueOverview {
	out := &QueueOverview{
		Posts:   []QueueItem{},
		Media:   []*models.MediaItem{},
		Charms:  []*models.Charm{},
		Reports: []ReportItem{},
	}

	if posts, err := s.GetQueue(ctx, limit, offset); err != nil {
		middleware.Logger.WarnContext(ctx, "queue section failed", "section", "posts", "error", err)
	} else {
		out.Posts = posts
	}

	if media, err := s.contentRepo.ListMediaItems(ctx, 0, models.StatusPending, limit, offset); err != nil {
		middleware.Logger.WarnContext(ctx, "queue section failed", "section", "media", "error", err)
	} else {
		out.Media = media
	}

	if charms, err := s.contentRepo.ListCharms(ctx, false); err != nil {
		middleware.Logger.WarnContext(ctx, "queue section failed", "section", "charms", "error", err)
	} else {
		for _, charm := range charms {
			if !charm.IsApproved {
				out.Charms = append(out.Charms, charm)
			}
		}
	}

	if reports, err := s.GetReports(ctx, models.ReportPending, limit, offset); err != nil {
		middleware.Logger.WarnContext(ctx, "queue section failed", "section", "reports", "error", err)
	} else {
		out.Reports = reports
	}

	return out
}

// GetSummary returns the pending counters shown on the admin dashboard.
func (s *ModerationService) GetSummary(ctx context.Context) (*QueueSummary, error) {
	pendingPosts, err := s.postRepo.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	pendingReports, err := s.reportRepo.CountByStatus(ctx, models.ReportPending)
	if err != nil {
		return nil, err
	}
	pendingMedia, err := s.contentRepo.CountMediaByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	return &QueueSummary{
		PendingPosts:   pendingPosts,
		PendingReports: pendingReports,
		PendingMedia:   pendingMedia,
	}, nil
}

// ReviewPost records an approve or reject verdict on a pending post.
// Approval makes the post immediately eligible for the public feed window.
func (s *ModerationService) ReviewPost(ctx context.Context, postID uint, verdict string) error {
	var status string
	switch verdict {
	case VerdictApprove:
		status = models.StatusApproved
	case VerdictReject:
		status = models.StatusRejected
	default:
		return models.NewValidationError("Verdict must be approve or reject")
	}

	if err := s.postRepo.UpdateStatus(ctx, postID, status); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("post", verdict).Inc()
	return nil
}

// DeletePost removes a post outright and resolves any pending reports
// against it so the report queue never points at a missing post.
func (s *ModerationService) DeletePost(ctx context.Context, postID uint) error {
	if err := s.reportRepo.ResolveByPost(ctx, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("post", "delete").Inc()
	return nil
}

// SetPinned pins or unpins an approved post at the top of the feed.
func (s *ModerationService) SetPinned(ctx context.Context, postID uint, pinned bool) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if pinned && post.Status != models.StatusApproved {
		return models.NewValidationError("Only approved posts can be pinned")
	}
	return s.postRepo.SetPinned(ctx, postID, pinned)
}

// GetReports lists reports by status, each joined with the reporter profile
// and the reported post when it still exists.
func (s *ModerationService) GetReports(ctx context.Context, status string, limit, offset int) ([]ReportItem, error) {
	if status == "" {
		status = models.ReportPending
	}
	reports, err := s.reportRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	reporterIDs := make([]uint, 0, len(reports))
	seen := map[uint]struct{}{}
	for _, rep := range reports {
		if _, ok := seen[rep.UserID]; !ok {
			seen[rep.UserID] = struct{}{}
			reporterIDs = append(reporterIDs, rep.UserID)
		}
	}
	profiles, err := s.userRepo.GetProfiles(ctx, reporterIDs)
	if err != nil {
		return nil, err
	}

	items := make([]ReportItem, 0, len(reports))
	for _, rep := range reports {
		reporter, ok := profiles[rep.UserID]
		if !ok {
			reporter = models.PlaceholderProfile()
		}
		item := ReportItem{ForumReport: *rep, Reporter: reporter}
		post, postErr := s.postRepo.GetByID(ctx, rep.PostID, 0)
		if postErr == nil {
			item.Post = post
		}
		items = append(items, item)
	}
	return items, nil
}

// ResolveReport closes a report as resolved.
func (s *ModerationService) ResolveReport(ctx context.Context, reportID uint) error {
	if err := s.reportRepo.UpdateStatus(ctx, reportID, models.ReportResolved); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("report", "resolve").Inc()
	return nil
}

// DismissReport closes a report as dismissed, leaving the post untouched.
func (s *ModerationService) DismissReport(ctx context.Context, reportID uint) error {
	if err := s.reportRepo.UpdateStatus(ctx, reportID, models.ReportDismissed); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("report", "dismiss").Inc()
	return nil
}

// DeleteReported deletes the post a report points at and resolves every
// pending report against it, including this one.
func (s *ModerationService) DeleteReported(ctx context.Context, reportID uint) error {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	return s.DeletePost(ctx, report.PostID)
}

// ReviewMedia records an approve or reject verdict on a gallery item.
func (s *ModerationService) ReviewMedia(ctx context.Context, mediaID uint, verdict string) error {
	var status string
	switch verdict {
	case VerdictApprove:
		status = models.StatusApproved
	case VerdictReject:
		status = models.StatusRejected
	default:
		return models.NewValidationError("Verdict must be approve or reject")
	}
	if err := s.contentRepo.UpdateMediaStatus(ctx, mediaID, status); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("media", verdict).Inc()
	return nil
}

// ApproveCharm publishes a submitted charm.
func (s *ModerationService) ApproveCharm(ctx context.Context, charmID uint) error {
	if err := s.contentRepo.ApproveCharm(ctx, charmID); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("charm", "approve").Inc()
	return nil
}

// DeleteCharm removes a charm, published or not.
func (s *ModerationService) DeleteCharm(ctx context.Context, charmID uint) error {
	if err := s.contentRepo.DeleteCharm(ctx, charmID); err != nil {
		return err
	}
	middleware.ModerationActions.WithLabelValues("charm", "delete").Inc()
	return nil
}
