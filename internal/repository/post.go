// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"stanhub/internal/cache"
	"stanhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedWindowSize is the number of approved posts served to the public feed.
const FeedWindowSize = 20

// PostRepository defines the interface for forum post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.ForumPost) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.ForumPost, error)
	ListApproved(ctx context.Context, tag string, currentUserID uint) ([]*models.ForumPost, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.ForumPost, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.ForumPost, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	SetPinned(ctx context.Context, id uint, pinned bool) error
	IncrementViewCount(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	ReplyCounts(ctx context.Context, postIDs []uint) (map[uint]int, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.ForumPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.ForumPost, error) {
	var post models.ForumPost

	var err error
	if currentUserID == 0 {
		key := cache.PostKey(id)
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).First(&post, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListApproved returns the approved feed window, pinned posts first and the
// newest posts after them. Tag filtering matches against the JSON-encoded
// tags column.
func (r *postRepository) ListApproved(ctx context.Context, tag string, currentUserID uint) ([]*models.ForumPost, error) {
	var posts []*models.ForumPost
	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Where("forum_posts.status = ?", models.StatusApproved)
	if tag != "" {
		q = q.Where(`forum_posts.tags LIKE ?`, `%"`+tag+`"%`)
	}
	err := q.
		Order("forum_posts.is_pinned DESC, forum_posts.created_at DESC").
		Limit(FeedWindowSize).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.ForumPost, error) {
	var posts []*models.ForumPost
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Where("forum_posts.status = ?", status).
		Order("forum_posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.ForumPost, error) {
	var posts []*models.ForumPost
	err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Where("forum_posts.user_id = ?", userID).
		Order("forum_posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) SetPinned(ctx context.Context, id uint, pinned bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("id = ?", id).
		Update("is_pinned", pinned)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes a post and its dependent rows in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.ForumReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.ForumPostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.ForumReport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ForumPost{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

// ReplyCounts aggregates reply totals for a set of posts in a single query.
func (r *postRepository) ReplyCounts(ctx context.Context, postIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type row struct {
		PostID uint
		Total  int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.ForumReply{}).
		Select("post_id, COUNT(*) as total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, rw := range rows {
		counts[rw.PostID] = rw.Total
	}
	return counts, nil
}

// applyPostDetails adds subqueries to fetch the like count and liked status
// in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "forum_posts.*, " +
		"(SELECT COUNT(*) FROM forum_post_likes WHERE forum_post_likes.post_id = forum_posts.id) as like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM forum_post_likes WHERE forum_post_likes.post_id = forum_posts.id AND forum_post_likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ForumPostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// ON CONFLICT DO NOTHING keeps concurrent double-taps from producing
	// duplicate key errors; the unique index is the source of truth.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&models.ForumPostLike{PostID: postID, UserID: userID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	// Hard delete the membership row; there is no soft delete on likes.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.ForumPostLike{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateFeed(ctx)
	return nil
}
