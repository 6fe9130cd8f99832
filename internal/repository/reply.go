package repository

import (
	"context"

	"stanhub/internal/cache"
	"stanhub/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines interface for reply operations
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.ForumReply) error
	ListByPost(ctx context.Context, postID uint) ([]*models.ForumReply, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository creates a new ReplyRepository
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.ForumReply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, reply.PostID)
	cache.InvalidateFeed(ctx)
	return nil
}

// ListByPost returns a post's replies oldest first, the order the thread
// view renders them in.
func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]*models.ForumReply, error) {
	var replies []*models.ForumReply
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *replyRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ForumReply{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
