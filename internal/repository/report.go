package repository

import (
	"context"
	"errors"

	"stanhub/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines interface for report operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.ForumReport) error
	GetByID(ctx context.Context, id uint) (*models.ForumReport, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.ForumReport, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	ResolveByPost(ctx context.Context, postID uint) error
	HasPending(ctx context.Context, userID, postID uint) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.ForumReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.ForumReport, error) {
	var report models.ForumReport
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.ForumReport, error) {
	var reports []*models.ForumReport
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ForumReport{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ForumReport{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

// ResolveByPost marks every pending report against a post as resolved; used
// when a moderator deletes the reported post itself.
func (r *reportRepository) ResolveByPost(ctx context.Context, postID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.ForumReport{}).
		Where("post_id = ? AND status = ?", postID, models.ReportPending).
		Update("status", models.ReportResolved).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HasPending reports whether the user already has an open report on the post.
func (r *reportRepository) HasPending(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ForumReport{}).
		Where("user_id = ? AND post_id = ? AND status = ?", userID, postID, models.ReportPending).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
