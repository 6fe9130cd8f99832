package repository

import (
	"context"
	"errors"

	"stanhub/internal/cache"
	"stanhub/internal/models"

	"gorm.io/gorm"
)

// ContentRepository defines persistence for the parallel content entities
// shown on the public site: albums, media items, timeline events, charms
// and the editable home sections.
type ContentRepository interface {
	CreateAlbum(ctx context.Context, album *models.Album) error
	GetAlbum(ctx context.Context, id uint) (*models.Album, error)
	ListAlbums(ctx context.Context, category string) ([]*models.Album, error)
	UpdateAlbum(ctx context.Context, album *models.Album) error
	DeleteAlbum(ctx context.Context, id uint) error
	ReorderAlbums(ctx context.Context, orderedIDs []uint) error

	CreateMediaItem(ctx context.Context, item *models.MediaItem) error
	GetMediaItem(ctx context.Context, id uint) (*models.MediaItem, error)
	ListMediaItems(ctx context.Context, albumID uint, status string, limit, offset int) ([]*models.MediaItem, error)
	CountMediaByStatus(ctx context.Context, status string) (int64, error)
	UpdateMediaStatus(ctx context.Context, id uint, status string) error
	DeleteMediaItem(ctx context.Context, id uint) error

	CreateTimelineEvent(ctx context.Context, event *models.TimelineEvent) error
	GetTimelineEvent(ctx context.Context, id uint) (*models.TimelineEvent, error)
	ListTimelineEvents(ctx context.Context) ([]*models.TimelineEvent, error)
	UpdateTimelineEvent(ctx context.Context, event *models.TimelineEvent) error
	DeleteTimelineEvent(ctx context.Context, id uint) error

	CreateCharm(ctx context.Context, charm *models.Charm) error
	ListCharms(ctx context.Context, approvedOnly bool) ([]*models.Charm, error)
	ApproveCharm(ctx context.Context, id uint) error
	DeleteCharm(ctx context.Context, id uint) error

	GetHomeContent(ctx context.Context, key string) (*models.HomeContent, error)
	UpsertHomeContent(ctx context.Context, content *models.HomeContent) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository returns a new ContentRepository implementation.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) CreateAlbum(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Create(album).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) GetAlbum(ctx context.Context, id uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Album", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &album, nil
}

func (r *contentRepository) ListAlbums(ctx context.Context, category string) ([]*models.Album, error) {
	var albums []*models.Album
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("display_order ASC, created_at DESC").Find(&albums).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return albums, nil
}

func (r *contentRepository) UpdateAlbum(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Save(album).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) DeleteAlbum(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Delete(&models.MediaItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Album{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ReorderAlbums rewrites display_order to match the given ID sequence.
func (r *contentRepository) ReorderAlbums(ctx context.Context, orderedIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&models.Album{}).
				Where("id = ?", id).
				Update("display_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) CreateMediaItem(ctx context.Context, item *models.MediaItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) GetMediaItem(ctx context.Context, id uint) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Media item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *contentRepository) ListMediaItems(ctx context.Context, albumID uint, status string, limit, offset int) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	q := r.db.WithContext(ctx)
	if albumID != 0 {
		q = q.Where("album_id = ?", albumID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("display_order ASC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *contentRepository) CountMediaByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MediaItem{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *contentRepository) UpdateMediaStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.MediaItem{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Media item", id)
	}
	return nil
}

func (r *contentRepository) DeleteMediaItem(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.MediaItem{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) CreateTimelineEvent(ctx context.Context, event *models.TimelineEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TimelineKey)
	return nil
}

func (r *contentRepository) GetTimelineEvent(ctx context.Context, id uint) (*models.TimelineEvent, error) {
	var event models.TimelineEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Timeline event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *contentRepository) ListTimelineEvents(ctx context.Context) ([]*models.TimelineEvent, error) {
	var events []*models.TimelineEvent
	err := cache.Aside(ctx, cache.TimelineKey, &events, cache.TimelineTTL, func() error {
		return r.db.WithContext(ctx).
			Order("event_date DESC, display_order ASC").
			Find(&events).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *contentRepository) UpdateTimelineEvent(ctx context.Context, event *models.TimelineEvent) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TimelineKey)
	return nil
}

func (r *contentRepository) DeleteTimelineEvent(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.TimelineEvent{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TimelineKey)
	return nil
}

func (r *contentRepository) CreateCharm(ctx context.Context, charm *models.Charm) error {
	if err := r.db.WithContext(ctx).Create(charm).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) ListCharms(ctx context.Context, approvedOnly bool) ([]*models.Charm, error) {
	var charms []*models.Charm
	q := r.db.WithContext(ctx)
	if approvedOnly {
		err := cache.Aside(ctx, cache.CharmsKey, &charms, cache.CharmsTTL, func() error {
			return q.Where("is_approved = ?", true).
				Order("created_at DESC").
				Find(&charms).Error
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return charms, nil
	}
	if err := q.Order("created_at DESC").Find(&charms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return charms, nil
}

func (r *contentRepository) ApproveCharm(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Charm{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Charm", id)
	}
	cache.Invalidate(ctx, cache.CharmsKey)
	return nil
}

func (r *contentRepository) DeleteCharm(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Charm{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CharmsKey)
	return nil
}

func (r *contentRepository) GetHomeContent(ctx context.Context, key string) (*models.HomeContent, error) {
	var content models.HomeContent
	err := cache.Aside(ctx, cache.HomeContentKey(key), &content, cache.HomeContentTTL, func() error {
		return r.db.WithContext(ctx).Where("key = ?", key).First(&content).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Home content", 0)
		}
		return nil, models.NewInternalError(err)
	}
	return &content, nil
}

func (r *contentRepository) UpsertHomeContent(ctx context.Context, content *models.HomeContent) error {
	if err := r.db.WithContext(ctx).Save(content).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.HomeContentKey(content.Key))
	return nil
}
