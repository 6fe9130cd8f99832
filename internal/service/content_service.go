package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"stanhub/internal/models"
	"stanhub/internal/repository"
)

// ContentService covers the parallel site content: gallery albums and media,
// the timeline, charms and the editable home sections.
type ContentService struct {
	contentRepo repository.ContentRepository
	uploads     *UploadService
}

type AlbumInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

type TimelineEventInput struct {
	EventDate    time.Time `json:"event_date"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CoverURL     string    `json:"cover_url"`
	Category     string    `json:"category"`
	DisplayOrder int       `json:"display_order"`
}

type UploadMediaInput struct {
	UserID  uint
	AlbumID *uint
	Title   string
	Type    string
	File    *multipart.FileHeader
}

func NewContentService(contentRepo repository.ContentRepository, uploads *UploadService) *ContentService {
	return &ContentService{contentRepo: contentRepo, uploads: uploads}
}

func (s *ContentService) CreateAlbum(ctx context.Context, in AlbumInput) (*models.Album, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	album := &models.Album{
		Title:       strings.TrimSpace(in.Title),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		CoverURL:    in.CoverURL,
	}
	if err := s.contentRepo.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *ContentService) ListAlbums(ctx context.Context, category string) ([]*models.Album, error) {
	return s.contentRepo.ListAlbums(ctx, category)
}

func (s *ContentService) UpdateAlbum(ctx context.Context, id uint, in AlbumInput) (*models.Album, error) {
	album, err := s.contentRepo.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		album.Title = strings.TrimSpace(in.Title)
	}
	if in.Category != "" {
		album.Category = strings.TrimSpace(in.Category)
	}
	if in.Description != "" {
		album.Description = in.Description
	}
	if in.CoverURL != "" {
		album.CoverURL = in.CoverURL
	}
	if err := s.contentRepo.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *ContentService) DeleteAlbum(ctx context.Context, id uint) error {
	return s.contentRepo.DeleteAlbum(ctx, id)
}

// ReorderAlbums rewrites display order to match the given ID sequence.
func (s *ContentService) ReorderAlbums(ctx context.Context, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return models.NewValidationError("Order list is required")
	}
	return s.contentRepo.ReorderAlbums(ctx, orderedIDs)
}

// UploadMedia stores a gallery file and creates its pending media item.
// Admin uploads are approved immediately by the caller flipping status.
func (s *ContentService) UploadMedia(ctx context.Context, in UploadMediaInput, approved bool) (*models.MediaItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	mediaType := in.Type
	switch mediaType {
	case models.MediaTypePhoto, models.MediaTypeVideo, models.MediaTypeAudio:
	case "":
		mediaType = models.MediaTypePhoto
	default:
		return nil, models.NewValidationError("Invalid media type")
	}

	url, thumbURL, err := s.uploads.SaveGalleryMedia(ctx, in.File)
	if err != nil {
		return nil, err
	}

	status := models.StatusPending
	if approved {
		status = models.StatusApproved
	}
	item := &models.MediaItem{
		AlbumID:      in.AlbumID,
		UserID:       &in.UserID,
		Type:         mediaType,
		Title:        strings.TrimSpace(in.Title),
		URL:          url,
		ThumbnailURL: thumbURL,
		Status:       status,
	}
	if err := s.contentRepo.CreateMediaItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListGallery returns approved media for public pages; admins pass an empty
// status to see everything.
func (s *ContentService) ListGallery(ctx context.Context, albumID uint, status string, limit, offset int) ([]*models.MediaItem, error) {
	return s.contentRepo.ListMediaItems(ctx, albumID, status, limit, offset)
}

func (s *ContentService) DeleteMedia(ctx context.Context, id uint) error {
	return s.contentRepo.DeleteMediaItem(ctx, id)
}

func (s *ContentService) CreateTimelineEvent(ctx context.Context, in TimelineEventInput) (*models.TimelineEvent, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.EventDate.IsZero() {
		return nil, models.NewValidationError("Event date is required")
	}
	event := &models.TimelineEvent{
		EventDate:    in.EventDate,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		CoverURL:     in.CoverURL,
		Category:     in.Category,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.contentRepo.CreateTimelineEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ContentService) ListTimeline(ctx context.Context) ([]*models.TimelineEvent, error) {
	return s.contentRepo.ListTimelineEvents(ctx)
}

func (s *ContentService) UpdateTimelineEvent(ctx context.Context, id uint, in TimelineEventInput) (*models.TimelineEvent, error) {
	event, err := s.contentRepo.GetTimelineEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		event.Title = strings.TrimSpace(in.Title)
	}
	if !in.EventDate.IsZero() {
		event.EventDate = in.EventDate
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if in.CoverURL != "" {
		event.CoverURL = in.CoverURL
	}
	if in.Category != "" {
		event.Category = in.Category
	}
	if in.DisplayOrder != 0 {
		event.DisplayOrder = in.DisplayOrder
	}
	if err := s.contentRepo.UpdateTimelineEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ContentService) DeleteTimelineEvent(ctx context.Context, id uint) error {
	return s.contentRepo.DeleteTimelineEvent(ctx, id)
}

const maxCharmLen = 280

// SubmitCharm records a fan message; it stays hidden until approved.
func (s *ContentService) SubmitCharm(ctx context.Context, content string) (*models.Charm, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCharmLen {
		return nil, models.NewValidationError("Content too long (max 280 characters)")
	}
	charm := &models.Charm{Content: content}
	if err := s.contentRepo.CreateCharm(ctx, charm); err != nil {
		return nil, err
	}
	return charm, nil
}

func (s *ContentService) ListCharms(ctx context.Context, approvedOnly bool) ([]*models.Charm, error) {
	return s.contentRepo.ListCharms(ctx, approvedOnly)
}

func (s *ContentService) GetHomeContent(ctx context.Context, key string) (*models.HomeContent, error) {
	if strings.TrimSpace(key) == "" {
		return nil, models.NewValidationError("Key is required")
	}
	return s.contentRepo.GetHomeContent(ctx, key)
}

func (s *ContentService) SetHomeContent(ctx context.Context, key, value string) (*models.HomeContent, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, models.NewValidationError("Key is required")
	}
	content := &models.HomeContent{Key: key, Value: value}
	if err := s.contentRepo.UpsertHomeContent(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}
