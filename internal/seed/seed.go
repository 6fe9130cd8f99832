package seed

import (
	"fmt"
	"log/slog"
	"time"

	"stanhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much demo data Run generates.
type Options struct {
	Users int
	Posts int
	Clean bool
}

// DefaultOptions is a sensible dataset for local development.
var DefaultOptions = Options{Users: 25, Posts: 120, Clean: false}

var seedTables = []string{
	"forum_reports",
	"forum_post_likes",
	"forum_replies",
	"forum_posts",
	"media_items",
	"albums",
	"timeline_events",
	"idol_charms",
	"home_content",
	"users",
}

// Run populates the database with demo users, forum activity, and site
// content. When opts.Clean is set, all seedable tables are truncated first.
func Run(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts.Users = DefaultOptions.Users
	}
	if opts.Posts <= 0 {
		opts.Posts = DefaultOptions.Posts
	}

	if opts.Clean {
		if err := clean(db); err != nil {
			return fmt.Errorf("cleaning tables: %w", err)
		}
		slog.Info("cleared existing seed data")
	}

	f := NewFactory(db)

	users, err := seedUsers(f, opts.Users)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	slog.Info("seeded users", "count", len(users))

	posts, err := seedPosts(f, users, opts.Posts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	slog.Info("seeded forum posts", "count", len(posts))

	if err := seedActivity(f, users, posts); err != nil {
		return fmt.Errorf("seeding forum activity: %w", err)
	}

	if err := seedContent(f, db); err != nil {
		return fmt.Errorf("seeding site content: %w", err)
	}

	slog.Info("seeding complete")
	return nil
}

func clean(db *gorm.DB) error {
	for _, table := range seedTables {
		// Skip the dev root admin so local logins survive a reseed.
		if table == "users" {
			if err := db.Exec("DELETE FROM users WHERE id <> 1").Error; err != nil {
				return err
			}
			continue
		}
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	// One seeded moderator account with a stable nickname for manual testing.
	mod, err := f.CreateUser(func(u *models.User) {
		u.Nickname = "seed_mod"
		u.Role = models.RoleAdmin
	})
	if err != nil {
		return nil, err
	}
	return append(users, mod), nil
}

func seedPosts(f *Factory, users []*models.User, count int) ([]*models.ForumPost, error) {
	posts := make([]*models.ForumPost, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.r.Intn(len(users))]
		posts = append(posts, f.BuildPost(author, 90))
	}
	// A couple of pinned announcements near the top of the feed.
	admin := users[len(users)-1]
	for i := 0; i < 2; i++ {
		posts = append(posts, f.BuildPost(admin, 7, func(p *models.ForumPost) {
			p.Category = "Announcement"
			p.Status = models.StatusApproved
			p.IsPinned = true
		}))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func seedActivity(f *Factory, users []*models.User, posts []*models.ForumPost) error {
	replies, likes, reports := 0, 0, 0
	for _, post := range posts {
		if post.Status != models.StatusApproved {
			continue
		}
		for i := 0; i < f.r.Intn(5); i++ {
			if _, err := f.CreateReply(users[f.r.Intn(len(users))], post); err != nil {
				return err
			}
			replies++
		}
		for i := 0; i < f.r.Intn(8); i++ {
			if err := f.CreateLike(users[f.r.Intn(len(users))], post); err != nil {
				return err
			}
			likes++
		}
		if f.r.Intn(20) == 0 {
			if _, err := f.CreateReport(users[f.r.Intn(len(users))], post); err != nil {
				return err
			}
			reports++
		}
	}
	slog.Info("seeded forum activity", "replies", replies, "likes", likes, "reports", reports)
	return nil
}

func seedContent(f *Factory, db *gorm.DB) error {
	albums := []models.Album{
		{Title: "Debut Era", Category: "photo", Description: gofakeit.Sentence(10), DisplayOrder: 0},
		{Title: "World Tour 2025", Category: "photo", Description: gofakeit.Sentence(10), DisplayOrder: 1},
		{Title: "Behind the Scenes", Category: "video", Description: gofakeit.Sentence(10), DisplayOrder: 2},
	}
	if err := db.Create(&albums).Error; err != nil {
		return err
	}

	media := make([]models.MediaItem, 0, len(albums)*6)
	for i := range albums {
		albumID := albums[i].ID
		for j := 0; j < 6; j++ {
			media = append(media, models.MediaItem{
				AlbumID:      &albumID,
				Type:         models.MediaTypePhoto,
				Title:        gofakeit.Sentence(3),
				URL:          fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", gofakeit.UUID()),
				ThumbnailURL: fmt.Sprintf("https://picsum.photos/seed/%s/480/320", gofakeit.UUID()),
				Status:       models.StatusApproved,
				DisplayOrder: j,
			})
		}
	}
	if err := db.Create(&media).Error; err != nil {
		return err
	}

	events := []models.TimelineEvent{
		{EventDate: time.Date(2021, 6, 12, 0, 0, 0, 0, time.UTC), Title: "Official Debut", Category: "milestone"},
		{EventDate: time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC), Title: "First Music Show Win", Category: "award"},
		{EventDate: time.Date(2023, 9, 22, 0, 0, 0, 0, time.UTC), Title: "First World Tour", Category: "tour"},
		{EventDate: time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), Title: "Third Full Album", Category: "release"},
	}
	for i := range events {
		events[i].Description = gofakeit.Sentence(12)
		events[i].DisplayOrder = i
	}
	if err := db.Create(&events).Error; err != nil {
		return err
	}

	for i := 0; i < 12; i++ {
		if _, err := f.CreateCharm(i%4 != 0); err != nil {
			return err
		}
	}

	home := []models.HomeContent{
		{Key: "hero_title", Value: "Welcome to the fandom"},
		{Key: "hero_subtitle", Value: gofakeit.Sentence(8)},
		{Key: "notice", Value: "Be kind. Posts are reviewed before they appear in the feed."},
	}
	return db.Create(&home).Error
}
