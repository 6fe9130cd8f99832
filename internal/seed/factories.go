// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"stanhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var tagPool = []string{
	"comeback", "tour", "fanart", "theory", "ot5", "merch",
	"photocard", "concert", "mv", "cover", "lyrics", "era",
}

var categoryPool = []string{
	"General", "Discussions", "Fan Art", "Questions",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		//nolint:gosec // weak randomness is fine for demo data
		r: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Nickname:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:      models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a forum post without persisting it. Timestamps are
// spread over the last maxDays so the feed window looks lived-in.
func (f *Factory) BuildPost(user *models.User, maxDays int, overrides ...func(*models.ForumPost)) *models.ForumPost {
	if maxDays <= 0 {
		maxDays = 90
	}

	tags := make(models.StringList, 0, 3)
	for _, i := range f.r.Perm(len(tagPool))[:f.r.Intn(3)+1] {
		tags = append(tags, tagPool[i])
	}

	status := models.StatusApproved
	switch f.r.Intn(10) {
	case 0:
		status = models.StatusPending
	case 1:
		status = models.StatusRejected
	}

	post := &models.ForumPost{
		UserID:    user.ID,
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		Category:  categoryPool[f.r.Intn(len(categoryPool))],
		Tags:      tags,
		Status:    status,
		ViewCount: f.r.Intn(500),
		CreatedAt: time.Now().Add(-time.Duration(f.r.Intn(maxDays*24*60)) * time.Minute),
	}
	if f.r.Intn(3) == 0 {
		post.ImageURLs = models.StringList{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		}
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.ForumPost) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateReply persists a reply from the given user on a post.
func (f *Factory) CreateReply(user *models.User, post *models.ForumPost) (*models.ForumReply, error) {
	reply := &models.ForumReply{
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   gofakeit.Sentence(f.r.Intn(12) + 3),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.r.Intn(72)) * time.Hour),
	}
	if err := f.db.Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

// CreateLike persists a like membership row; duplicates are silently kept out
// by the unique index.
func (f *Factory) CreateLike(user *models.User, post *models.ForumPost) error {
	like := &models.ForumPostLike{PostID: post.ID, UserID: user.ID}
	err := f.db.Create(like).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// CreateReport files a report from the given user against a post.
func (f *Factory) CreateReport(user *models.User, post *models.ForumPost) (*models.ForumReport, error) {
	report := &models.ForumReport{
		PostID: post.ID,
		UserID: user.ID,
		Reason: gofakeit.Sentence(8),
		Status: models.ReportPending,
	}
	if err := f.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// CreateCharm persists a fan message, approved or not.
func (f *Factory) CreateCharm(approved bool) (*models.Charm, error) {
	charm := &models.Charm{
		Content:    gofakeit.Sentence(f.r.Intn(10) + 4),
		IsApproved: approved,
	}
	if err := f.db.Create(charm).Error; err != nil {
		return nil, err
	}
	return charm, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
