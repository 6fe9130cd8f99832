package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	FeedKeyPrefix     = "feed:%s:%s"
	TimelineKey       = "timeline"
	CharmsKey         = "charms:approved"
	HomeContentPrefix = "home:%s"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	FeedTTL        = 1 * time.Minute
	TimelineTTL    = 10 * time.Minute
	CharmsTTL      = 10 * time.Minute
	HomeContentTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedKey keys the anonymous feed window by sort policy and tag filter.
func FeedKey(sort, tag string) string {
	if tag == "" {
		tag = "-"
	}
	return fmt.Sprintf(FeedKeyPrefix, sort, tag)
}

func HomeContentKey(key string) string {
	return fmt.Sprintf(HomeContentPrefix, key)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidateFeed(ctx)
}

// InvalidateFeed drops every cached feed window. The key space is small
// (two sorts, few tags) so a SCAN is acceptable here.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "feed:*", 64).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
