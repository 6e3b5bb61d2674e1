package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PoemKeyPrefix    = "poem:%d"
	PoemLikesPrefix  = "poem:%d:likes"
	UserDetailPrefix = "user:%d:detail"
)

const (
	UserTTL      = 5 * time.Minute
	PoemTTL      = 10 * time.Minute
	PoemLikesTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserDetailKey(userID uint) string {
	return fmt.Sprintf(UserDetailPrefix, userID)
}

func PoemKey(poemID uint) string {
	return fmt.Sprintf(PoemKeyPrefix, poemID)
}

func PoemLikesKey(poemID uint) string {
	return fmt.Sprintf(PoemLikesPrefix, poemID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserDetailKey(userID))
}

func InvalidatePoem(ctx context.Context, poemID uint) {
	Invalidate(ctx, PoemKey(poemID))
	Invalidate(ctx, PoemLikesKey(poemID))
}
