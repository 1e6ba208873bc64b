// Package snapshot serves the JSON form of a serialized post, read through
// the redis cache, and keeps the cache honest with GORM callbacks.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"Socialgram/cache"
	"Socialgram/models"

	"gorm.io/gorm"
)

const keyPrefix = "post_snapshot:"

// Overridden in tests.
var (
	evict       = cache.Delete
	evictPrefix = cache.DeleteByPrefix
)

func PostKey(id uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// PostJSON returns the serialized post. A cache hit skips the database;
// cache failures are logged and fall back to a fresh load.
func PostJSON(ctx context.Context, db *gorm.DB, id uint, ttl time.Duration) ([]byte, error) {
	key := PostKey(id)
	if cache.Enabled() {
		cached, err := cache.Get(ctx, key)
		if err != nil {
			log.Printf("snapshot cache read failed for %s: %v", key, err)
		} else if cached != "" {
			return []byte(cached), nil
		}
	}

	post, err := (&models.Post{}).FindPostByID(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(post.Serialize())
	if err != nil {
		return nil, fmt.Errorf("failed to encode post %d: %w", id, err)
	}

	if cache.Enabled() {
		if err := cache.Set(ctx, key, payload, ttl); err != nil {
			log.Printf("snapshot cache write failed for %s: %v", key, err)
		}
	}
	return payload, nil
}

// DeletePost deletes the post with its media and comments, then evicts its
// snapshot again once the transaction has committed. The callbacks fire
// inside the transaction, so a read racing the delete could otherwise cache
// the old state until the TTL runs out.
func DeletePost(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	deleted, err := (&models.Post{ID: id}).DeletePost(db.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	if err := evict(ctx, PostKey(id)); err != nil {
		log.Printf("snapshot eviction failed for %s: %v", PostKey(id), err)
	}
	return deleted, nil
}
