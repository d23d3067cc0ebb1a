package persistent_cached

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"postboard/storage"
	"postboard/storage/models"
)

func saveToCache(ctx context.Context, client *redis.Client, post *models.Post) {
	j, err := json.Marshal(post)
	if err == nil {
		err = client.Set(ctx, post.Id, j, time.Hour).Err()
		if err != nil {
			log.Printf("Failed to save post to redis: %s", err.Error())
		}
	}
}

func getFromCache(ctx context.Context, client *redis.Client, postId string) (*models.Post, error) {
	val, err := client.Get(ctx, postId).Result()
	if err != nil {
		return nil, err
	}
	var p models.Post
	if err = json.Unmarshal([]byte(val), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func removeFromCache(ctx context.Context, client *redis.Client, postId string) {
	err := client.Del(ctx, postId).Err()
	if err != nil {
		log.Printf("Failed to remove post from redis: %s", err.Error())
	}
}

func CreatePersistentStorageCachedWithRedis(persistentStorage storage.Storage, redisUrl string) storage.Storage {
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisUrl,
	})
	return &PersistentStorageWithCache{
		client:            redisClient,
		persistentStorage: persistentStorage,
	}
}

// PersistentStorageWithCache layers a read-through redis cache of posts by id
// over a persistent store. Update and delete invalidate; list and user reads
// pass through.
type PersistentStorageWithCache struct {
	client            *redis.Client
	persistentStorage storage.Storage
}

func (s *PersistentStorageWithCache) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.persistentStorage.ListPosts(ctx)
}

func (s *PersistentStorageWithCache) AddPost(ctx context.Context, userId, name, text string) (*models.Post, error) {
	post, err := s.persistentStorage.AddPost(ctx, userId, name, text)
	if err == nil {
		saveToCache(ctx, s.client, post)
	}
	return post, err
}

func (s *PersistentStorageWithCache) GetPost(ctx context.Context, postId string) (*models.Post, error) {
	p, err := getFromCache(ctx, s.client, postId)
	if err == nil {
		return p, nil
	}
	post, err := s.persistentStorage.GetPost(ctx, postId)
	if err == nil {
		saveToCache(ctx, s.client, post)
	}
	return post, err
}

func (s *PersistentStorageWithCache) UpdatePostText(ctx context.Context, postId, text string) (*models.Post, error) {
	post, err := s.persistentStorage.UpdatePostText(ctx, postId, text)
	if err == nil {
		removeFromCache(ctx, s.client, post.Id)
	}
	return post, err
}

func (s *PersistentStorageWithCache) DeletePost(ctx context.Context, postId, userId string) error {
	err := s.persistentStorage.DeletePost(ctx, postId, userId)
	if err == nil {
		removeFromCache(ctx, s.client, postId)
	}
	return err
}

func (s *PersistentStorageWithCache) GetUser(ctx context.Context, userId string) (*models.User, error) {
	return s.persistentStorage.GetUser(ctx, userId)
}

func (s *PersistentStorageWithCache) Close(ctx context.Context) error {
	if err := s.client.Close(); err != nil {
		log.Printf("Failed to close redis client: %s", err.Error())
	}
	return s.persistentStorage.Close(ctx)
}
