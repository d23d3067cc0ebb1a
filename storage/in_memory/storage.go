package in_memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"postboard/storage"
	"postboard/storage/models"
)

// InMemoryStorage keeps posts in insertion order so ListPosts stays stable
// even when two posts share a creation timestamp.
type InMemoryStorage struct {
	mut     sync.RWMutex
	posts   map[string]models.Post
	postIds []string
	users   map[string]models.User
}

func CreateInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		posts: make(map[string]models.Post),
		users: make(map[string]models.User),
	}
}

// AddUser seeds a user record. The users collection is owned by the sibling
// auth service; this stands in for it in dev and test runs.
func (s *InMemoryStorage) AddUser(user models.User) {
	s.mut.Lock()
	defer s.mut.Unlock()
	s.users[user.Id] = user
}

func (s *InMemoryStorage) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	posts := make([]models.Post, 0, len(s.postIds))
	for i := len(s.postIds) - 1; i >= 0; i-- {
		posts = append(posts, s.posts[s.postIds[i]])
	}
	return posts, nil
}

func (s *InMemoryStorage) AddPost(ctx context.Context, userId, name, text string) (*models.Post, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	p := models.Post{
		Id:        uuid.New().String(),
		Text:      text,
		Name:      name,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}
	s.posts[p.Id] = p
	s.postIds = append(s.postIds, p.Id)
	return &p, nil
}

func (s *InMemoryStorage) GetPost(ctx context.Context, postId string) (*models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	post, found := s.posts[postId]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	return &post, nil
}

func (s *InMemoryStorage) UpdatePostText(ctx context.Context, postId, text string) (*models.Post, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	post, found := s.posts[postId]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	post.Text = text
	s.posts[postId] = post
	return &post, nil
}

func (s *InMemoryStorage) DeletePost(ctx context.Context, postId, userId string) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	post, found := s.posts[postId]
	if !found {
		return fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	if post.UserId != userId {
		return fmt.Errorf("post %s is owned by another user %s: %w", postId, post.UserId, storage.Forbidden)
	}
	delete(s.posts, postId)
	for i, id := range s.postIds {
		if id == postId {
			s.postIds = append(s.postIds[:i], s.postIds[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStorage) GetUser(ctx context.Context, userId string) (*models.User, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	user, found := s.users[userId]
	if !found {
		return nil, fmt.Errorf("no user with id %v: %w", userId, storage.NotFoundError)
	}
	return &user, nil
}

func (s *InMemoryStorage) Close(ctx context.Context) error {
	return nil
}

var _ storage.Storage = (*InMemoryStorage)(nil)
