package storage

import (
	"context"
	"errors"
	"fmt"

	"postboard/storage/models"
)

var (
	InternalError = errors.New("storage internal error")
	ClientError   = errors.New("storage client error")
	NotFoundError = fmt.Errorf("%w.not_found", ClientError)
	Forbidden     = fmt.Errorf("%w.forbidden", ClientError)
)

// Storage is the per-document store behind the post handlers. Absent and
// malformed post ids are both reported as NotFoundError. DeletePost checks
// ownership after existence: a post owned by another user yields Forbidden,
// never NotFoundError.
type Storage interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	AddPost(ctx context.Context, userId, name, text string) (*models.Post, error)
	GetPost(ctx context.Context, postId string) (*models.Post, error)
	UpdatePostText(ctx context.Context, postId, text string) (*models.Post, error)
	DeletePost(ctx context.Context, postId, userId string) error
	GetUser(ctx context.Context, userId string) (*models.User, error)
	Close(ctx context.Context) error
}
