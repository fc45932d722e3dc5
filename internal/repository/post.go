// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"github.com/blendi-remade/reve-studio/internal/cache"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"

	"gorm.io/gorm"
)

// Post listing orders.
const (
	SortByLikes = "likes"
	SortByDate  = "date"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetSourceImage(ctx context.Context, id uint) (string, error)
	List(ctx context.Context, sort string, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

// withCommentsCount selects the post columns plus a derived comments_count.
func withCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withCommentsCount(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

type postSource struct {
	ImageURL string `json:"image_url"`
}

// GetSourceImage returns the post's root image. A post's image never changes
// after creation, so the lookup is served cache-aside from Redis.
func (r *postRepository) GetSourceImage(ctx context.Context, id uint) (string, error) {
	var src postSource
	err := cache.Aside(ctx, cache.PostSourceKey(id), &src, cache.PostTTL, func() error {
		var post models.Post
		if err := r.db.WithContext(ctx).Select("id", "image_url").First(&post, id).Error; err != nil {
			return err
		}
		src.ImageURL = post.ImageURL
		return nil
	})
	if err != nil {
		return "", err
	}
	return src.ImageURL, nil
}

func (r *postRepository) List(ctx context.Context, sort string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := applySort(withCommentsCount(r.db.WithContext(ctx)), sort).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := withCommentsCount(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// applySort appends the ORDER BY for the requested sort. Unrecognized values sort by likes.
func applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortByDate, "new":
		return db.Order("created_at DESC").Order("id DESC")
	default:
		return db.Order("likes_count DESC").Order("created_at DESC")
	}
}
