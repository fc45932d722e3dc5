package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/repository"
)

const (
	maxTitleLen      = 200
	defaultPostLimit = 20
	maxPostLimit     = 100
)

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	ImageURL string
}

type ListPostsInput struct {
	Sort          string
	Limit         int
	Offset        int
	CurrentUserID uint
}

func NewPostService(postRepo repository.PostRepository, likeRepo repository.LikeRepository) *PostService {
	return &PostService{postRepo: postRepo, likeRepo: likeRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	title := strings.TrimSpace(in.Title)
	imageURL := strings.TrimSpace(in.ImageURL)
	if title == "" || imageURL == "" {
		return nil, models.NewValidationError("Title and image URL are required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if u, err := url.ParseRequestURI(imageURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, models.NewValidationError("Image URL must be an absolute http(s) URL")
	}

	post := &models.Post{UserID: in.UserID, Title: title, ImageURL: imageURL}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	if err := s.markLiked(ctx, []*models.Post{post}, currentUserID); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts orders by likes (the default) or by creation date.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	sort := strings.ToLower(strings.TrimSpace(in.Sort))
	switch sort {
	case "", repository.SortByLikes, "hot":
		sort = repository.SortByLikes
	case repository.SortByDate, "new":
		sort = repository.SortByDate
	default:
		return nil, models.NewValidationError("sort must be one of: likes, date")
	}

	limit, offset := pageBounds(in.Limit, in.Offset)
	posts, err := s.postRepo.List(ctx, sort, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, posts, in.CurrentUserID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit, offset = pageBounds(limit, offset)
	posts, err := s.postRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.markLiked(ctx, posts, currentUserID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) markLiked(ctx context.Context, posts []*models.Post, userID uint) error {
	if userID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.likeRepo.LikedIDs(ctx, models.LikeSubjectPost, userID, ids)
	if err != nil {
		return err
	}
	set := make(map[uint]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}
	for _, p := range posts {
		_, p.Liked = set[p.ID]
	}
	return nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
