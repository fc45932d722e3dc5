// Package seed fills a development database with posts, remix trees, and likes.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/repository"
	"github.com/blendi-remade/reve-studio/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures a seeding run. Preset posts are always created; Posts
// adds that many generated ones on top.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// FailureRate is the share of comments seeded as failed, 0..1.
	FailureRate float64
	// ReplyRate is the chance a comment remixes an earlier completed one.
	ReplyRate float64
	RandSeed  int64
}

// DefaultOptions mirrors the cmd/seed flag defaults.
func DefaultOptions() Options {
	return Options{
		Users:           12,
		Posts:           5,
		CommentsPerPost: 8,
		FailureRate:     0.15,
		ReplyRate:       0.6,
		RandSeed:        42,
	}
}

type Summary struct {
	Posts    int
	Comments int
	Failed   int
	Likes    int
}

var failureReasons = []string{
	"NSFW content detected",
	"Image could not be downloaded",
	service.GenericGenerationError,
}

type Seeder struct {
	db    *gorm.DB
	likes repository.LikeRepository
	faker *gofakeit.Faker
}

func NewSeeder(db *gorm.DB, randSeed int64) *Seeder {
	return &Seeder{
		db:    db,
		likes: repository.NewLikeRepository(db),
		faker: gofakeit.New(randSeed),
	}
}

// ClearAll removes every seeded row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, table := range []string{"comment_likes", "post_likes", "comments", "posts"} {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds the preset and opts.Posts generated posts. Every comment is
// written in a terminal state, and replies only hang off completed parents.
func (s *Seeder) Run(ctx context.Context, preset *Preset, opts Options) (*Summary, error) {
	if opts.Users <= 0 {
		opts.Users = 1
	}
	sum := &Summary{}

	posts := make([]*models.Post, 0, len(preset.Posts)+opts.Posts)
	for _, p := range preset.Posts {
		userID := p.UserID
		if userID == 0 {
			userID = s.randomUser(opts.Users)
		}
		posts = append(posts, &models.Post{UserID: userID, Title: p.Title, ImageURL: p.ImageURL})
	}
	for i := 0; i < opts.Posts; i++ {
		posts = append(posts, &models.Post{
			UserID:   s.randomUser(opts.Users),
			Title:    s.faker.Sentence(4),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1024/768", s.faker.UUID()),
		})
	}

	for _, post := range posts {
		if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		comments, failed, err := s.seedThread(ctx, post, preset.Prompts, opts)
		if err != nil {
			return nil, err
		}
		sum.Comments += len(comments)
		sum.Failed += failed

		likes, err := s.seedLikes(ctx, models.LikeSubjectPost, post.ID, opts.Users)
		if err != nil {
			return nil, err
		}
		sum.Likes += likes
		for _, c := range comments {
			likes, err := s.seedLikes(ctx, models.LikeSubjectComment, c.ID, opts.Users/2)
			if err != nil {
				return nil, err
			}
			sum.Likes += likes
		}
	}

	log.Printf("seeded %d posts, %d comments (%d failed), %d likes", sum.Posts, sum.Comments, sum.Failed, sum.Likes)
	return sum, nil
}

func (s *Seeder) seedThread(ctx context.Context, post *models.Post, prompts []string, opts Options) ([]*models.Comment, int, error) {
	var (
		all       []*models.Comment
		completed []*models.Comment
		failed    int
	)
	for i := 0; i < opts.CommentsPerPost; i++ {
		c := &models.Comment{
			PostID: post.ID,
			UserID: s.randomUser(opts.Users),
			Prompt: s.prompt(prompts),
		}
		if len(completed) > 0 && s.faker.Float64Range(0, 1) < opts.ReplyRate {
			parent := completed[s.faker.Number(0, len(completed)-1)]
			c.ParentID = &parent.ID
		}

		if s.faker.Float64Range(0, 1) < opts.FailureRate {
			reason := s.faker.RandomString(failureReasons)
			c.Status = models.StatusFailed
			c.Error = &reason
			failed++
		} else {
			c.Status = models.StatusCompleted
			c.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1024/768", s.faker.UUID())
		}

		if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
			return nil, 0, fmt.Errorf("create comment: %w", err)
		}
		all = append(all, c)
		if c.Status == models.StatusCompleted {
			completed = append(completed, c)
		}
	}
	return all, failed, nil
}

// seedLikes adds likes from up to maxUsers distinct users through the ledger
// so the denormalized counters stay consistent.
func (s *Seeder) seedLikes(ctx context.Context, subject models.LikeSubject, subjectID uint, maxUsers int) (int, error) {
	if maxUsers <= 0 {
		return 0, nil
	}
	n := s.faker.Number(0, maxUsers)
	added := 0
	for uid := 1; uid <= n; uid++ {
		ok, err := s.likes.Add(ctx, subject, subjectID, uint(uid))
		if err != nil {
			return added, fmt.Errorf("like %s %d: %w", subject, subjectID, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (s *Seeder) prompt(prompts []string) string {
	if len(prompts) > 0 {
		return s.faker.RandomString(prompts)
	}
	return fmt.Sprintf("make it %s with a %s %s", s.faker.Adjective(), s.faker.Color(), s.faker.Noun())
}

func (s *Seeder) randomUser(users int) uint {
	return uint(s.faker.Number(1, users))
}
