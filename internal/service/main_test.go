package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/blendi-remade/reve-studio/internal/database"
	"github.com/blendi-remade/reve-studio/internal/featureflags"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/provider"
	"github.com/blendi-remade/reve-studio/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// every pooled connection would get its own :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// fakeGenerator records submissions and answers with sequential job ids.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []provider.SubmitRequest
	err      error
	// beforeReturn runs after the job is "queued" but before Submit returns.
	beforeReturn func(requestID string, req provider.SubmitRequest)
}

func (g *fakeGenerator) Submit(_ context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	n := len(g.requests)
	g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	requestID := "req-" + strconv.Itoa(n)
	if g.beforeReturn != nil {
		g.beforeReturn(requestID, req)
	}
	return &provider.SubmitResult{RequestID: requestID}, nil
}

func (g *fakeGenerator) last() provider.SubmitRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

type fixture struct {
	db        *gorm.DB
	comments  repository.CommentRepository
	posts     repository.PostRepository
	likes     repository.LikeRepository
	generator *fakeGenerator
	svc       *GenerationService
}

func newFixture(t *testing.T, flags string) *fixture {
	t.Helper()
	db := setupSQLiteDB(t)
	f := &fixture{
		db:        db,
		comments:  repository.NewCommentRepository(db),
		posts:     repository.NewPostRepository(db),
		likes:     repository.NewLikeRepository(db),
		generator: &fakeGenerator{},
	}
	resolver := NewSourceResolver(f.posts, f.comments, featureflags.Parse(flags))
	f.svc = NewGenerationService(f.comments, resolver, f.generator)
	return f
}

func (f *fixture) post(t *testing.T, imageURL string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: 1, Title: "sunset", ImageURL: imageURL}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) comment(t *testing.T, postID uint, parentID *uint, status models.GenerationStatus, imageURL string) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, ParentID: parentID, UserID: 7, Prompt: "remix", Status: status, ImageURL: imageURL}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) reload(t *testing.T, id uint) *models.Comment {
	t.Helper()
	c, err := f.comments.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
