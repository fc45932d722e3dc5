package repository

import (
	"context"
	"testing"
	"time"

	"github.com/blendi-remade/reve-studio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPost(t *testing.T, db *gorm.DB) *models.Post {
	t.Helper()
	post := &models.Post{UserID: 1, Title: "root", ImageURL: "https://img/x.png", LikesCount: 5}
	require.NoError(t, db.Create(post).Error)
	return post
}

func seedComment(t *testing.T, db *gorm.DB, postID uint, parentID *uint, status models.GenerationStatus) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, ParentID: parentID, UserID: 2, Prompt: "add rainbow", Status: status}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestCommentRepository_MarkFailed_GuardedUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "comments" SET .*"status"=.* WHERE .*id = .* AND status IN \(\$\d+,\$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.MarkFailed(context.Background(), 7, "model timeout")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPost_Chronological(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	post := seedPost(t, db)
	other := seedPost(t, db)

	base := time.Now().Add(-time.Hour)
	for i, prompt := range []string{"second", "first", "third"} {
		offset := []time.Duration{2 * time.Minute, time.Minute, 3 * time.Minute}[i]
		require.NoError(t, db.Create(&models.Comment{
			PostID: post.ID, UserID: 1, Prompt: prompt, Status: models.StatusPending, CreatedAt: base.Add(offset),
		}).Error)
	}
	seedComment(t, db, other.ID, nil, models.StatusPending)

	comments, err := repo.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Prompt)
	assert.Equal(t, "second", comments[1].Prompt)
	assert.Equal(t, "third", comments[2].Prompt)
}

func TestCommentRepository_StatusMonotonic(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	post := seedPost(t, db)
	c := seedComment(t, db, post.ID, nil, models.StatusPending)

	advanced, err := repo.MarkGenerating(ctx, c.ID, "req-1")
	require.NoError(t, err)
	assert.True(t, advanced)

	byReq, err := repo.GetByFalRequestID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byReq.ID)
	assert.Equal(t, models.StatusGenerating, byReq.Status)

	advanced, err = repo.MarkGenerating(ctx, c.ID, "req-2")
	require.NoError(t, err)
	assert.False(t, advanced)

	done, err := repo.MarkCompleted(ctx, c.ID, "https://img/y.png")
	require.NoError(t, err)
	assert.True(t, done)

	// terminal: neither a duplicate nor a conflicting outcome applies
	done, err = repo.MarkCompleted(ctx, c.ID, "https://img/z.png")
	require.NoError(t, err)
	assert.False(t, done)
	done, err = repo.MarkFailed(ctx, c.ID, "late error")
	require.NoError(t, err)
	assert.False(t, done)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "https://img/y.png", got.ImageURL)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.FalRequestID)
	assert.Equal(t, "req-1", *got.FalRequestID)
}

func TestCommentRepository_MarkGenerating_AfterEarlyCallback(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	post := seedPost(t, db)
	c := seedComment(t, db, post.ID, nil, models.StatusPending)

	done, err := repo.MarkFailed(ctx, c.ID, "model timeout")
	require.NoError(t, err)
	assert.True(t, done)

	advanced, err := repo.MarkGenerating(ctx, c.ID, "req-9")
	require.NoError(t, err)
	assert.False(t, advanced)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "model timeout", *got.Error)
	require.NotNil(t, got.FalRequestID)
	assert.Equal(t, "req-9", *got.FalRequestID)
}

func TestCommentRepository_DeleteTree(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	post := seedPost(t, db)

	a := seedComment(t, db, post.ID, nil, models.StatusCompleted)
	b := seedComment(t, db, post.ID, &a.ID, models.StatusCompleted)
	c := seedComment(t, db, post.ID, &b.ID, models.StatusGenerating)
	sibling := seedComment(t, db, post.ID, nil, models.StatusCompleted)

	for _, id := range []uint{a.ID, b.ID, c.ID, sibling.ID} {
		_, err := likes.Add(ctx, models.LikeSubjectComment, id, 42)
		require.NoError(t, err)
	}

	removed, err := repo.DeleteTree(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	remaining, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling.ID, remaining[0].ID)

	var likeRows int64
	require.NoError(t, db.Model(&models.CommentLike{}).Count(&likeRows).Error)
	assert.Equal(t, int64(1), likeRows)

	_, err = repo.DeleteTree(ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_ListStale(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	post := seedPost(t, db)
	old := time.Now().Add(-time.Hour)

	stuck := &models.Comment{PostID: post.ID, UserID: 1, Prompt: "stuck", Status: models.StatusGenerating, CreatedAt: old}
	doneOld := &models.Comment{PostID: post.ID, UserID: 1, Prompt: "done", Status: models.StatusCompleted, CreatedAt: old}
	require.NoError(t, db.Create(stuck).Error)
	require.NoError(t, db.Create(doneOld).Error)
	seedComment(t, db, post.ID, nil, models.StatusPending)

	stale, err := repo.ListStale(context.Background(), time.Now().Add(-15*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, stuck.ID, stale[0].ID)
}
