package service

import (
	"context"
	"testing"

	"github.com/blendi-remade/reve-studio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	f := newFixture(t, "")
	svc := NewPostService(f.posts, f.likes)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreatePostInput
		code string
	}{
		{"anonymous", CreatePostInput{Title: "t", ImageURL: "https://img/x.png"}, models.CodeUnauthorized},
		{"missing title", CreatePostInput{UserID: 1, ImageURL: "https://img/x.png"}, models.CodeValidation},
		{"missing image", CreatePostInput{UserID: 1, Title: "t"}, models.CodeValidation},
		{"relative image", CreatePostInput{UserID: 1, Title: "t", ImageURL: "banana-peel/x.png"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			assertCode(t, err, tt.code)
		})
	}

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Title: " Sunset ", ImageURL: "https://img/x.png"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Sunset", post.Title)
	assert.Zero(t, post.LikesCount)
}

func TestPostService_ListAndLikedFlags(t *testing.T) {
	f := newFixture(t, "")
	svc := NewPostService(f.posts, f.likes)
	ctx := context.Background()

	older := f.post(t, "A")
	newer := f.post(t, "B")
	_, err := f.likes.Add(ctx, models.LikeSubjectPost, older.ID, 5)
	require.NoError(t, err)

	hot, err := svc.ListPosts(ctx, ListPostsInput{CurrentUserID: 5})
	require.NoError(t, err)
	require.Len(t, hot, 2)
	assert.Equal(t, older.ID, hot[0].ID)
	assert.True(t, hot[0].Liked)
	assert.False(t, hot[1].Liked)

	recent, err := svc.ListPosts(ctx, ListPostsInput{Sort: "new"})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.False(t, recent[0].Liked)

	_, err = svc.ListPosts(ctx, ListPostsInput{Sort: "random"})
	assertCode(t, err, models.CodeValidation)

	got, err := svc.GetPost(ctx, newer.ID, 5)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	_, err = svc.GetPost(ctx, 9999, 5)
	assertCode(t, err, models.CodeNotFound)

	mine, err := svc.ListUserPosts(ctx, 1, 0, 0, 5)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestPageBounds(t *testing.T) {
	l, o := pageBounds(0, -3)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)
	l, _ = pageBounds(1000, 0)
	assert.Equal(t, 100, l)
}
