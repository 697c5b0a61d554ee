// Package repotest holds the behaviour every repository.PostRepository
// implementation must share. Each backend package calls Run from its own
// tests with a constructor for a fresh, empty store.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/fixtures"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// Factory returns an empty store. It should register its own cleanup with t.
type Factory func(t *testing.T) repository.PostRepository

func ptr(s string) *string { return &s }

func insert(t *testing.T, repo repository.PostRepository) model.BlogPost {
	t.Helper()
	post := fixtures.NewPost()
	require.NoError(t, repo.Insert(context.Background(), post))
	return *post
}

// Run executes the contract suite as subtests of t.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Insert assigns id and created", func(t *testing.T) {
		repo := newRepo(t)
		before := time.Now().UTC().Add(-time.Second)

		post := fixtures.NewPost()
		require.NoError(t, repo.Insert(context.Background(), post))

		assert.NotEmpty(t, post.ID)
		assert.True(t, post.Created.After(before), "created %v should be after %v", post.Created, before)
	})

	t.Run("GetByID returns the stored document", func(t *testing.T) {
		repo := newRepo(t)
		created := insert(t, repo)

		found, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Author, found.Author)
		assert.Equal(t, created.Title, found.Title)
		assert.Equal(t, created.Content, found.Content)
		assert.True(t, created.Created.Equal(found.Created), "created %v, stored %v", created.Created, found.Created)
	})

	t.Run("GetByID unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(context.Background(), "does-not-exist")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := newRepo(t)
		seen := make(map[string]bool)
		for i := 0; i < 25; i++ {
			p := insert(t, repo)
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})

	t.Run("ListAll on empty store", func(t *testing.T) {
		repo := newRepo(t)

		posts, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("ListAll returns every post and matches Count", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seeded, err := fixtures.Seed(ctx, repo, 10)
		require.NoError(t, err)

		posts, err := repo.ListAll(ctx)
		require.NoError(t, err)
		count, err := repo.Count(ctx)
		require.NoError(t, err)

		assert.Len(t, posts, len(seeded))
		assert.Equal(t, count, len(posts))
	})

	t.Run("ListAll is newest first", func(t *testing.T) {
		repo := newRepo(t)
		first := insert(t, repo)
		time.Sleep(5 * time.Millisecond)
		second := insert(t, repo)

		posts, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)
	})

	t.Run("UpdateFields changes only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		original := insert(t, repo)

		err := repo.UpdateFields(ctx, original.ID, model.PostPatch{
			Title:    ptr("updated title"),
			LastName: ptr("Updated"),
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated title", found.Title)
		assert.Equal(t, "Updated", found.Author.LastName)
		assert.Equal(t, original.Content, found.Content)
		assert.Equal(t, original.Author.FirstName, found.Author.FirstName)
		assert.Equal(t, original.ID, found.ID)
		assert.True(t, original.Created.Equal(found.Created), "created must not change on update")
	})

	t.Run("UpdateFields with empty patch leaves the post alone", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		original := insert(t, repo)

		require.NoError(t, repo.UpdateFields(ctx, original.ID, model.PostPatch{}))

		found, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.Title, found.Title)
		assert.Equal(t, original.Author, found.Author)
	})

	t.Run("UpdateFields unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.UpdateFields(context.Background(), "does-not-exist", model.PostPatch{Title: ptr("x")})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("DeleteByID removes the post", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		keep := insert(t, repo)
		gone := insert(t, repo)

		require.NoError(t, repo.DeleteByID(ctx, gone.ID))

		_, err := repo.GetByID(ctx, gone.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = repo.GetByID(ctx, keep.ID)
		assert.NoError(t, err)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("DeleteByID twice reports not found the second time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		post := insert(t, repo)

		require.NoError(t, repo.DeleteByID(ctx, post.ID))
		assert.ErrorIs(t, repo.DeleteByID(ctx, post.ID), apperror.ErrNotFound)
	})
}
