// Package repository declares the persistence capability set for blog posts.
//
// Implementations live in sub-packages (sqlite, mongo, bolt, memory). Each
// operation is a single store round-trip; no operation needs a transaction
// spanning several documents.
package repository

import (
	"context"
	"sort"

	"github.com/sakif/blog-api/internal/model"
)

// PostRepository is what the service layer needs from a store.
//
// Contract shared by every backend (checked by repotest.Run):
//   - Insert assigns ID and Created on the passed post.
//   - GetByID, UpdateFields and DeleteByID return an error wrapping
//     apperror.ErrNotFound for unknown ids.
//   - UpdateFields writes only the non-nil patch fields and never touches
//     ID or Created.
//   - ListAll returns every post, newest first.
type PostRepository interface {
	ListAll(ctx context.Context) ([]model.BlogPost, error)
	GetByID(ctx context.Context, id string) (*model.BlogPost, error)
	Insert(ctx context.Context, post *model.BlogPost) error
	UpdateFields(ctx context.Context, id string, patch model.PostPatch) error
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Store is a PostRepository the server owns: it can be health-checked and
// must be closed on shutdown.
type Store interface {
	PostRepository
	Ping(ctx context.Context) error
	Close() error
}

// SortNewestFirst orders posts by Created descending, then by id descending.
// Stores without a native ordered scan use it to honour ListAll's order;
// xid and ObjectID both grow with time, so the tie-break is insertion order.
func SortNewestFirst(posts []model.BlogPost) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Created.Equal(posts[j].Created) {
			return posts[i].Created.After(posts[j].Created)
		}
		return posts[i].ID > posts[j].ID
	})
}
