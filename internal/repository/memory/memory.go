// Package memory is an in-process repository.Store backed by a map.
//
// It is used by tests and by STORE=memory for throwaway local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	posts map[string]model.BlogPost
}

func New() *Store {
	return &Store{posts: make(map[string]model.BlogPost)}
}

func (s *Store) Insert(_ context.Context, post *model.BlogPost) error {
	post.ID = xid.New().String()
	post.Created = time.Now().UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*model.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	return &post, nil
}

func (s *Store) ListAll(_ context.Context) ([]model.BlogPost, error) {
	s.mu.RLock()
	posts := make([]model.BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	s.mu.RUnlock()

	repository.SortNewestFirst(posts)
	return posts, nil
}

func (s *Store) UpdateFields(_ context.Context, id string, patch model.PostPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return apperror.NotFound("post", id)
	}
	patch.Apply(&post)
	s.posts[id] = post
	return nil
}

func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
