// Package service contains the business rules for blog posts.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)        → decodes requests, writes responses
//	Service (this package) → validates input, applies the rules below
//	Repository (storage)   → one round-trip per operation
//
// The service never sees HTTP types and never sees SQL or BSON. It talks to
// storage only through repository.PostRepository, so any backend (or the
// in-memory store in tests) can sit underneath it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// CreatePostInput is the data needed to create a post. Every field is
// required.
type CreatePostInput struct {
	FirstName string
	LastName  string
	Title     string
	Content   string
}

// UpdatePostInput is a partial update. BodyID is the id the client put in
// the request body, if any; it must match the id being updated.
type UpdatePostInput struct {
	BodyID *string
	Patch  model.PostPatch
}

// PostService handles business logic for blog posts.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// requireText trims value and rejects it when nothing is left.
func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperror.Required(field)
	}
	return value, nil
}

// Create validates the input and inserts a new post. Nothing is written
// when validation fails. The store assigns the id and creation time.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*model.BlogPost, error) {
	var err error
	post := &model.BlogPost{}

	// Checked in the order clients see them in the request body.
	if post.Author.FirstName, err = requireText("author.firstName", in.FirstName); err != nil {
		return nil, err
	}
	if post.Author.LastName, err = requireText("author.lastName", in.LastName); err != nil {
		return nil, err
	}
	if post.Title, err = requireText("title", in.Title); err != nil {
		return nil, err
	}
	if post.Content, err = requireText("content", in.Content); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("title", post.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("title", post.Title),
	)
	return post, nil
}

// GetByID retrieves a post. Returns apperror.ErrNotFound if it doesn't exist.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post id is required")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns every post in the collection.
func (s *PostService) List(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Update applies the supplied fields to the post with the given id.
//
// The write goes straight to the store as a field-level update; there is no
// fetch-then-save, so concurrent updates to different fields never overwrite
// each other.
func (s *PostService) Update(ctx context.Context, id string, in UpdatePostInput) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "post id is required")
	}

	if in.BodyID != nil && *in.BodyID != id {
		return apperror.ValidationFailed("id",
			fmt.Sprintf("request path id (%s) and request body id (%s) must match", id, *in.BodyID))
	}

	patch, err := cleanPatch(in.Patch)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to update post",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.String("id", id))
	return nil
}

// cleanPatch trims every supplied field and rejects blank ones: a post may
// never lose its title, content or author names through an update.
func cleanPatch(p model.PostPatch) (model.PostPatch, error) {
	fields := []struct {
		name  string
		value **string
	}{
		{"title", &p.Title},
		{"content", &p.Content},
		{"author.firstName", &p.FirstName},
		{"author.lastName", &p.LastName},
	}
	for _, f := range fields {
		if *f.value == nil {
			continue
		}
		v, err := requireText(f.name, **f.value)
		if err != nil {
			return model.PostPatch{}, apperror.ValidationFailed(f.name, fmt.Sprintf("`%s` must not be blank", f.name))
		}
		*f.value = &v
	}
	return p, nil
}

// Delete removes a post. Deleting an id that is already gone is not an
// error: the post is absent either way.
func (s *PostService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "post id is required")
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Debug("delete of missing post", slog.String("id", id))
			return nil
		}
		s.logger.Error("failed to delete post",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post: %w", err)
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}
