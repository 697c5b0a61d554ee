// Package fixtures generates random blog posts for tests and for the
// `seed` command.
package fixtures

import (
	"context"
	"fmt"

	"github.com/Pallinder/go-randomdata"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// NewPost returns an unsaved post with random author, title and content.
func NewPost() *model.BlogPost {
	return &model.BlogPost{
		Author: model.Author{
			FirstName: randomdata.FirstName(randomdata.RandomGender),
			LastName:  randomdata.LastName(),
		},
		Title:   fmt.Sprintf("The %s %s", randomdata.Adjective(), randomdata.Noun()),
		Content: randomdata.Paragraph(),
	}
}

// Seed inserts n random posts and returns them as stored.
func Seed(ctx context.Context, repo repository.PostRepository, n int) ([]model.BlogPost, error) {
	posts := make([]model.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		post := NewPost()
		if err := repo.Insert(ctx, post); err != nil {
			return posts, fmt.Errorf("seeding post %d of %d: %w", i+1, n, err)
		}
		posts = append(posts, *post)
	}
	return posts, nil
}
