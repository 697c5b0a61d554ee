package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.Store = (*DB)(nil)

const postColumns = `id, author_first_name, author_last_name, title, content, created`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (model.BlogPost, error) {
	var p model.BlogPost
	err := s.Scan(
		&p.ID,
		&p.Author.FirstName,
		&p.Author.LastName,
		&p.Title,
		&p.Content,
		&p.Created,
	)
	p.Created = p.Created.UTC()
	return p, err
}

// Insert assigns a fresh xid and creation time, then writes the row.
//
// xid ids are 20 URL-safe characters and sort by creation time, which keeps
// the ORDER BY in ListAll stable for posts created in the same instant.
func (db *DB) Insert(ctx context.Context, post *model.BlogPost) error {
	post.ID = xid.New().String()
	post.Created = time.Now().UTC().Truncate(time.Millisecond)

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Author.FirstName,
		post.Author.LastName,
		post.Title,
		post.Content,
		post.Created,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post. sql.ErrNoRows becomes apperror.NotFound.
func (db *DB) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`,
		id,
	)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return &post, nil
}

// ListAll returns the whole collection, newest first.
func (db *DB) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// UpdateFields writes the supplied patch fields in a single statement.
//
// COALESCE(?, column) keeps the stored value whenever the parameter is NULL,
// so absent fields are left untouched without reading the row first.
// SQLite counts a matched row as affected even when the values are
// unchanged, so RowsAffected == 0 means the id does not exist.
func (db *DB) UpdateFields(ctx context.Context, id string, patch model.PostPatch) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title             = COALESCE(?, title),
		     content           = COALESCE(?, content),
		     author_first_name = COALESCE(?, author_first_name),
		     author_last_name  = COALESCE(?, author_last_name)
		 WHERE id = ?`,
		nullString(patch.Title),
		nullString(patch.Content),
		nullString(patch.FirstName),
		nullString(patch.LastName),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

// DeleteByID removes a post. Same RowsAffected check as UpdateFields.
func (db *DB) DeleteByID(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

// Count returns the number of stored posts.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
