// Package bolt stores posts as JSON documents in a single BoltDB bucket.
//
// The bucket key is the post id; the value is the persisted document
// {_id, author: {firstName, lastName}, title, content, created}. Bolt allows
// one writer at a time, so a field-level update is a read-patch-write inside
// one Update transaction.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/rs/xid"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

var postsBucket = []byte("posts")

var errNoBucket = errors.New("posts bucket missing")

type Store struct {
	db *bolt.DB
}

// document is the on-disk shape of a post.
type document struct {
	ID      string       `json:"_id"`
	Author  model.Author `json:"author"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Created time.Time    `json:"created"`
}

func toDocument(p *model.BlogPost) document {
	return document{ID: p.ID, Author: p.Author, Title: p.Title, Content: p.Content, Created: p.Created}
}

func (d document) post() model.BlogPost {
	return model.BlogPost{ID: d.ID, Author: d.Author, Title: d.Title, Content: d.Content, Created: d.Created.UTC()}
}

// Open opens the bolt file at path, waiting at most timeout for the file lock.
func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("bolt: opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(postsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(postsBucket) == nil {
			return fmt.Errorf("bolt: ping: %w", errNoBucket)
		}
		return nil
	})
}

func (s *Store) Insert(_ context.Context, post *model.BlogPost) error {
	post.ID = xid.New().String()
	post.Created = time.Now().UTC().Truncate(time.Millisecond)

	value, err := json.Marshal(toDocument(post))
	if err != nil {
		return fmt.Errorf("bolt: encoding post: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(postsBucket).Put([]byte(post.ID), value)
	})
	if err != nil {
		return fmt.Errorf("bolt: inserting post: %w", err)
	}
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*model.BlogPost, error) {
	var doc document
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(postsBucket).Get([]byte(id))
		if value == nil {
			return apperror.NotFound("post", id)
		}
		return json.Unmarshal(value, &doc)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("bolt: getting post %s: %w", id, err)
	}

	post := doc.post()
	return &post, nil
}

func (s *Store) ListAll(_ context.Context) ([]model.BlogPost, error) {
	posts := []model.BlogPost{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(postsBucket).ForEach(func(_, value []byte) error {
			var doc document
			if err := json.Unmarshal(value, &doc); err != nil {
				return err
			}
			posts = append(posts, doc.post())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: listing posts: %w", err)
	}

	repository.SortNewestFirst(posts)
	return posts, nil
}

func (s *Store) UpdateFields(_ context.Context, id string, patch model.PostPatch) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(postsBucket)
		value := bucket.Get([]byte(id))
		if value == nil {
			return apperror.NotFound("post", id)
		}
		if patch.IsEmpty() {
			return nil
		}

		var doc document
		if err := json.Unmarshal(value, &doc); err != nil {
			return err
		}
		post := doc.post()
		patch.Apply(&post)

		updated, err := json.Marshal(toDocument(&post))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), updated)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("bolt: updating post %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteByID(_ context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(postsBucket)
		if bucket.Get([]byte(id)) == nil {
			return apperror.NotFound("post", id)
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("bolt: deleting post %s: %w", id, err)
	}
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(postsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bolt: counting posts: %w", err)
	}
	return n, nil
}
