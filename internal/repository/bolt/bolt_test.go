package bolt

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/fixtures"
	"github.com/sakif/blog-api/internal/repository"
	"github.com/sakif/blog-api/internal/repository/repotest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "blog.bolt"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.PostRepository {
		return newTestStore(t)
	})
}

func TestInsert_PersistsDocumentShape(t *testing.T) {
	store := newTestStore(t)
	post := fixtures.NewPost()
	require.NoError(t, store.Insert(context.Background(), post))

	var raw map[string]any
	err := store.db.View(func(tx *bolt.Tx) error {
		return json.Unmarshal(tx.Bucket(postsBucket).Get([]byte(post.ID)), &raw)
	})
	require.NoError(t, err)

	assert.Equal(t, post.ID, raw["_id"])
	assert.Equal(t, map[string]any{
		"firstName": post.Author.FirstName,
		"lastName":  post.Author.LastName,
	}, raw["author"])
	assert.Contains(t, raw, "created")
	assert.NotContains(t, raw, "authorName")
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
