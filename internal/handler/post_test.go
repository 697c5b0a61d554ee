package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/fixtures"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository/memory"
	"github.com/sakif/blog-api/internal/service"
)

// testAPI is an isolated router + store per test. The store is seeded with
// ten random posts, like the fixture data the API is normally exercised with.
type testAPI struct {
	router http.Handler
	store  *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	_, err := fixtures.Seed(context.Background(), store, 10)
	require.NoError(t, err)

	h := handler.NewPostHandler(service.NewPostService(store, logger), logger)
	r := chi.NewRouter()
	r.Get("/posts", h.HandleList)
	r.Get("/posts/{id}", h.HandleGet)
	r.Post("/posts", h.HandleCreate)
	r.Put("/posts/{id}", h.HandleUpdate)
	r.Delete("/posts/{id}", h.HandleDelete)

	return &testAPI{router: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) count(t *testing.T) int {
	t.Helper()
	n, err := a.store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

// =========================================================================
// GET /posts
// =========================================================================

func TestList_ReturnsAllPosts(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/posts", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	posts := decode[[]map[string]any](t, rr)
	assert.GreaterOrEqual(t, len(posts), 1)
	assert.Len(t, posts, api.count(t))
}

func TestList_PostsHaveTheRightFields(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	posts := decode[[]map[string]any](t, rr)
	require.NotEmpty(t, posts)
	for _, p := range posts {
		for _, key := range []string{"id", "author", "title", "content", "created"} {
			assert.Contains(t, p, key)
		}
	}

	first := posts[0]
	stored, err := api.store.GetByID(context.Background(), first["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, stored.Author.FirstName+" "+stored.Author.LastName, first["author"])
	assert.Equal(t, stored.Title, first["title"])
	assert.Equal(t, stored.Content, first["content"])
}

func TestList_EmptyStoreIsEmptyArray(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewPostHandler(service.NewPostService(memory.New(), logger), logger)
	rr := httptest.NewRecorder()

	h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

// =========================================================================
// GET /posts/{id}
// =========================================================================

func TestGet(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())
	target := all[3]

	rr := api.do(t, http.MethodGet, "/posts/"+target.ID, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[map[string]any](t, rr)
	assert.Equal(t, target.ID, got["id"])
	assert.Equal(t, target.Author.DisplayName(), got["author"])
}

func TestGet_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/posts/nope", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "not_found", body.Error)
}

// =========================================================================
// POST /posts
// =========================================================================

func TestCreate_AddsANewPost(t *testing.T) {
	api := newTestAPI(t)
	before := api.count(t)
	newPost := fixtures.NewPost()

	rr := api.do(t, http.MethodPost, "/posts", map[string]any{
		"author": map[string]string{
			"firstName": newPost.Author.FirstName,
			"lastName":  newPost.Author.LastName,
		},
		"title":   newPost.Title,
		"content": newPost.Content,
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	body := decode[map[string]any](t, rr)
	for _, key := range []string{"id", "author", "title", "content", "created"} {
		assert.Contains(t, body, key)
	}
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, newPost.Title, body["title"])
	assert.Equal(t, newPost.Content, body["content"])
	assert.Equal(t, newPost.Author.FirstName+" "+newPost.Author.LastName, body["author"])

	stored, err := api.store.GetByID(context.Background(), body["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, newPost.Title, stored.Title)
	assert.Equal(t, newPost.Content, stored.Content)
	assert.Equal(t, newPost.Author.FirstName, stored.Author.FirstName)
	assert.Equal(t, newPost.Author.LastName, stored.Author.LastName)
	assert.Equal(t, before+1, api.count(t))
}

func TestCreate_MissingFieldIsRejected(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing title", `{"author":{"firstName":"Jane","lastName":"Doe"},"content":"C"}`, "title"},
		{"missing content", `{"author":{"firstName":"Jane","lastName":"Doe"},"title":"T"}`, "content"},
		{"missing author", `{"title":"T","content":"C"}`, "author.firstName"},
		{"missing last name", `{"author":{"firstName":"Jane"},"title":"T","content":"C"}`, "author.lastName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			before := api.count(t)

			rr := api.do(t, http.MethodPost, "/posts", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			body := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "validation_error", body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.Equal(t, before, api.count(t))
		})
	}
}

func TestCreate_MalformedJSON(t *testing.T) {
	api := newTestAPI(t)

	tests := map[string]string{
		"truncated":        `{"title":`,
		"trailing garbage": `{"author":{"firstName":"Jane","lastName":"Doe"},"title":"T","content":"C"} trailing`,
		"two objects":      `{"author":{"firstName":"Jane","lastName":"Doe"},"title":"T","content":"C"}{}`,
		"empty body":       ``,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			before := api.count(t)

			rr := api.do(t, http.MethodPost, "/posts", body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			errBody := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "body", errBody.Field)
			assert.Equal(t, before, api.count(t))
		})
	}
}

func TestUpdate_TrailingDataIsRejected(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())

	rr := api.do(t, http.MethodPut, "/posts/"+all[0].ID, `{"title":"new"} {"title":"newer"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	unchanged, _ := api.store.GetByID(context.Background(), all[0].ID)
	assert.Equal(t, all[0].Title, unchanged.Title)
}

// =========================================================================
// PUT /posts/{id}
// =========================================================================

func TestUpdate_AppliesSuppliedFields(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())
	original := all[0]

	rr := api.do(t, http.MethodPut, "/posts/"+original.ID, map[string]any{
		"id":     original.ID,
		"title":  "fofofofofofofof",
		"author": map[string]string{"lastName": "Smith"},
	})

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	updated, err := api.store.GetByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "fofofofofofofof", updated.Title)
	assert.Equal(t, "Smith", updated.Author.LastName)
	assert.Equal(t, original.Author.FirstName, updated.Author.FirstName)
	assert.Equal(t, original.Content, updated.Content)
	assert.True(t, original.Created.Equal(updated.Created))
}

func TestUpdate_IDMismatch(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())

	rr := api.do(t, http.MethodPut, "/posts/"+all[0].ID, map[string]any{
		"id":    all[1].ID,
		"title": "nope",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	unchanged, _ := api.store.GetByID(context.Background(), all[0].ID)
	assert.Equal(t, all[0].Title, unchanged.Title)
}

func TestUpdate_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPut, "/posts/missing", map[string]any{"title": "x"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// =========================================================================
// DELETE /posts/{id}
// =========================================================================

func TestDelete(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())
	before := api.count(t)

	rr := api.do(t, http.MethodDelete, "/posts/"+all[0].ID, nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	_, err := api.store.GetByID(context.Background(), all[0].ID)
	assert.Error(t, err)
	assert.Equal(t, before-1, api.count(t))
}

func TestDelete_Twice(t *testing.T) {
	api := newTestAPI(t)
	all, _ := api.store.ListAll(context.Background())

	first := api.do(t, http.MethodDelete, "/posts/"+all[0].ID, nil)
	second := api.do(t, http.MethodDelete, "/posts/"+all[0].ID, nil)

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNoContent, second.Code)
}

// =========================================================================
// SCENARIO
// =========================================================================

func TestCreateListDeleteScenario(t *testing.T) {
	api := newTestAPI(t)

	created := api.do(t, http.MethodPost, "/posts", map[string]any{
		"author":  map[string]string{"firstName": "Jane", "lastName": "Doe"},
		"title":   "T",
		"content": "C",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	post := decode[map[string]any](t, created)
	assert.Equal(t, "Jane Doe", post["author"])
	assert.Equal(t, "T", post["title"])
	assert.Equal(t, "C", post["content"])
	assert.NotEmpty(t, post["created"])
	id := post["id"].(string)

	listIDs := func() []string {
		rr := api.do(t, http.MethodGet, "/posts", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var ids []string
		for _, p := range decode[[]map[string]any](t, rr) {
			ids = append(ids, p["id"].(string))
		}
		return ids
	}

	assert.Contains(t, listIDs(), id)

	deleted := api.do(t, http.MethodDelete, "/posts/"+id, nil)
	require.Equal(t, http.StatusNoContent, deleted.Code)

	assert.NotContains(t, listIDs(), id)
}

// =========================================================================
// STORE FAILURES
// =========================================================================

type downStore struct{ *memory.Store }

func (downStore) ListAll(context.Context) ([]model.BlogPost, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestList_StoreFailureIs500(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewPostHandler(service.NewPostService(downStore{memory.New()}, logger), logger)
	rr := httptest.NewRecorder()

	h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, body.Message, "connection refused")
}
