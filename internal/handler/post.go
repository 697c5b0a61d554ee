package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

// PostHandler exposes the blog-post resource over HTTP.
//
// ROUTES (mounted by internal/server):
//
//	GET    /posts       → HandleList
//	GET    /posts/{id}  → HandleGet
//	POST   /posts       → HandleCreate
//	PUT    /posts/{id}  → HandleUpdate
//	DELETE /posts/{id}  → HandleDelete
//
// Every response body is a model.PostResponse (or a bare array of them); the
// stored author names never leave this package in structured form.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

type authorRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// createPostRequest mirrors the POST body:
//
//	{"author": {"firstName": "Jane", "lastName": "Doe"}, "title": "T", "content": "C"}
type createPostRequest struct {
	Author  authorRequest `json:"author"`
	Title   string        `json:"title"`
	Content string        `json:"content"`
}

// updatePostRequest uses pointers throughout so "absent" and "empty" can be
// told apart: only fields present in the JSON end up in the patch.
type updatePostRequest struct {
	ID      *string `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	} `json:"author"`
}

func (req updatePostRequest) input() service.UpdatePostInput {
	in := service.UpdatePostInput{
		BodyID: req.ID,
		Patch: model.PostPatch{
			Title:   req.Title,
			Content: req.Content,
		},
	}
	if req.Author != nil {
		in.Patch.FirstName = req.Author.FirstName
		in.Patch.LastName = req.Author.LastName
	}
	return in
}

// HandleList returns every post as a bare JSON array.
//
// HTTP: GET /posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]model.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, p.Response())
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet returns a single post.
//
// HTTP: GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post.Response())
}

// HandleCreate creates a post and returns it with 201 Created.
//
// HTTP: POST /posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), service.CreatePostInput{
		FirstName: req.Author.FirstName,
		LastName:  req.Author.LastName,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post.Response())
}

// HandleUpdate applies a partial update and answers 204 No Content.
//
// HTTP: PUT /posts/{id}
// BODY: any subset of {"id", "title", "content", "author": {"firstName", "lastName"}}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("invalid post update JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), req.input()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a post and answers 204 No Content, also when the
// post was already gone.
//
// HTTP: DELETE /posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
