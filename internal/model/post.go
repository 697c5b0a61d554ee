// Package model defines the data structures used throughout the application.
//
// A BlogPost has two shapes:
//
//   - the stored shape, where the author is a structured {firstName, lastName}
//     value (see the tags on Author)
//   - the public shape (PostResponse), where the author is a single display
//     string built from the stored names
//
// The display string is produced by BlogPost.Response() on every read and is
// never persisted, so it always reflects the names currently in the store.
package model

import "time"

// Author is the structured author sub-document of a post. The mongo and bolt
// stores embed it directly in their documents, hence both tag sets.
type Author struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName"  bson:"lastName"`
}

// DisplayName joins the first and last name with a single space.
func (a Author) DisplayName() string {
	return a.FirstName + " " + a.LastName
}

// BlogPost is a post as the store holds it.
//
// ID and Created are assigned by the repository on insert and never change.
type BlogPost struct {
	ID      string    `json:"id"`
	Author  Author    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// PostResponse is the JSON representation returned by the API.
type PostResponse struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// Response builds the public representation of the post.
func (p BlogPost) Response() PostResponse {
	return PostResponse{
		ID:      p.ID,
		Author:  p.Author.DisplayName(),
		Title:   p.Title,
		Content: p.Content,
		Created: p.Created,
	}
}

// PostPatch carries a partial update. A nil field means "leave unchanged".
type PostPatch struct {
	Title     *string
	Content   *string
	FirstName *string
	LastName  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.FirstName == nil && p.LastName == nil
}

// Apply writes the supplied fields onto post. Stores that cannot express a
// field-level update natively use this under their own write lock.
func (p PostPatch) Apply(post *BlogPost) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.FirstName != nil {
		post.Author.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		post.Author.LastName = *p.LastName
	}
}
