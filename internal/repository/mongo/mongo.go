// Package mongo stores posts in a MongoDB collection, one document per post:
//
//	{ _id: ObjectId, author: {firstName, lastName}, title, content, created }
//
// Every operation is a single-document command, so MongoDB's per-document
// atomicity is all the coordination the repository needs. Field-level
// updates use $set on exactly the supplied paths.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// CollectionName is the collection holding blog posts.
const CollectionName = "posts"

type Store struct {
	client *mongo.Client
	posts  *mongo.Collection
}

type document struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Author  model.Author       `bson:"author"`
	Title   string             `bson:"title"`
	Content string             `bson:"content"`
	Created time.Time          `bson:"created"`
}

func (d document) post() model.BlogPost {
	return model.BlogPost{
		ID:      d.ID.Hex(),
		Author:  d.Author,
		Title:   d.Title,
		Content: d.Content,
		Created: d.Created.UTC(),
	}
}

// Open connects to uri and verifies the primary is reachable.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	s := &Store{
		client: client,
		posts:  client.Database(database).Collection(CollectionName),
	}
	if err := s.Ping(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: creating created index: %w", err)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// objectID parses a post id. Ids that are not valid ObjectIDs cannot exist
// in the collection, so they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound("post", id)
	}
	return oid, nil
}

func (s *Store) Insert(ctx context.Context, post *model.BlogPost) error {
	doc := document{
		ID:      primitive.NewObjectID(),
		Author:  post.Author,
		Title:   post.Title,
		Content: post.Content,
		Created: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: inserting post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.Created = doc.Created
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc document
	err = s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("mongo: getting post %s: %w", id, err)
	}

	post := doc.post()
	return &post, nil
}

func (s *Store) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := s.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing posts: %w", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding posts: %w", err)
	}

	posts := make([]model.BlogPost, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.post())
	}
	return posts, nil
}

// setFields maps a patch onto $set paths inside the document.
func setFields(patch model.PostPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.FirstName != nil {
		set["author.firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["author.lastName"] = *patch.LastName
	}
	return set
}

func (s *Store) UpdateFields(ctx context.Context, id string, patch model.PostPatch) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid}

	// $set with an empty document is rejected by the server; an empty patch
	// only has to confirm the post exists.
	if patch.IsEmpty() {
		n, err := s.posts.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("mongo: updating post %s: %w", id, err)
		}
		if n == 0 {
			return apperror.NotFound("post", id)
		}
		return nil
	}

	res, err := s.posts.UpdateOne(ctx, filter, bson.M{"$set": setFields(patch)})
	if err != nil {
		return fmt.Errorf("mongo: updating post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: deleting post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongo: counting posts: %w", err)
	}
	return int(n), nil
}
