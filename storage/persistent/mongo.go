package persistent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postboard/storage"
	"postboard/storage/models"
)

type postDocument struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Name      string             `bson:"name"`
	UserId    string             `bson:"user"`
	CreatedAt time.Time          `bson:"date"`
}

func (d *postDocument) toModel() *models.Post {
	return &models.Post{
		Id:        d.Id.Hex(),
		Text:      d.Text,
		Name:      d.Name,
		UserId:    d.UserId,
		CreatedAt: d.CreatedAt,
	}
}

type userDocument struct {
	Id   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type MongoStorage struct {
	client *mongo.Client
	posts  *mongo.Collection
	users  *mongo.Collection
}

func CreateMongoStorage(ctx context.Context, dbUrl, dbName string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	db := client.Database(dbName)
	posts := db.Collection("posts")
	if err := ensurePostsIndexes(ctx, posts); err != nil {
		return nil, err
	}
	return &MongoStorage{
		client: client,
		posts:  posts,
		users:  db.Collection("users"),
	}, nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStorage) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find()
	opts.SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %s %w", err.Error(), storage.InternalError)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		err := cursor.Close(ctx)
		if err != nil {
			log.Printf("Cursor closing failed: %s", err.Error())
		}
	}(cursor, ctx)

	posts := make([]models.Post, 0)
	for cursor.Next(ctx) {
		var doc postDocument
		if err = cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
		}
		posts = append(posts, *doc.toModel())
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %s, %w", err, storage.InternalError)
	}
	return posts, nil
}

func (s *MongoStorage) AddPost(ctx context.Context, userId, name, text string) (*models.Post, error) {
	doc := postDocument{
		Text:      text,
		Name:      name,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.posts.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %s %w", err.Error(), storage.InternalError)
	}
	doc.Id = id.InsertedID.(primitive.ObjectID)
	return doc.toModel(), nil
}

func (s *MongoStorage) GetPost(ctx context.Context, postId string) (*models.Post, error) {
	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return nil, fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.NotFoundError)
	}
	var doc postDocument
	err = s.posts.FindOne(ctx, bson.M{"_id": postMongoId}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to find post: %s %w", err.Error(), storage.InternalError)
	}
	return doc.toModel(), nil
}

func (s *MongoStorage) UpdatePostText(ctx context.Context, postId, text string) (*models.Post, error) {
	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return nil, fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.NotFoundError)
	}
	filter := bson.M{"_id": postMongoId}
	update := bson.M{"$set": bson.M{"text": text}}

	opt := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)
	mongoResult := s.posts.FindOneAndUpdate(ctx, filter, update, opt)
	if err = mongoResult.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to update post %s: %s %w", postId, err.Error(), storage.InternalError)
	}
	var doc postDocument
	if err = mongoResult.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
	}
	return doc.toModel(), nil
}

// DeletePost removes the post only when owned by userId. The owner-filtered
// delete and the follow-up existence probe keep "absent" and "owned by
// someone else" as distinct outcomes.
func (s *MongoStorage) DeletePost(ctx context.Context, postId, userId string) error {
	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.NotFoundError)
	}
	filter := bson.M{"_id": postMongoId, "user": userId}
	mongoResult := s.posts.FindOneAndDelete(ctx, filter)
	err = mongoResult.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		var doc postDocument
		err = s.posts.FindOne(ctx, bson.M{"_id": postMongoId}).Decode(&doc)
		if err == nil {
			return fmt.Errorf("post %s is owned by another user %s: %w", postId, doc.UserId, storage.Forbidden)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
	}
	return fmt.Errorf("failed to delete post %s: %s %w", postId, err.Error(), storage.InternalError)
}

func (s *MongoStorage) GetUser(ctx context.Context, userId string) (*models.User, error) {
	userMongoId, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return nil, fmt.Errorf("failed to convert provided id to Mongo object id: %w", storage.NotFoundError)
	}
	var doc userDocument
	err = s.users.FindOne(ctx, bson.M{"_id": userMongoId}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no user with id %v: %w", userId, storage.NotFoundError)
		}
		return nil, fmt.Errorf("failed to find user: %s %w", err.Error(), storage.InternalError)
	}
	return &models.User{Id: doc.Id.Hex(), Name: doc.Name}, nil
}
