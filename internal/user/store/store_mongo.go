package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"printsettings/internal/user/models"
	"printsettings/pkg/platform/sentinel"
)

// userDocument keeps the field names of the existing user collection so records
// written by earlier deployments stay readable.
type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"Email"`
	Password string             `bson:"Password,omitempty"`
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		PasswordDigest: d.Password,
	}
}

// MongoStore persists users in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongo wraps collection and ensures the unique email index exists. The index
// is what closes the check-then-insert race in account creation.
func NewMongo(ctx context.Context, collection *mongo.Collection) (*MongoStore, error) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}
	return &MongoStore{collection: collection}, nil
}

func (s *MongoStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Email:    user.Email,
		Password: user.PasswordDigest,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"Email": email})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) Replace(ctx context.Context, user *models.User) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return false, nil
	}
	doc := userDocument{ID: oid, Email: user.Email, Password: user.PasswordDigest}
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("replace user: %w", sentinel.ErrConflict)
		}
		return false, fmt.Errorf("replace user: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
