package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formbridge/internal/models"
)

const UsersCollection = "users"

type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection(UsersCollection)}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "airtableUserId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByID returns nil, nil when no user matches or the id is not a valid
// object id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var u models.User
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find user %s: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepo) FindByAirtableUserID(ctx context.Context, airtableUserID string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"airtableUserId": airtableUserID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find user by airtable id %s: %w", airtableUserID, err)
	}
	return &u, nil
}

// Upsert inserts the user or replaces the existing document, assigning an
// id and createdAt on first save.
func (r *UserRepo) Upsert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.UpdatedAt = now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
		u.CreatedAt = now
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("repository: upsert user %s: %w", u.ID.Hex(), err)
	}
	return nil
}
