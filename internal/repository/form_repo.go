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

const FormsCollection = "forms"

type FormRepo struct {
	col *mongo.Collection
}

func NewFormRepo(db *mongo.Database) *FormRepo {
	return &FormRepo{col: db.Collection(FormsCollection)}
}

func (r *FormRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "webhookId", Value: 1}}},
		{Keys: bson.D{{Key: "airtableBaseId", Value: 1}}},
	})
	return err
}

func (r *FormRepo) Create(ctx context.Context, f *models.Form) error {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("repository: insert form: %w", err)
	}
	return nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var f models.Form
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find form %s: %w", id, err)
	}
	return &f, nil
}

func (r *FormRepo) FindByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	objID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"owner": objID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("repository: find forms for owner %s: %w", ownerID, err)
	}
	var forms []models.Form
	if err := cur.All(ctx, &forms); err != nil {
		return nil, fmt.Errorf("repository: decode forms: %w", err)
	}
	return forms, nil
}

func (r *FormRepo) FindByWebhookID(ctx context.Context, webhookID string) (*models.Form, error) {
	if webhookID == "" {
		return nil, nil
	}
	var f models.Form
	err := r.col.FindOne(ctx, bson.M{"webhookId": webhookID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find form by webhook %s: %w", webhookID, err)
	}
	return &f, nil
}

func (r *FormRepo) FindByBaseID(ctx context.Context, baseID string) ([]models.Form, error) {
	cur, err := r.col.Find(ctx, bson.M{"airtableBaseId": baseID})
	if err != nil {
		return nil, fmt.Errorf("repository: find forms for base %s: %w", baseID, err)
	}
	var forms []models.Form
	if err := cur.All(ctx, &forms); err != nil {
		return nil, fmt.Errorf("repository: decode forms: %w", err)
	}
	return forms, nil
}

func (r *FormRepo) Update(ctx context.Context, f *models.Form) error {
	f.UpdatedAt = time.Now().UTC()
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return fmt.Errorf("repository: update form %s: %w", f.ID.Hex(), err)
	}
	return nil
}

func (r *FormRepo) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		return fmt.Errorf("repository: delete form %s: %w", id, err)
	}
	return nil
}

func (r *FormRepo) SetWebhook(ctx context.Context, id, webhookID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("repository: invalid form id %q", id)
	}
	_, err = r.col.UpdateByID(ctx, objID, bson.M{"$set": bson.M{
		"webhookId": webhookID,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("repository: set webhook on form %s: %w", id, err)
	}
	return nil
}

func (r *FormRepo) SetWebhookCursor(ctx context.Context, id string, cursor int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("repository: invalid form id %q", id)
	}
	_, err = r.col.UpdateByID(ctx, objID, bson.M{"$set": bson.M{
		"webhookCursor": cursor,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("repository: set cursor on form %s: %w", id, err)
	}
	return nil
}

func (r *FormRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"owner": objID})
	if err != nil {
		return 0, fmt.Errorf("repository: count forms for owner %s: %w", ownerID, err)
	}
	return n, nil
}
