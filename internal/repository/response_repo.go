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

const ResponsesCollection = "responses"

type ResponseRepo struct {
	col *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) *ResponseRepo {
	return &ResponseRepo{col: db.Collection(ResponsesCollection)}
}

func (r *ResponseRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "formId", Value: 1}}},
		{Keys: bson.D{{Key: "airtableRecordId", Value: 1}}},
	})
	return err
}

func (r *ResponseRepo) Create(ctx context.Context, resp *models.Response) error {
	now := time.Now().UTC()
	resp.ID = primitive.NewObjectID()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, resp); err != nil {
		return fmt.Errorf("repository: insert response: %w", err)
	}
	return nil
}

func (r *ResponseRepo) FindByFormID(ctx context.Context, formID string) ([]models.Response, error) {
	objID, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"formId": objID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("repository: find responses for form %s: %w", formID, err)
	}
	var responses []models.Response
	if err := cur.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("repository: decode responses: %w", err)
	}
	return responses, nil
}

func (r *ResponseRepo) FindByAirtableRecordID(ctx context.Context, recordID string) (*models.Response, error) {
	var resp models.Response
	err := r.col.FindOne(ctx, bson.M{"airtableRecordId": recordID}).Decode(&resp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find response by record %s: %w", recordID, err)
	}
	return &resp, nil
}

func (r *ResponseRepo) Update(ctx context.Context, resp *models.Response) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": resp.ID}, resp)
	if err != nil {
		return fmt.Errorf("repository: update response %s: %w", resp.ID.Hex(), err)
	}
	return nil
}

func (r *ResponseRepo) CountByFormID(ctx context.Context, formID string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"formId": objID})
	if err != nil {
		return 0, fmt.Errorf("repository: count responses for form %s: %w", formID, err)
	}
	return n, nil
}
