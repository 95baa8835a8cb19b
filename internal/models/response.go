package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response is the local mirror of one submitted form response. It is
// created on submission and afterwards mutated only by the webhook
// reconciler: answers are replaced wholesale on an upstream edit, and
// DeletedInAirtable is flipped on an upstream delete. The record itself is
// never removed, so the last-known answers stay inspectable.
type Response struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID            primitive.ObjectID `bson:"formId" json:"formId"`
	AirtableRecordID  string             `bson:"airtableRecordId" json:"airtableRecordId"`
	Answers           map[string]any     `bson:"answers" json:"answers"`
	DeletedInAirtable bool               `bson:"deletedInAirtable" json:"deletedInAirtable"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
