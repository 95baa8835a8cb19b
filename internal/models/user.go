package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an Airtable account that logged in through the OAuth flow.
// OAuth tokens are stored for webhook reconciliation and record writes
// on the user's behalf; they are never serialized to JSON.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AirtableUserID string             `bson:"airtableUserId" json:"airtableUserId"`
	Email          string             `bson:"email" json:"email"`
	Name           string             `bson:"name,omitempty" json:"name,omitempty"`
	AccessToken    string             `bson:"accessToken" json:"-"`
	RefreshToken   string             `bson:"refreshToken,omitempty" json:"-"`
	LastLogin      time.Time          `bson:"lastLogin" json:"lastLogin"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Name:  u.Name,
	}
}
