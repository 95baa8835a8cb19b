package service

import (
	"context"

	"formbridge/internal/airtable"
	"formbridge/internal/repository"
)

// MetaService exposes the schema of the logged-in user's Airtable bases,
// used by the builder UI to map questions onto table fields.
type MetaService struct {
	users     *repository.UserRepo
	newClient ClientFactory
}

func NewMetaService(users *repository.UserRepo, newClient ClientFactory) *MetaService {
	return &MetaService{users: users, newClient: newClient}
}

func (s *MetaService) Bases(ctx context.Context, userID string) ([]airtable.Base, error) {
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ListBases(ctx)
}

func (s *MetaService) Tables(ctx context.Context, userID, baseID string) ([]airtable.Table, error) {
	client, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ListTables(ctx, baseID)
}

func (s *MetaService) client(ctx context.Context, userID string) (*airtable.Client, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.newClient(user.AccessToken), nil
}
