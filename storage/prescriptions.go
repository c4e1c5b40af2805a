package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// PrescriptionStore persists generated monthly budget prescriptions, one per
// user and month.
type PrescriptionStore interface {
	Upsert(ctx context.Context, p *models.Prescription) error
	GetByMonth(ctx context.Context, userID, month string) (*models.Prescription, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type MongoPrescriptionStore struct {
	col *mongo.Collection
}

func (s *MongoPrescriptionStore) Upsert(ctx context.Context, p *models.Prescription) error {
	filter := bson.M{"user_id": p.UserID, "month": p.Month}
	_, err := s.col.ReplaceOne(ctx, filter, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert prescription for %s: %w", p.Month, err)
	}
	return nil
}

func (s *MongoPrescriptionStore) GetByMonth(ctx context.Context, userID, month string) (*models.Prescription, error) {
	var p models.Prescription
	err := s.col.FindOne(ctx, bson.M{"user_id": userID, "month": month}).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoPrescriptionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete prescriptions for user: %w", err)
	}
	return nil
}
