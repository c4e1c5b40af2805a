package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// ReminderStore is the persistence contract for calendar reminders.
type ReminderStore interface {
	Insert(ctx context.Context, r *models.Reminder) error
	Update(ctx context.Context, r *models.Reminder) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*models.Reminder, error)
	ByMonth(ctx context.Context, userID, month string) ([]models.Reminder, error)
	Upcoming(ctx context.Context, userID string, from time.Time, limit int64) ([]models.Reminder, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type MongoReminderStore struct {
	col *mongo.Collection
}

func (s *MongoReminderStore) Insert(ctx context.Context, r *models.Reminder) error {
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (s *MongoReminderStore) Update(ctx context.Context, r *models.Reminder) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": r.ID, "user_id": r.UserID}, r)
	if err != nil {
		return fmt.Errorf("failed to update reminder %s: %w", r.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MongoReminderStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MongoReminderStore) GetByID(ctx context.Context, userID, id string) (*models.Reminder, error) {
	var r models.Reminder
	if err := s.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoReminderStore) ByMonth(ctx context.Context, userID, month string) ([]models.Reminder, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"user_id":  userID,
		"due_date": bson.M{"$gte": start, "$lt": end},
	}
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

func (s *MongoReminderStore) Upcoming(ctx context.Context, userID string, from time.Time, limit int64) ([]models.Reminder, error) {
	filter := bson.M{
		"user_id":  userID,
		"done":     false,
		"due_date": bson.M{"$gte": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}).SetLimit(limit)
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming reminders: %w", err)
	}
	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

func (s *MongoReminderStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete reminders for user: %w", err)
	}
	return nil
}
