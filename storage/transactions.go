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

// TransactionStore is the persistence contract for transactions.
type TransactionStore interface {
	Insert(ctx context.Context, txn *models.Transaction) error
	Update(ctx context.Context, txn *models.Transaction) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*models.Transaction, error)
	ByMonth(ctx context.Context, userID, month string) ([]models.Transaction, error)
	ByDateRange(ctx context.Context, userID string, from, to time.Time) ([]models.Transaction, error)
	All(ctx context.Context, userID string) ([]models.Transaction, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// MongoTransactionStore implements TransactionStore over a mongo collection.
type MongoTransactionStore struct {
	col *mongo.Collection
}

func (s *MongoTransactionStore) Insert(ctx context.Context, txn *models.Transaction) error {
	if _, err := s.col.InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *MongoTransactionStore) Update(ctx context.Context, txn *models.Transaction) error {
	filter := bson.M{"_id": txn.ID, "user_id": txn.UserID}
	res, err := s.col.ReplaceOne(ctx, filter, txn)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MongoTransactionStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MongoTransactionStore) GetByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&txn)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *MongoTransactionStore) ByMonth(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	return s.ByDateRange(ctx, userID, start, end)
}

func (s *MongoTransactionStore) ByDateRange(ctx context.Context, userID string, from, to time.Time) ([]models.Transaction, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txns, nil
}

func (s *MongoTransactionStore) All(ctx context.Context, userID string) ([]models.Transaction, error) {
	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txns, nil
}

func (s *MongoTransactionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete transactions for user: %w", err)
	}
	return nil
}
