package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// SessionStore persists refresh-token sessions. Expired documents are reaped
// by the TTL index on expires_at.
type SessionStore interface {
	Insert(ctx context.Context, s *models.Session) error
	GetByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteByToken(ctx context.Context, refreshToken string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type MongoSessionStore struct {
	col *mongo.Collection
}

func (s *MongoSessionStore) Insert(ctx context.Context, sess *models.Session) error {
	if _, err := s.col.InsertOne(ctx, sess); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *MongoSessionStore) GetByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var sess models.Session
	if err := s.col.FindOne(ctx, bson.M{"refresh_token": refreshToken}).Decode(&sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MongoSessionStore) DeleteByToken(ctx context.Context, refreshToken string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"refresh_token": refreshToken}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *MongoSessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete sessions for user: %w", err)
	}
	return nil
}

// PasswordResetStore persists single-use password reset tokens.
type PasswordResetStore interface {
	Insert(ctx context.Context, r *models.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type MongoPasswordResetStore struct {
	col *mongo.Collection
}

func (s *MongoPasswordResetStore) Insert(ctx context.Context, r *models.PasswordReset) error {
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to insert password reset: %w", err)
	}
	return nil
}

func (s *MongoPasswordResetStore) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	var r models.PasswordReset
	if err := s.col.FindOne(ctx, bson.M{"token": token}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoPasswordResetStore) MarkUsed(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"used": true}})
	if err != nil {
		return fmt.Errorf("failed to mark password reset used: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MongoPasswordResetStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete password resets for user: %w", err)
	}
	return nil
}
