package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection         = "users"
	transactionsCollection  = "transactions"
	prescriptionsCollection = "prescriptions"
	remindersCollection     = "reminders"
	sessionsCollection      = "sessions"
	passwordResetsCollection = "password_resets"
)

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// Stores bundles every repository backed by one database.
type Stores struct {
	Users          UserStore
	Transactions   TransactionStore
	Prescriptions  PrescriptionStore
	Reminders      ReminderStore
	Sessions       SessionStore
	PasswordResets PasswordResetStore
}

// NewStores wires mongo-backed repositories over db.
func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:          &MongoUserStore{col: db.Collection(usersCollection)},
		Transactions:   &MongoTransactionStore{col: db.Collection(transactionsCollection)},
		Prescriptions:  &MongoPrescriptionStore{col: db.Collection(prescriptionsCollection)},
		Reminders:      &MongoReminderStore{col: db.Collection(remindersCollection)},
		Sessions:       &MongoSessionStore{col: db.Collection(sessionsCollection)},
		PasswordResets: &MongoPasswordResetStore{col: db.Collection(passwordResetsCollection)},
	}
}

// EnsureIndexes creates the indexes every query path depends on. Safe to run
// on every startup (the driver treats existing identical indexes as a no-op).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}, {Key: "date", Value: 1}}},
		},
		prescriptionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "month", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		remindersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}}},
		},
		sessionsCollection: {
			{Keys: bson.D{{Key: "refresh_token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		passwordResetsCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}

	return nil
}

// MonthRange converts a YYYY-MM key into the [start, end) bounds of that month
// in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
