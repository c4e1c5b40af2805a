package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// In-memory store implementations for service tests.

type fakeTransactionStore struct {
	mu      sync.Mutex
	txns    map[string]models.Transaction // id -> txn
	loadErr error
	loads   int
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{txns: make(map[string]models.Transaction)}
}

func (f *fakeTransactionStore) Insert(_ context.Context, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txns[txn.ID] = *txn
	return nil
}

func (f *fakeTransactionStore) Update(_ context.Context, txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txns[txn.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	f.txns[txn.ID] = *txn
	return nil
}

func (f *fakeTransactionStore) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[id]
	if !ok || txn.UserID != userID {
		return mongo.ErrNoDocuments
	}
	delete(f.txns, id)
	return nil
}

func (f *fakeTransactionStore) GetByID(_ context.Context, userID, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[id]
	if !ok || txn.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	return &txn, nil
}

func (f *fakeTransactionStore) ByMonth(_ context.Context, userID, month string) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var out []models.Transaction
	for _, txn := range f.txns {
		if txn.UserID == userID && txn.Date.UTC().Format("2006-01") == month {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) ByDateRange(_ context.Context, userID string, from, to time.Time) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, txn := range f.txns {
		if txn.UserID == userID && !txn.Date.Before(from) && txn.Date.Before(to) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) All(_ context.Context, userID string) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, txn := range f.txns {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) DeleteAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, txn := range f.txns {
		if txn.UserID == userID {
			delete(f.txns, id)
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Insert(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &user, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakePrescriptionStore struct {
	mu      sync.Mutex
	stored  map[string]models.Prescription // userID+month -> prescription
	upserts int
}

func newFakePrescriptionStore() *fakePrescriptionStore {
	return &fakePrescriptionStore{stored: make(map[string]models.Prescription)}
}

func (f *fakePrescriptionStore) Upsert(_ context.Context, p *models.Prescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.stored[p.UserID+"|"+p.Month] = *p
	return nil
}

func (f *fakePrescriptionStore) GetByMonth(_ context.Context, userID, month string) (*models.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.stored[userID+"|"+month]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (f *fakePrescriptionStore) DeleteAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, p := range f.stored {
		if p.UserID == userID {
			delete(f.stored, key)
		}
	}
	return nil
}

type fakeReminderStore struct {
	mu        sync.Mutex
	reminders map[string]models.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[string]models.Reminder)}
}

func (f *fakeReminderStore) Insert(_ context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[r.ID] = *r
	return nil
}

func (f *fakeReminderStore) Update(_ context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reminders[r.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	f.reminders[r.ID] = *r
	return nil
}

func (f *fakeReminderStore) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return mongo.ErrNoDocuments
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderStore) GetByID(_ context.Context, userID, id string) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	return &r, nil
}

func (f *fakeReminderStore) ByMonth(_ context.Context, userID, month string) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID && r.DueDate.UTC().Format("2006-01") == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) Upcoming(_ context.Context, userID string, from time.Time, limit int64) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID && !r.Done && !r.DueDate.Before(from) {
			out = append(out, r)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeReminderStore) DeleteAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reminders {
		if r.UserID == userID {
			delete(f.reminders, id)
		}
	}
	return nil
}

// testStack wires the fakes into a full service stack.
type testStack struct {
	txnStore          *fakeTransactionStore
	userStore         *fakeUserStore
	prescriptionStore *fakePrescriptionStore
	reminderStore     *fakeReminderStore

	cache         *DataCacheService
	transactions  *TransactionService
	prescriptions *BudgetPrescriptionService
}

func newTestStack(ttl time.Duration) *testStack {
	txnStore := newFakeTransactionStore()
	userStore := newFakeUserStore()
	prescriptionStore := newFakePrescriptionStore()
	reminderStore := newFakeReminderStore()

	cache := NewDataCacheService(txnStore, reminderStore, ttl)
	transactions := NewTransactionService(txnStore, userStore, cache)
	prescriptions := NewBudgetPrescriptionService(prescriptionStore, userStore, transactions)

	return &testStack{
		txnStore:          txnStore,
		userStore:         userStore,
		prescriptionStore: prescriptionStore,
		reminderStore:     reminderStore,
		cache:             cache,
		transactions:      transactions,
		prescriptions:     prescriptions,
	}
}

func (ts *testStack) addUser(user models.User) {
	ts.userStore.users[user.ID] = user
}

func (ts *testStack) addTransaction(id, userID string, txnType models.TransactionType, category string, amount float64, date string) {
	day, _ := time.Parse("2006-01-02", date)
	ts.txnStore.txns[id] = models.Transaction{
		ID:       id,
		UserID:   userID,
		Type:     txnType,
		Category: category,
		Amount:   amount,
		Date:     day,
	}
}
