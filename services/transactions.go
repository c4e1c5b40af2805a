package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/storage"
)

var (
	// ErrInvalidTransactionType is returned for a type outside the nine
	// known variants.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrEmergencyFundExceeded is returned when an emergency fund withdrawal
	// is larger than the current emergency fund balance.
	ErrEmergencyFundExceeded = errors.New("withdrawal exceeds emergency fund balance")

	// ErrSavingsExceeded is returned when a savings withdrawal is larger
	// than the accumulated savings balance.
	ErrSavingsExceeded = errors.New("withdrawal exceeds savings balance")
)

// TransactionService owns transaction mutations and month-level aggregates.
// Every mutation invalidates the month cache for the affected month(s).
type TransactionService struct {
	store storage.TransactionStore
	users storage.UserStore
	cache *DataCacheService
}

func NewTransactionService(store storage.TransactionStore, users storage.UserStore, cache *DataCacheService) *TransactionService {
	return &TransactionService{store: store, users: users, cache: cache}
}

// ParseTransactionDate accepts RFC3339 or plain YYYY-MM-DD dates.
func ParseTransactionDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// Create validates and stores a new transaction.
func (s *TransactionService) Create(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	txnType := models.TransactionType(req.Type)
	if !txnType.Valid() {
		return nil, ErrInvalidTransactionType
	}

	date, err := ParseTransactionDate(req.Date)
	if err != nil {
		return nil, err
	}

	if err := s.checkWithdrawalBounds(ctx, userID, txnType, req.Amount, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      req.Amount,
		Type:        txnType,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Insert(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.adjustEmergencyFund(ctx, userID, emergencyFundEffect(txnType, req.Amount)); err != nil {
		return nil, err
	}

	s.cache.InvalidateMonth(userID, date.Format("2006-01"))
	return txn, nil
}

// Update replaces an existing transaction. Both the old and the new month are
// invalidated when the date moves across a month boundary.
func (s *TransactionService) Update(ctx context.Context, userID, id string, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	existing, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	txnType := models.TransactionType(req.Type)
	if !txnType.Valid() {
		return nil, ErrInvalidTransactionType
	}

	date, err := ParseTransactionDate(req.Date)
	if err != nil {
		return nil, err
	}

	// The old transaction's own effect is backed out before the bound check,
	// so shrinking or retyping an existing withdrawal stays legal.
	if err := s.checkWithdrawalBounds(ctx, userID, txnType, req.Amount, existing); err != nil {
		return nil, err
	}

	updated := &models.Transaction{
		ID:          existing.ID,
		UserID:      userID,
		Amount:      req.Amount,
		Type:        txnType,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, err
	}

	delta := emergencyFundEffect(txnType, req.Amount) - emergencyFundEffect(existing.Type, existing.Amount)
	if err := s.adjustEmergencyFund(ctx, userID, delta); err != nil {
		return nil, err
	}

	oldMonth := existing.Date.Format("2006-01")
	newMonth := date.Format("2006-01")
	s.cache.InvalidateMonth(userID, oldMonth)
	if newMonth != oldMonth {
		s.cache.InvalidateMonth(userID, newMonth)
	}

	return updated, nil
}

// Delete removes a transaction and invalidates its month.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.adjustEmergencyFund(ctx, userID, -emergencyFundEffect(existing.Type, existing.Amount)); err != nil {
		return err
	}
	s.cache.InvalidateMonth(userID, existing.Date.Format("2006-01"))
	return nil
}

// GetTransactionsByMonth serves from the month cache.
func (s *TransactionService) GetTransactionsByMonth(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	data, err := s.cache.MonthData(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

// GetTransactionsByDateRange bypasses the cache (arbitrary ranges).
func (s *TransactionService) GetTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]models.Transaction, error) {
	return s.store.ByDateRange(ctx, userID, from, to)
}

// GetAllTransactions returns every transaction for a user, newest first.
func (s *TransactionService) GetAllTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.store.All(ctx, userID)
}

// GetExpenseCategoryTotals sums spending-type transactions per category for
// one month.
func (s *TransactionService) GetExpenseCategoryTotals(ctx context.Context, userID, month string) (map[string]float64, error) {
	data, err := s.cache.MonthData(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, txn := range data.Transactions {
		if txn.Type.IsSpending() {
			totals[txn.Category] += txn.Amount
		}
	}
	return totals, nil
}

// GetTotalByType sums one transaction type for one month.
func (s *TransactionService) GetTotalByType(ctx context.Context, userID, month string, txnType models.TransactionType) (float64, error) {
	if !txnType.Valid() {
		return 0, ErrInvalidTransactionType
	}
	data, err := s.cache.MonthData(ctx, userID, month)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, txn := range data.Transactions {
		if txn.Type == txnType {
			total += txn.Amount
		}
	}
	return total, nil
}

// GetTotalIncomeWithDebt returns income plus borrowed money for one month:
// both add to the cash available for spending.
func (s *TransactionService) GetTotalIncomeWithDebt(ctx context.Context, userID, month string) (float64, error) {
	income, err := s.GetTotalByType(ctx, userID, month, models.TypeIncome)
	if err != nil {
		return 0, err
	}
	debt, err := s.GetTotalByType(ctx, userID, month, models.TypeDebt)
	if err != nil {
		return 0, err
	}
	return income + debt, nil
}

// MonthSpending sums all spending-type transactions for one month.
func (s *TransactionService) MonthSpending(ctx context.Context, userID, month string) (float64, error) {
	daily, err := s.cache.DailySpending(ctx, userID, month)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, amount := range daily {
		total += amount
	}
	return total, nil
}

// emergencyFundEffect is the signed change a transaction applies to the
// user's emergency fund balance.
func emergencyFundEffect(txnType models.TransactionType, amount float64) float64 {
	switch txnType {
	case models.TypeEmergencyFund:
		return amount
	case models.TypeEmergencyFundWithdrawal:
		return -amount
	}
	return 0
}

// savingsEffect is the signed change a transaction applies to the
// accumulated savings balance.
func savingsEffect(txnType models.TransactionType, amount float64) float64 {
	switch txnType {
	case models.TypeSavings:
		return amount
	case models.TypeSavingsWithdrawal:
		return -amount
	}
	return 0
}

// checkWithdrawalBounds enforces the withdrawal invariants: an emergency fund
// withdrawal is bounded by the user's emergency fund balance, a savings
// withdrawal by the accumulated savings. When the transaction replaces an
// existing one, the old transaction's own effect is backed out of the balance
// before the check.
func (s *TransactionService) checkWithdrawalBounds(ctx context.Context, userID string, txnType models.TransactionType, amount float64, replacing *models.Transaction) error {
	switch txnType {
	case models.TypeEmergencyFundWithdrawal:
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		available := user.EmergencyFundAmount
		if replacing != nil {
			available -= emergencyFundEffect(replacing.Type, replacing.Amount)
		}
		if amount > available {
			return ErrEmergencyFundExceeded
		}
	case models.TypeSavingsWithdrawal:
		balance, err := s.savingsBalance(ctx, userID)
		if err != nil {
			return err
		}
		if replacing != nil {
			balance -= savingsEffect(replacing.Type, replacing.Amount)
		}
		if amount > balance {
			return ErrSavingsExceeded
		}
	}
	return nil
}

func (s *TransactionService) savingsBalance(ctx context.Context, userID string) (float64, error) {
	txns, err := s.store.All(ctx, userID)
	if err != nil {
		return 0, err
	}
	var balance float64
	for _, txn := range txns {
		switch txn.Type {
		case models.TypeSavings:
			balance += txn.Amount
		case models.TypeSavingsWithdrawal:
			balance -= txn.Amount
		}
	}
	return balance, nil
}

// adjustEmergencyFund keeps the user's emergency fund balance in step with
// the ledger: creates apply a transaction's effect, updates apply the
// difference between the new and old effect, deletes reverse it.
func (s *TransactionService) adjustEmergencyFund(ctx context.Context, userID string, delta float64) error {
	if delta == 0 {
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.EmergencyFundAmount += delta
	if user.EmergencyFundAmount < 0 {
		user.EmergencyFundAmount = 0
	}
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}
