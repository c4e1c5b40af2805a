package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-api/models"
)

func TestCreateRejectsUnknownType(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})

	_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   "transfer",
		Amount: 100,
		Date:   "2025-07-01",
	})
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestCreateAcceptsEveryKnownType(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 100000})
	// Seed savings so the withdrawal variant has a balance to draw from.
	ts.addTransaction("seed", "u1", models.TypeSavings, "Savings", 100000, "2025-06-01")

	for _, txnType := range models.AllTransactionTypes {
		_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
			Type:     string(txnType),
			Amount:   50,
			Category: "Misc",
			Date:     "2025-07-15",
		})
		assert.NoError(t, err, "type %s", txnType)
	}
}

func TestCreateRejectsBadDate(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})

	_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeExpense),
		Amount: 100,
		Date:   "15/07/2025",
	})
	assert.Error(t, err)
}

func TestEmergencyFundWithdrawalBoundedByBalance(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 1000})

	_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 1500,
		Date:   "2025-07-01",
	})
	assert.ErrorIs(t, err, ErrEmergencyFundExceeded)

	_, err = ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 1000,
		Date:   "2025-07-01",
	})
	require.NoError(t, err)

	user, err := ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, user.EmergencyFundAmount)
}

func TestUpdateEnforcesEmergencyFundBound(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 1000})
	ts.addTransaction("t1", "u1", models.TypeExpense, "Food", 100, "2025-07-10")

	// Editing a plain expense into an oversized withdrawal must be rejected
	// and leave both the document and the fund balance untouched.
	_, err := ts.transactions.Update(context.Background(), "u1", "t1", models.UpdateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 5000,
		Date:   "2025-07-10",
	})
	assert.ErrorIs(t, err, ErrEmergencyFundExceeded)

	stored, err := ts.txnStore.GetByID(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TypeExpense, stored.Type)
	assert.InDelta(t, 100.0, stored.Amount, 0.001)

	user, err := ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, user.EmergencyFundAmount, 0.001)
}

func TestUpdateSyncsEmergencyFundBalance(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 1000})
	ts.addTransaction("t1", "u1", models.TypeExpense, "Food", 100, "2025-07-10")

	// Expense -> withdrawal applies the new effect.
	_, err := ts.transactions.Update(context.Background(), "u1", "t1", models.UpdateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 400,
		Date:   "2025-07-10",
	})
	require.NoError(t, err)

	user, err := ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 600.0, user.EmergencyFundAmount, 0.001)

	// Changing the withdrawal amount applies only the difference.
	_, err = ts.transactions.Update(context.Background(), "u1", "t1", models.UpdateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 250,
		Date:   "2025-07-10",
	})
	require.NoError(t, err)

	user, err = ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 750.0, user.EmergencyFundAmount, 0.001)

	// A withdrawal of the full adjusted balance is legal: the old 250 is
	// backed out before the bound check.
	_, err = ts.transactions.Update(context.Background(), "u1", "t1", models.UpdateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 1000,
		Date:   "2025-07-10",
	})
	require.NoError(t, err)

	user, err = ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, user.EmergencyFundAmount)
}

func TestDeleteReversesEmergencyFundEffect(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 1000})

	withdrawal, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeEmergencyFundWithdrawal),
		Amount: 400,
		Date:   "2025-07-10",
	})
	require.NoError(t, err)

	deposit, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeEmergencyFund),
		Amount: 200,
		Date:   "2025-07-11",
	})
	require.NoError(t, err)

	user, err := ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 800.0, user.EmergencyFundAmount, 0.001)

	require.NoError(t, ts.transactions.Delete(context.Background(), "u1", withdrawal.ID))
	user, err = ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, user.EmergencyFundAmount, 0.001)

	require.NoError(t, ts.transactions.Delete(context.Background(), "u1", deposit.ID))
	user, err = ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, user.EmergencyFundAmount, 0.001)
}

func TestUpdateEnforcesSavingsBound(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("s1", "u1", models.TypeSavings, "Savings", 1000, "2025-06-01")
	ts.addTransaction("w1", "u1", models.TypeSavingsWithdrawal, "Savings", 300, "2025-07-01")

	// Balance is 700 plus the 300 being replaced: 1000 is legal, 1001 is not.
	_, err := ts.transactions.Update(context.Background(), "u1", "w1", models.UpdateTransactionRequest{
		Type:   string(models.TypeSavingsWithdrawal),
		Amount: 1001,
		Date:   "2025-07-01",
	})
	assert.ErrorIs(t, err, ErrSavingsExceeded)

	_, err = ts.transactions.Update(context.Background(), "u1", "w1", models.UpdateTransactionRequest{
		Type:   string(models.TypeSavingsWithdrawal),
		Amount: 1000,
		Date:   "2025-07-01",
	})
	assert.NoError(t, err)
}

func TestEmergencyFundDepositRaisesBalance(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1", EmergencyFundAmount: 500})

	_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeEmergencyFund),
		Amount: 250,
		Date:   "2025-07-01",
	})
	require.NoError(t, err)

	user, err := ts.userStore.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 750.0, user.EmergencyFundAmount, 0.001)
}

func TestSavingsWithdrawalBoundedByAccumulatedSavings(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("s1", "u1", models.TypeSavings, "Savings", 2000, "2025-05-01")
	ts.addTransaction("s2", "u1", models.TypeSavingsWithdrawal, "Savings", 500, "2025-06-01")

	// Balance is 1500; a 2000 withdrawal must fail.
	_, err := ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeSavingsWithdrawal),
		Amount: 2000,
		Date:   "2025-07-01",
	})
	assert.ErrorIs(t, err, ErrSavingsExceeded)

	_, err = ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:   string(models.TypeSavingsWithdrawal),
		Amount: 1500,
		Date:   "2025-07-01",
	})
	assert.NoError(t, err)
}

func TestCreateInvalidatesMonthCache(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})

	// Warm the cache for July.
	txns, err := ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	assert.Empty(t, txns)

	_, err = ts.transactions.Create(context.Background(), "u1", models.CreateTransactionRequest{
		Type:     string(models.TypeExpense),
		Amount:   120,
		Category: "Food",
		Date:     "2025-07-10",
	})
	require.NoError(t, err)

	txns, err = ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Food", txns[0].Category)
}

func TestUpdateInvalidatesBothMonthsOnDateMove(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("t1", "u1", models.TypeExpense, "Food", 100, "2025-07-10")

	// Warm both months.
	_, err := ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	_, err = ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-08")
	require.NoError(t, err)

	_, err = ts.transactions.Update(context.Background(), "u1", "t1", models.UpdateTransactionRequest{
		Type:     string(models.TypeExpense),
		Amount:   100,
		Category: "Food",
		Date:     "2025-08-02",
	})
	require.NoError(t, err)

	july, err := ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	assert.Empty(t, july)

	august, err := ts.transactions.GetTransactionsByMonth(context.Background(), "u1", "2025-08")
	require.NoError(t, err)
	assert.Len(t, august, 1)
}

func TestGetTotalIncomeWithDebt(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("i1", "u1", models.TypeIncome, "Salary", 25000, "2025-07-01")
	ts.addTransaction("d1", "u1", models.TypeDebt, "Loan", 5000, "2025-07-05")
	ts.addTransaction("e1", "u1", models.TypeExpense, "Food", 300, "2025-07-06")

	total, err := ts.transactions.GetTotalIncomeWithDebt(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	assert.InDelta(t, 30000.0, total, 0.001)
}

func TestGetExpenseCategoryTotalsCountsOnlySpendingTypes(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("e1", "u1", models.TypeExpense, "Food", 300, "2025-07-01")
	ts.addTransaction("e2", "u1", models.TypeRecurringExpense, "Rent", 8000, "2025-07-01")
	ts.addTransaction("e3", "u1", models.TypeDebtPayment, "Loan", 2000, "2025-07-02")
	ts.addTransaction("i1", "u1", models.TypeIncome, "Salary", 25000, "2025-07-01")
	ts.addTransaction("s1", "u1", models.TypeSavings, "Savings", 3000, "2025-07-03")

	totals, err := ts.transactions.GetExpenseCategoryTotals(context.Background(), "u1", "2025-07")
	require.NoError(t, err)

	assert.InDelta(t, 300.0, totals["Food"], 0.001)
	assert.InDelta(t, 8000.0, totals["Rent"], 0.001)
	assert.InDelta(t, 2000.0, totals["Loan"], 0.001)
	assert.NotContains(t, totals, "Salary")
	assert.NotContains(t, totals, "Savings")
}

func TestMonthSpendingSumsSpendingTypes(t *testing.T) {
	ts := newTestStack(time.Minute)
	ts.addUser(models.User{ID: "u1"})
	ts.addTransaction("e1", "u1", models.TypeExpense, "Food", 300, "2025-07-01")
	ts.addTransaction("e2", "u1", models.TypeDebtPayment, "Loan", 2000, "2025-07-02")
	ts.addTransaction("i1", "u1", models.TypeIncome, "Salary", 25000, "2025-07-01")

	total, err := ts.transactions.MonthSpending(context.Background(), "u1", "2025-07")
	require.NoError(t, err)
	assert.InDelta(t, 2300.0, total, 0.001)
}

func TestParseTransactionDate(t *testing.T) {
	got, err := ParseTransactionDate("2025-07-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTransactionDate("2025-07-15T08:30:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 0, got.Hour())

	_, err = ParseTransactionDate("yesterday")
	assert.Error(t, err)
}
