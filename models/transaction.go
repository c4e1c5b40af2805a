package models

import "time"

// TransactionType classifies every money movement the app records.
type TransactionType string

const (
	TypeExpense                 TransactionType = "expense"
	TypeIncome                  TransactionType = "income"
	TypeSavings                 TransactionType = "savings"
	TypeSavingsWithdrawal       TransactionType = "savingsWithdrawal"
	TypeDebt                    TransactionType = "debt"
	TypeDebtPayment             TransactionType = "debtPayment"
	TypeRecurringExpense        TransactionType = "recurringExpense"
	TypeEmergencyFund           TransactionType = "emergencyFund"
	TypeEmergencyFundWithdrawal TransactionType = "emergencyFundWithdrawal"
)

// AllTransactionTypes lists every valid TransactionType.
var AllTransactionTypes = []TransactionType{
	TypeExpense,
	TypeIncome,
	TypeSavings,
	TypeSavingsWithdrawal,
	TypeDebt,
	TypeDebtPayment,
	TypeRecurringExpense,
	TypeEmergencyFund,
	TypeEmergencyFundWithdrawal,
}

// Valid reports whether t is one of the nine known types.
func (t TransactionType) Valid() bool {
	for _, known := range AllTransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsSpending reports whether the type counts against the monthly budget.
func (t TransactionType) IsSpending() bool {
	return t == TypeExpense || t == TypeRecurringExpense || t == TypeDebtPayment
}

type Transaction struct {
	ID          string          `json:"id" bson:"_id"`
	UserID      string          `json:"user_id" bson:"user_id"`
	Amount      float64         `json:"amount" bson:"amount"`
	Type        TransactionType `json:"type" bson:"type"`
	Category    string          `json:"category" bson:"category"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time       `json:"date" bson:"date"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

type CreateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Date        string  `json:"date" binding:"required"` // RFC3339 or YYYY-MM-DD
}

type UpdateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Date        string  `json:"date" binding:"required"`
}
