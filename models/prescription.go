package models

import "time"

// ConfidenceLevel qualifies how much historical data backs a prescription.
// Exactly three levels, monotonic in DataCompleteness.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// BudgetStrategy selects the allocation policy applied when generating a
// prescription, derived from the user's budget profile.
type BudgetStrategy string

const (
	StrategyDebtHeavyRecovery BudgetStrategy = "debtHeavyRecovery"
	StrategyConservative      BudgetStrategy = "conservative"
	StrategyFamilyCentric     BudgetStrategy = "familyCentric"
	StrategyRiskControl       BudgetStrategy = "riskControl"
	StrategyBuilder           BudgetStrategy = "builder"
	StrategyBalanced          BudgetStrategy = "balanced"
)

// DailyAllocation is a per-day spending envelope for one category.
type DailyAllocation struct {
	Category    string  `json:"category" bson:"category"`
	DailyAmount float64 `json:"daily_amount" bson:"daily_amount"`
	Icon        string  `json:"icon" bson:"icon"`
	Description string  `json:"description" bson:"description"`
}

// MonthlyAllocation is a once-a-month spending envelope for one category.
type MonthlyAllocation struct {
	Category      string  `json:"category" bson:"category"`
	MonthlyAmount float64 `json:"monthly_amount" bson:"monthly_amount"`
	Icon          string  `json:"icon" bson:"icon"`
	Description   string  `json:"description" bson:"description"`
}

// Prescription is the generated monthly budget recommendation.
type Prescription struct {
	ID              string          `json:"id" bson:"_id"`
	UserID          string          `json:"user_id" bson:"user_id"`
	Month           string          `json:"month" bson:"month"`                         // YYYY-MM, the month the prescription applies to
	DataSourceMonth string          `json:"data_source_month" bson:"data_source_month"` // YYYY-MM, the month the allocations were derived from
	DataSourceReason string         `json:"data_source_reason" bson:"data_source_reason"`
	Strategy        BudgetStrategy  `json:"strategy" bson:"strategy"`
	LastUpdated     time.Time       `json:"last_updated" bson:"last_updated"`
	Confidence      ConfidenceLevel `json:"confidence" bson:"confidence"`
	DataCompleteness float64        `json:"data_completeness" bson:"data_completeness"` // 0-100
	DaysFilled       int            `json:"days_filled" bson:"days_filled"`
	TotalDaysInMonth int            `json:"total_days_in_month" bson:"total_days_in_month"`

	DailyAllocations   []DailyAllocation   `json:"daily_allocations" bson:"daily_allocations"`
	MonthlyAllocations []MonthlyAllocation `json:"monthly_allocations" bson:"monthly_allocations"`

	MonthlyNetIncome                float64 `json:"monthly_net_income" bson:"monthly_net_income"`
	TotalDailyBudget                float64 `json:"total_daily_budget" bson:"total_daily_budget"`
	TotalMonthlyBudget              float64 `json:"total_monthly_budget" bson:"total_monthly_budget"`
	TotalMonthlyBudgetIncludingDaily float64 `json:"total_monthly_budget_including_daily" bson:"total_monthly_budget_including_daily"`
	RemainingBudget                 float64 `json:"remaining_budget" bson:"remaining_budget"`
	ExceedsMonthlyNet               bool    `json:"exceeds_monthly_net" bson:"exceeds_monthly_net"`
	PreviousMonthSpending           float64 `json:"previous_month_spending" bson:"previous_month_spending"`
}
