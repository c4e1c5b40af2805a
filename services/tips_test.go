package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-api/models"
)

func TestDailyTipThresholds(t *testing.T) {
	tips := NewComprehensiveBudgetingTipsService()

	cases := []struct {
		percent int
		want    string
	}{
		{120, "Budget fully used! Consider saving for tomorrow."},
		{100, "Budget fully used! Consider saving for tomorrow."},
		{95, "Budget almost used! Consider saving for tomorrow."},
		{75, "Watch your spending! You're at 75% of budget."},
		{60, "Halfway through your budget. Stay mindful of expenses."},
		{30, "Good spending pace! Keep tracking your expenses."},
		{10, "Great start! Every peso saved builds wealth."},
		{0, "Great start! Every peso saved builds wealth."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tips.DailyTip(tc.percent), "percent %d", tc.percent)
	}
}

func TestStrategyTipCoversEveryStrategy(t *testing.T) {
	tips := NewComprehensiveBudgetingTipsService()
	strategies := []models.BudgetStrategy{
		models.StrategyConservative,
		models.StrategyBalanced,
		models.StrategyFamilyCentric,
		models.StrategyDebtHeavyRecovery,
		models.StrategyRiskControl,
		models.StrategyBuilder,
	}
	seen := make(map[string]bool)
	for _, strategy := range strategies {
		tip := tips.StrategyTip(strategy)
		assert.NotEmpty(t, tip)
		seen[tip] = true
	}
	assert.Len(t, seen, 6, "each strategy gets its own tip")
}

func TestCategoryTipsFlagOverruns(t *testing.T) {
	tips := NewComprehensiveBudgetingTipsService()

	p := &models.Prescription{
		TotalDaysInMonth: 30,
		MonthlyAllocations: []models.MonthlyAllocation{
			{Category: "Rent", MonthlyAmount: 8000},
			{Category: "Internet", MonthlyAmount: 1500},
		},
		DailyAllocations: []models.DailyAllocation{
			{Category: "Food", DailyAmount: 100},
		},
	}
	totals := map[string]float64{
		"Rent":     8000, // at budget, not over
		"Internet": 2000, // over
		"Food":     3500, // over 100*30
	}

	got := tips.CategoryTips(p, totals)
	require.Len(t, got, 2)

	categories := []string{got[0].Category, got[1].Category}
	assert.Contains(t, categories, "Internet")
	assert.Contains(t, categories, "Food")
	for _, tip := range got {
		assert.Contains(t, tip.Message, "over budget")
		assert.Contains(t, tip.Message, "₱")
	}
}

func TestCategoryTipsUseTargetMonthLength(t *testing.T) {
	tips := NewComprehensiveBudgetingTipsService()

	// Allocations derived from a 28-day February but applied to a 31-day
	// July: the envelope runs for 31 days, so ₱3,000 against ₱100/day is
	// still within budget.
	p := &models.Prescription{
		Month:            "2025-07",
		TotalDaysInMonth: 28,
		DailyAllocations: []models.DailyAllocation{
			{Category: "Food", DailyAmount: 100},
		},
	}

	assert.Empty(t, tips.CategoryTips(p, map[string]float64{"Food": 3000}))

	got := tips.CategoryTips(p, map[string]float64{"Food": 3200})
	require.Len(t, got, 1)
	assert.Equal(t, "Food", got[0].Category)
}

func TestCategoryTipsNilPrescription(t *testing.T) {
	tips := NewComprehensiveBudgetingTipsService()
	assert.Nil(t, tips.CategoryTips(nil, map[string]float64{"Food": 100}))
}
