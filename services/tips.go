package services

import (
	"fmt"
	"time"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

// Tip is a single budgeting nudge shown on the dashboard.
type Tip struct {
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// ComprehensiveBudgetingTipsService produces rule-based budgeting tips from
// the spending pace and the prescription's category envelopes.
type ComprehensiveBudgetingTipsService struct{}

func NewComprehensiveBudgetingTipsService() *ComprehensiveBudgetingTipsService {
	return &ComprehensiveBudgetingTipsService{}
}

// DailyTip returns the headline tip for the current spending percentage.
func (s *ComprehensiveBudgetingTipsService) DailyTip(percentSpent int) string {
	switch {
	case percentSpent >= 100:
		return "Budget fully used! Consider saving for tomorrow."
	case percentSpent >= 90:
		return "Budget almost used! Consider saving for tomorrow."
	case percentSpent >= 70:
		return fmt.Sprintf("Watch your spending! You're at %d%% of budget.", percentSpent)
	case percentSpent >= 50:
		return "Halfway through your budget. Stay mindful of expenses."
	case percentSpent >= 25:
		return "Good spending pace! Keep tracking your expenses."
	default:
		return "Great start! Every peso saved builds wealth."
	}
}

// StrategyTip explains what the active budget strategy is optimizing for.
func (s *ComprehensiveBudgetingTipsService) StrategyTip(strategy models.BudgetStrategy) string {
	switch strategy {
	case models.StrategyDebtHeavyRecovery:
		return "Debt payments above 30% of income. Every extra peso toward debt saves interest."
	case models.StrategyConservative:
		return "Spending is close to your income. Small daily cuts add up fast."
	case models.StrategyFamilyCentric:
		return "Family essentials come first. Plan school and household costs ahead of time."
	case models.StrategyRiskControl:
		return "Your emergency fund is thin. Aim for at least half a month of expenses saved."
	case models.StrategyBuilder:
		return "Strong savings habit! Consider setting a target for your next goal."
	default:
		return "Balanced plan. Review your categories monthly to stay on track."
	}
}

// CategoryTips flags categories whose month-to-date spending has overrun the
// prescription's envelope.
func (s *ComprehensiveBudgetingTipsService) CategoryTips(p *models.Prescription, categoryTotals map[string]float64) []Tip {
	if p == nil {
		return nil
	}

	var tips []Tip
	for _, alloc := range p.MonthlyAllocations {
		spent := categoryTotals[alloc.Category]
		if alloc.MonthlyAmount > 0 && spent > alloc.MonthlyAmount {
			tips = append(tips, Tip{
				Category: alloc.Category,
				Message: fmt.Sprintf("%s is over budget: %s spent of %s planned.",
					alloc.Category, utils.FormatPeso(spent), utils.FormatPeso(alloc.MonthlyAmount)),
			})
		}
	}

	// Daily envelopes run for the prescription's own month. TotalDaysInMonth
	// describes the data source month and can differ in length.
	days := p.TotalDaysInMonth
	if t, err := time.Parse("2006-01", p.Month); err == nil {
		days = daysInMonth(t)
	}

	monthBudget := make(map[string]float64, len(p.DailyAllocations))
	for _, alloc := range p.DailyAllocations {
		monthBudget[alloc.Category] = alloc.DailyAmount * float64(days)
	}
	for category, budget := range monthBudget {
		spent := categoryTotals[category]
		if budget > 0 && spent > budget {
			tips = append(tips, Tip{
				Category: category,
				Message: fmt.Sprintf("%s is over budget: %s spent of %s planned.",
					category, utils.FormatPeso(spent), utils.FormatPeso(budget)),
			})
		}
	}

	return tips
}
