package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/storage"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

const (
	// How far back generation searches for a usable data source month.
	maxLookbackMonths = 6

	// A month needs at least this much day coverage to be preferred as a
	// data source outright.
	sufficientCompleteness = 50.0

	confidenceHighThreshold   = 80.0
	confidenceMediumThreshold = 50.0
)

// ErrInvalidMonth is returned for a month key that is not YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month key")

// BudgetPrescriptionService generates, refreshes and serves monthly budget
// prescriptions. Lookups are memoized; generation and incremental refresh
// are separate entry points and GetBudgetPrescription never generates.
type BudgetPrescriptionService struct {
	prescriptions storage.PrescriptionStore
	users         storage.UserStore
	transactions  *TransactionService

	mu   sync.RWMutex
	memo map[monthKey]*models.Prescription
}

func NewBudgetPrescriptionService(prescriptions storage.PrescriptionStore, users storage.UserStore, transactions *TransactionService) *BudgetPrescriptionService {
	return &BudgetPrescriptionService{
		prescriptions: prescriptions,
		users:         users,
		transactions:  transactions,
		memo:          make(map[monthKey]*models.Prescription),
	}
}

// GetBudgetPrescription returns the stored prescription for a month, or nil
// when none has been generated. Served from memory after the first lookup.
func (s *BudgetPrescriptionService) GetBudgetPrescription(ctx context.Context, userID, month string) (*models.Prescription, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, ErrInvalidMonth
	}

	key := monthKey{userID: userID, month: month}
	s.mu.RLock()
	cached, ok := s.memo[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	p, err := s.prescriptions.GetByMonth(ctx, userID, month)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memo[key] = p
	s.mu.Unlock()
	return p, nil
}

// SaveBudgetPrescription persists a prescription and refreshes the memo.
func (s *BudgetPrescriptionService) SaveBudgetPrescription(ctx context.Context, p *models.Prescription) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := s.prescriptions.Upsert(ctx, p); err != nil {
		return err
	}
	s.mu.Lock()
	s.memo[monthKey{userID: p.UserID, month: p.Month}] = p
	s.mu.Unlock()
	return nil
}

// GenerateBudgetPrescription computes a fresh prescription for targetMonth
// from historical transaction data. Returns nil (without error) when no month
// in the lookback window has any spending data: the caller shows the
// "no previous data" state.
func (s *BudgetPrescriptionService) GenerateBudgetPrescription(ctx context.Context, userID, targetMonth string) (*models.Prescription, error) {
	target, err := time.Parse("2006-01", targetMonth)
	if err != nil {
		return nil, ErrInvalidMonth
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	source, err := s.selectDataSourceMonth(ctx, userID, target)
	if err != nil {
		return nil, err
	}
	if source == nil {
		utils.LogBudgetAction("No usable data source month", userID, targetMonth)
		return nil, nil
	}

	categoryTotals, err := s.transactions.GetExpenseCategoryTotals(ctx, userID, source.month)
	if err != nil {
		return nil, err
	}
	debtPayments, err := s.transactions.GetTotalByType(ctx, userID, source.month, models.TypeDebtPayment)
	if err != nil {
		return nil, err
	}
	savings, err := s.transactions.GetTotalByType(ctx, userID, source.month, models.TypeSavings)
	if err != nil {
		return nil, err
	}
	previousSpending, err := s.transactions.MonthSpending(ctx, userID, target.AddDate(0, -1, 0).Format("2006-01"))
	if err != nil {
		return nil, err
	}

	strategy := selectStrategy(user, source.totalSpending, debtPayments, savings)
	profile := strategyProfiles[strategy]

	daysInTarget := daysInMonth(target)
	plan := buildAllocations(categoryTotals, source.dayCounts, user.MonthlyNet, profile.SpendShare, daysInTarget)

	spentSoFar, err := s.transactions.MonthSpending(ctx, userID, targetMonth)
	if err != nil {
		return nil, err
	}

	p := &models.Prescription{
		ID:               uuid.New().String(),
		UserID:           userID,
		Month:            targetMonth,
		DataSourceMonth:  source.month,
		DataSourceReason: source.reason,
		Strategy:         strategy,
		LastUpdated:      time.Now().UTC(),
		Confidence:       confidenceFor(source.completeness),
		DataCompleteness: source.completeness,
		DaysFilled:       source.daysFilled,
		TotalDaysInMonth: source.totalDays,

		DailyAllocations:   plan.daily,
		MonthlyAllocations: plan.monthly,

		MonthlyNetIncome:                 user.MonthlyNet,
		TotalDailyBudget:                 plan.totalDaily,
		TotalMonthlyBudget:               plan.totalMonthly,
		TotalMonthlyBudgetIncludingDaily: plan.totalIncludingDaily,
		RemainingBudget:                  utils.RoundCentavos(decimal.NewFromFloat(plan.totalIncludingDaily).Sub(decimal.NewFromFloat(spentSoFar))),
		ExceedsMonthlyNet:                plan.exceedsNet,
		PreviousMonthSpending:            previousSpending,
	}

	utils.LogBudgetAction(fmt.Sprintf("Generated prescription (strategy=%s confidence=%s source=%s)", strategy, p.Confidence, source.month), userID, targetMonth)
	return p, nil
}

// UpdatePrescriptionWithCurrentData refreshes the month-to-date figures of an
// existing prescription without regenerating its allocations: remaining
// budget and last-updated move, the data source and allocation lists do not.
func (s *BudgetPrescriptionService) UpdatePrescriptionWithCurrentData(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {
	if p == nil {
		return nil, nil
	}

	spentSoFar, err := s.transactions.MonthSpending(ctx, p.UserID, p.Month)
	if err != nil {
		return nil, err
	}
	previousSpending, err := s.transactions.MonthSpending(ctx, p.UserID, previousMonth(p.Month))
	if err != nil {
		return nil, err
	}

	refreshed := *p
	refreshed.RemainingBudget = utils.RoundCentavos(
		decimal.NewFromFloat(p.TotalMonthlyBudgetIncludingDaily).Sub(decimal.NewFromFloat(spentSoFar)))
	refreshed.PreviousMonthSpending = previousSpending
	refreshed.LastUpdated = time.Now().UTC()

	return &refreshed, nil
}

// Invalidate drops the memoized prescription for one user-month.
func (s *BudgetPrescriptionService) Invalidate(userID, month string) {
	s.mu.Lock()
	delete(s.memo, monthKey{userID: userID, month: month})
	s.mu.Unlock()
}

// InvalidateUser drops every memoized prescription for a user. Call when the
// account or its documents are removed.
func (s *BudgetPrescriptionService) InvalidateUser(userID string) {
	s.mu.Lock()
	for key := range s.memo {
		if key.userID == userID {
			delete(s.memo, key)
		}
	}
	s.mu.Unlock()
}

// ============================================================================
// DATA SOURCE MONTH SELECTION
// ============================================================================

type sourceMonth struct {
	month         string
	reason        string
	completeness  float64
	daysFilled    int
	totalDays     int
	totalSpending float64
	dayCounts     map[string]int // category -> distinct days with spending
}

// selectDataSourceMonth walks back from the month before target and picks the
// first month with sufficient day coverage. When no month clears the bar, the
// best-covered month with any data is carried forward; with no data at all it
// returns nil.
func (s *BudgetPrescriptionService) selectDataSourceMonth(ctx context.Context, userID string, target time.Time) (*sourceMonth, error) {
	var best *sourceMonth

	for back := 1; back <= maxLookbackMonths; back++ {
		monthTime := target.AddDate(0, -back, 0)
		month := monthTime.Format("2006-01")

		txns, err := s.transactions.GetTransactionsByMonth(ctx, userID, month)
		if err != nil {
			return nil, err
		}

		candidate := summarizeMonth(month, monthTime, txns)
		if candidate.daysFilled == 0 {
			continue
		}

		if candidate.completeness >= sufficientCompleteness {
			if back == 1 {
				candidate.reason = fmt.Sprintf("Based on %s, your most recent complete month of spending data", monthTime.Format("January 2006"))
			} else {
				candidate.reason = fmt.Sprintf("Carried forward from %s, the most recent month with sufficient spending data", monthTime.Format("January 2006"))
			}
			return candidate, nil
		}

		if best == nil || candidate.completeness > best.completeness {
			best = candidate
		}
	}

	if best != nil {
		t, _ := time.Parse("2006-01", best.month)
		best.reason = fmt.Sprintf("Based on %s, the best available month (only %.0f%% of days recorded)", t.Format("January 2006"), best.completeness)
	}
	return best, nil
}

func summarizeMonth(month string, monthTime time.Time, txns []models.Transaction) *sourceMonth {
	days := make(map[string]bool)
	dayCounts := make(map[string]map[string]bool)
	total := decimal.Zero

	for _, txn := range txns {
		if !txn.Type.IsSpending() {
			continue
		}
		day := txn.Date.UTC().Format("2006-01-02")
		days[day] = true
		if dayCounts[txn.Category] == nil {
			dayCounts[txn.Category] = make(map[string]bool)
		}
		dayCounts[txn.Category][day] = true
		total = total.Add(decimal.NewFromFloat(txn.Amount))
	}

	totalDays := daysInMonth(monthTime)
	counts := make(map[string]int, len(dayCounts))
	for category, categoryDays := range dayCounts {
		counts[category] = len(categoryDays)
	}

	return &sourceMonth{
		month:         month,
		completeness:  float64(len(days)) / float64(totalDays) * 100,
		daysFilled:    len(days),
		totalDays:     totalDays,
		totalSpending: utils.RoundCentavos(total),
		dayCounts:     counts,
	}
}

func confidenceFor(completeness float64) models.ConfidenceLevel {
	switch {
	case completeness >= confidenceHighThreshold:
		return models.ConfidenceHigh
	case completeness >= confidenceMediumThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// ============================================================================
// STRATEGY SELECTION
// ============================================================================

type strategyProfile struct {
	// SpendShare is the fraction of monthly net income the prescription may
	// allocate to spending.
	SpendShare  float64
	Description string
}

var strategyProfiles = map[models.BudgetStrategy]strategyProfile{
	models.StrategyDebtHeavyRecovery: {SpendShare: 0.55, Description: "Tight spending to free up cash for debt payments"},
	models.StrategyConservative:      {SpendShare: 0.60, Description: "Reduced spending to rebuild breathing room"},
	models.StrategyRiskControl:       {SpendShare: 0.65, Description: "Controlled spending while the emergency fund recovers"},
	models.StrategyBuilder:           {SpendShare: 0.65, Description: "Keeps your strong savings habit funded"},
	models.StrategyBalanced:          {SpendShare: 0.70, Description: "Even split between spending, savings and goals"},
	models.StrategyFamilyCentric:     {SpendShare: 0.75, Description: "More room for household and family essentials"},
}

// selectStrategy derives the allocation policy from the user's budget profile
// and the source month's actuals. Order matters: recovery situations override
// lifestyle fits.
func selectStrategy(user *models.User, spending, debtPayments, savings float64) models.BudgetStrategy {
	net := user.MonthlyNet
	if net <= 0 {
		return models.StrategyConservative
	}

	if debtPayments/net > 0.30 {
		return models.StrategyDebtHeavyRecovery
	}
	if user.EmergencyFundAmount < user.MaxMonthlyExpense/2 && user.MaxMonthlyExpense > 0 {
		return models.StrategyRiskControl
	}
	if spending/net > 0.90 {
		return models.StrategyConservative
	}
	if user.NumberOfChildren > 0 {
		return models.StrategyFamilyCentric
	}
	if savings/net >= 0.20 {
		return models.StrategyBuilder
	}
	return models.StrategyBalanced
}

// ============================================================================
// ALLOCATION BUILDING
// ============================================================================

// Categories that are budgeted as a per-day envelope regardless of observed
// frequency. Everything else defaults to a monthly envelope unless it shows
// up on many distinct days in the source month.
var dailyCategories = map[string]bool{
	"Food":           true,
	"Groceries":      true,
	"Transportation": true,
	"Snacks":         true,
	"Miscellaneous":  true,
}

// A category seen on this many distinct days is treated as daily spending
// even if it is not in the built-in set.
const dailyFrequencyThreshold = 8

var categoryIcons = map[string]string{
	"Food":           "restaurant",
	"Groceries":      "shopping_cart",
	"Transportation": "directions_bus",
	"Snacks":         "local_cafe",
	"Rent":           "home",
	"Utilities":      "bolt",
	"Internet":       "wifi",
	"Insurance":      "shield",
	"Education":      "school",
	"Healthcare":     "local_hospital",
	"Entertainment":  "movie",
	"Subscriptions":  "subscriptions",
	"Shopping":       "shopping_bag",
	"Miscellaneous":  "category",
}

func iconFor(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return "category"
}

type allocationPlan struct {
	daily               []models.DailyAllocation
	monthly             []models.MonthlyAllocation
	totalDaily          float64
	totalMonthly        float64
	totalIncludingDaily float64
	exceedsNet          bool
}

// buildAllocations turns source-month category totals into daily and monthly
// envelopes, scaled down to fit the strategy's spendable share of net income.
// Allocation sums are exact: the totals are computed from the rounded
// per-category amounts, never the other way around.
func buildAllocations(categoryTotals map[string]float64, dayCounts map[string]int, monthlyNet, spendShare float64, daysInTarget int) allocationPlan {
	categories := make([]string, 0, len(categoryTotals))
	observedTotal := decimal.Zero
	for category, amount := range categoryTotals {
		categories = append(categories, category)
		observedTotal = observedTotal.Add(decimal.NewFromFloat(amount))
	}
	sort.Strings(categories)

	spendable := decimal.NewFromFloat(monthlyNet).Mul(decimal.NewFromFloat(spendShare))
	scale := decimal.NewFromInt(1)
	if monthlyNet > 0 && observedTotal.GreaterThan(spendable) && observedTotal.IsPositive() {
		scale = spendable.Div(observedTotal)
	}

	plan := allocationPlan{
		exceedsNet: monthlyNet > 0 && observedTotal.GreaterThan(decimal.NewFromFloat(monthlyNet)),
	}

	days := decimal.NewFromInt(int64(daysInTarget))
	totalDaily := decimal.Zero
	totalMonthly := decimal.Zero

	for _, category := range categories {
		budgeted := decimal.NewFromFloat(categoryTotals[category]).Mul(scale)

		if dailyCategories[category] || dayCounts[category] >= dailyFrequencyThreshold {
			perDay := budgeted.Div(days).Round(2)
			plan.daily = append(plan.daily, models.DailyAllocation{
				Category:    category,
				DailyAmount: utils.RoundCentavos(perDay),
				Icon:        iconFor(category),
				Description: fmt.Sprintf("Up to %s per day for %s", utils.FormatPeso(utils.RoundCentavos(perDay)), category),
			})
			totalDaily = totalDaily.Add(perDay)
		} else {
			monthlyAmount := budgeted.Round(2)
			plan.monthly = append(plan.monthly, models.MonthlyAllocation{
				Category:      category,
				MonthlyAmount: utils.RoundCentavos(monthlyAmount),
				Icon:          iconFor(category),
				Description:   fmt.Sprintf("%s set aside this month for %s", utils.FormatPeso(utils.RoundCentavos(monthlyAmount)), category),
			})
			totalMonthly = totalMonthly.Add(monthlyAmount)
		}
	}

	plan.totalDaily = utils.RoundCentavos(totalDaily)
	plan.totalMonthly = utils.RoundCentavos(totalMonthly)
	plan.totalIncludingDaily = utils.RoundCentavos(totalMonthly.Add(totalDaily.Mul(days)))
	return plan
}

// ============================================================================
// HELPERS
// ============================================================================

func daysInMonth(t time.Time) int {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

func previousMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.AddDate(0, -1, 0).Format("2006-01")
}
