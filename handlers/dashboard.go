package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

// defaultMonthlyBudget is shown to brand-new accounts that have no
// prescription yet.
const defaultMonthlyBudget = 500.0

type DashboardHandler struct {
	Transactions  *services.TransactionService
	Prescriptions *services.BudgetPrescriptionService
	Tips          *services.ComprehensiveBudgetingTipsService
	Cache         *services.DataCacheService
}

// GetSummary returns the home-screen / widget payload for one month: budget,
// expenses, remaining and percentage, peso-formatted, plus a daily tip.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	expenses, err := h.Transactions.MonthSpending(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	budget := defaultMonthlyBudget
	p, err := h.Prescriptions.GetBudgetPrescription(c.Request.Context(), userID, month)
	if err == nil && p != nil {
		budget = p.TotalMonthlyBudgetIncludingDaily
	}

	remaining := budget - expenses
	percentage := spendingPercentage(expenses, budget)

	c.JSON(http.StatusOK, gin.H{
		"month":      month,
		"budget":     budget,
		"expenses":   expenses,
		"remaining":  remaining,
		"percentage": percentage,
		"formatted": gin.H{
			"budget":    utils.FormatPesoCompact(budget),
			"expenses":  utils.FormatPesoCompact(expenses),
			"remaining": utils.FormatPesoCompact(remaining),
		},
		"daily_tip": h.Tips.DailyTip(percentage),
	})
}

// spendingPercentage reports expenses as a whole-number percentage of budget,
// capped at 100 so an overrun month still reads as a full bar.
func spendingPercentage(expenses, budget float64) int {
	if budget <= 0 {
		return 0
	}
	percentage := int(expenses / budget * 100)
	if percentage > 100 {
		percentage = 100
	}
	return percentage
}

// GetCalendar returns the per-day spending map for one month and warms the
// cache for the months either side, since calendars are swiped through.
func (h *DashboardHandler) GetCalendar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	daily, err := h.Cache.DailySpending(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	h.Cache.PreloadAdjacentMonths(userID, month)

	c.JSON(http.StatusOK, gin.H{
		"month":          month,
		"daily_spending": daily,
	})
}

// GetInsights returns category overrun tips against the stored prescription.
func (h *DashboardHandler) GetInsights(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	p, err := h.Prescriptions.GetBudgetPrescription(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"month": month, "tips": []services.Tip{}})
		return
	}

	totals, err := h.Transactions.GetExpenseCategoryTotals(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute category totals"})
		return
	}

	tips := h.Tips.CategoryTips(p, totals)
	if tips == nil {
		tips = []services.Tip{}
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "tips": tips})
}
