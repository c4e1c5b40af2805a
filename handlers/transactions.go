package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type TransactionHandler struct {
	Transactions *services.TransactionService
	Live         *LiveHandler
}

func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.Transactions.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err, "Failed to create transaction")
		return
	}

	h.Live.BroadcastUpdate(userID, "transaction_created")
	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.Transactions.Update(c.Request.Context(), userID, id, req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if err != nil {
		h.writeServiceError(c, err, "Failed to update transaction")
		return
	}

	h.Live.BroadcastUpdate(userID, "transaction_updated")
	c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	err := h.Transactions.Delete(c.Request.Context(), userID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	h.Live.BroadcastUpdate(userID, "transaction_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetAll returns every transaction, newest first.
func (h *TransactionHandler) GetAll(c *gin.Context) {
	userID := middleware.GetUserID(c)

	txns, err := h.Transactions.GetAllTransactions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

// GetByMonth returns the transactions for ?month=YYYY-MM (default: current).
func (h *TransactionHandler) GetByMonth(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	txns, err := h.Transactions.GetTransactionsByMonth(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

// GetByDateRange returns transactions between ?from and ?to (inclusive from,
// exclusive to), both YYYY-MM-DD.
func (h *TransactionHandler) GetByDateRange(c *gin.Context) {
	userID := middleware.GetUserID(c)

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date (want YYYY-MM-DD)"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date (want YYYY-MM-DD)"})
		return
	}

	txns, err := h.Transactions.GetTransactionsByDateRange(c.Request.Context(), userID, from, to.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

// GetCategoryTotals returns per-category spending totals for one month.
func (h *TransactionHandler) GetCategoryTotals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	totals, err := h.Transactions.GetExpenseCategoryTotals(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "totals": totals})
}

// GetTotals returns the per-type totals plus income-with-debt for one month.
func (h *TransactionHandler) GetTotals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	totals := make(map[string]float64, len(models.AllTransactionTypes))
	for _, txnType := range models.AllTransactionTypes {
		total, err := h.Transactions.GetTotalByType(c.Request.Context(), userID, month, txnType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		totals[string(txnType)] = total
	}

	incomeWithDebt, err := h.Transactions.GetTotalIncomeWithDebt(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute totals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":            month,
		"totals":           totals,
		"income_with_debt": incomeWithDebt,
	})
}

func (h *TransactionHandler) writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidTransactionType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction type"})
	case errors.Is(err, services.ErrEmergencyFundExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Withdrawal exceeds emergency fund balance"})
	case errors.Is(err, services.ErrSavingsExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Withdrawal exceeds savings balance"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
