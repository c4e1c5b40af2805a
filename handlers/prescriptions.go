package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

type PrescriptionHandler struct {
	Prescriptions *services.BudgetPrescriptionService
	Tips          *services.ComprehensiveBudgetingTipsService
	Live          *LiveHandler
}

// Get returns the stored prescription for ?month=YYYY-MM. It never generates;
// a miss is a 404 so the client can decide whether to request generation.
func (h *PrescriptionHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	p, err := h.Prescriptions.GetBudgetPrescription(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No prescription for this month"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prescription": p,
		"strategy_tip": h.Tips.StrategyTip(p.Strategy),
	})
}

// Generate builds a fresh prescription from historical data and stores it.
func (h *PrescriptionHandler) Generate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	p, err := h.Prescriptions.GenerateBudgetPrescription(c.Request.Context(), userID, month)
	if err != nil {
		utils.SafeError("[Prescription] generate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate prescription"})
		return
	}
	if p == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Not enough transaction history to generate a prescription",
		})
		return
	}

	if err := h.Prescriptions.SaveBudgetPrescription(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save prescription"})
		return
	}

	utils.LogBudgetAction("PrescriptionGenerated", userID, month)
	h.Live.BroadcastUpdate(userID, "prescription_updated")

	c.JSON(http.StatusCreated, gin.H{
		"prescription": p,
		"strategy_tip": h.Tips.StrategyTip(p.Strategy),
	})
}

// Refresh re-derives the spent-so-far figures on the stored prescription
// without regenerating allocations.
func (h *PrescriptionHandler) Refresh(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	p, err := h.Prescriptions.GetBudgetPrescription(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No prescription for this month"})
		return
	}

	updated, err := h.Prescriptions.UpdatePrescriptionWithCurrentData(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh prescription"})
		return
	}

	if err := h.Prescriptions.SaveBudgetPrescription(c.Request.Context(), updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save prescription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prescription": updated})
}

// Save stores a client-edited prescription as-is. The client owns manual
// allocation tweaks; the server only stamps ownership and timestamps.
func (h *PrescriptionHandler) Save(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var p models.Prescription
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month is required"})
		return
	}

	p.UserID = userID
	p.LastUpdated = time.Now().UTC()

	if err := h.Prescriptions.SaveBudgetPrescription(c.Request.Context(), &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save prescription"})
		return
	}

	utils.LogBudgetAction("PrescriptionSaved", userID, p.Month)
	h.Live.BroadcastUpdate(userID, "prescription_updated")
	c.JSON(http.StatusOK, gin.H{"prescription": p})
}
