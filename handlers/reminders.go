package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/storage"
)

const defaultUpcomingLimit = 10

type ReminderHandler struct {
	Reminders storage.ReminderStore
	Cache     *services.DataCacheService
	Live      *LiveHandler
}

func (h *ReminderHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dueDate, repeat, ok := h.parseReminderFields(c, req.DueDate, req.Repeat)
	if !ok {
		return
	}

	now := time.Now().UTC()
	reminder := &models.Reminder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Notes:     req.Notes,
		Amount:    req.Amount,
		DueDate:   dueDate,
		Repeat:    repeat,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Reminders.Insert(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}

	h.Cache.InvalidateMonth(userID, dueDate.Format("2006-01"))
	h.Live.BroadcastUpdate(userID, "reminder_created")
	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.Reminders.GetByID(c.Request.Context(), userID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminder"})
		return
	}

	dueDate, repeat, ok := h.parseReminderFields(c, req.DueDate, req.Repeat)
	if !ok {
		return
	}

	oldMonth := reminder.DueDate.Format("2006-01")

	reminder.Title = req.Title
	reminder.Notes = req.Notes
	reminder.Amount = req.Amount
	reminder.DueDate = dueDate
	reminder.Repeat = repeat
	if req.Done != nil {
		reminder.Done = *req.Done
	}
	reminder.UpdatedAt = time.Now().UTC()

	if err := h.Reminders.Update(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reminder"})
		return
	}

	h.Cache.InvalidateMonth(userID, oldMonth)
	h.Cache.InvalidateMonth(userID, dueDate.Format("2006-01"))
	h.Live.BroadcastUpdate(userID, "reminder_updated")
	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	reminder, err := h.Reminders.GetByID(c.Request.Context(), userID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminder"})
		return
	}

	if err := h.Reminders.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}

	h.Cache.InvalidateMonth(userID, reminder.DueDate.Format("2006-01"))
	h.Live.BroadcastUpdate(userID, "reminder_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

// GetByMonth returns the reminders due in ?month=YYYY-MM (default: current).
func (h *ReminderHandler) GetByMonth(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	data, err := h.Cache.MonthData(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	reminders := data.Reminders
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	c.JSON(http.StatusOK, reminders)
}

// GetUpcoming returns the next due reminders, soonest first.
func (h *ReminderHandler) GetUpcoming(c *gin.Context) {
	userID := middleware.GetUserID(c)

	reminders, err := h.Reminders.Upcoming(c.Request.Context(), userID, time.Now().UTC(), defaultUpcomingLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminders"})
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *ReminderHandler) parseReminderFields(c *gin.Context, rawDue, rawRepeat string) (time.Time, models.RepeatInterval, bool) {
	dueDate, err := services.ParseTransactionDate(rawDue)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date (want YYYY-MM-DD or RFC3339)"})
		return time.Time{}, "", false
	}

	repeat := models.RepeatInterval(rawRepeat)
	if rawRepeat == "" {
		repeat = models.RepeatNone
	}
	if !repeat.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repeat interval"})
		return time.Time{}, "", false
	}

	return dueDate, repeat, true
}
