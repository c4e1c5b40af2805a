package models

import "time"

// RepeatInterval controls how a reminder recurs after its due date.
type RepeatInterval string

const (
	RepeatNone    RepeatInterval = "none"
	RepeatDaily   RepeatInterval = "daily"
	RepeatWeekly  RepeatInterval = "weekly"
	RepeatMonthly RepeatInterval = "monthly"
)

func (r RepeatInterval) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Reminder is a scheduled payment or budgeting nudge shown on the calendar.
type Reminder struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"user_id" bson:"user_id"`
	Title     string         `json:"title" bson:"title"`
	Notes     string         `json:"notes,omitempty" bson:"notes,omitempty"`
	Amount    float64        `json:"amount,omitempty" bson:"amount,omitempty"`
	DueDate   time.Time      `json:"due_date" bson:"due_date"`
	Repeat    RepeatInterval `json:"repeat" bson:"repeat"`
	Done      bool           `json:"done" bson:"done"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

type CreateReminderRequest struct {
	Title   string  `json:"title" binding:"required"`
	Notes   string  `json:"notes"`
	Amount  float64 `json:"amount" binding:"gte=0"`
	DueDate string  `json:"due_date" binding:"required"`
	Repeat  string  `json:"repeat"`
}

type UpdateReminderRequest struct {
	Title   string  `json:"title" binding:"required"`
	Notes   string  `json:"notes"`
	Amount  float64 `json:"amount" binding:"gte=0"`
	DueDate string  `json:"due_date" binding:"required"`
	Repeat  string  `json:"repeat"`
	Done    *bool   `json:"done"`
}
