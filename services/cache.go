package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/storage"
)

// MonthData is the memoized view of one user-month: the raw transactions,
// the per-day spending totals derived from them, and the month's reminders.
type MonthData struct {
	Month         string               `json:"month"`
	Transactions  []models.Transaction `json:"transactions"`
	DailySpending map[string]float64   `json:"daily_spending"` // YYYY-MM-DD -> total
	Reminders     []models.Reminder    `json:"reminders"`
	LoadedAt      time.Time            `json:"loaded_at"`
}

type monthKey struct {
	userID string
	month  string
}

// DataCacheService memoizes per-month transaction aggregates and reminders.
// Mutations must invalidate the affected month explicitly; navigation handlers
// preload adjacent months so month switches hit warm entries.
type DataCacheService struct {
	mu      sync.RWMutex
	entries map[monthKey]*MonthData
	ttl     time.Duration

	transactions storage.TransactionStore
	reminders    storage.ReminderStore
}

// NewDataCacheService creates a cache over the given stores. Entries older
// than ttl are evicted by the sweeper.
func NewDataCacheService(transactions storage.TransactionStore, reminders storage.ReminderStore, ttl time.Duration) *DataCacheService {
	return &DataCacheService{
		entries:      make(map[monthKey]*MonthData),
		ttl:          ttl,
		transactions: transactions,
		reminders:    reminders,
	}
}

// MonthData returns the cached view for a user-month, loading it from the
// stores on a miss. Callers must not mutate the returned value.
func (c *DataCacheService) MonthData(ctx context.Context, userID, month string) (*MonthData, error) {
	key := monthKey{userID: userID, month: month}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.LoadedAt) < c.ttl {
		return entry, nil
	}

	loaded, err := c.load(ctx, userID, month)
	if err != nil {
		// Degrade to the stale entry rather than failing the caller.
		if ok {
			log.Printf("[Cache] Load failed for %s %s, serving stale entry: %v", month, userID, err)
			return entry, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = loaded
	c.mu.Unlock()

	return loaded, nil
}

// DailySpending returns the per-day spending totals for a user-month.
func (c *DataCacheService) DailySpending(ctx context.Context, userID, month string) (map[string]float64, error) {
	data, err := c.MonthData(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return data.DailySpending, nil
}

// InvalidateMonth drops the cached entry for one user-month. Call after any
// transaction or reminder mutation dated in that month.
func (c *DataCacheService) InvalidateMonth(userID, month string) {
	c.mu.Lock()
	delete(c.entries, monthKey{userID: userID, month: month})
	c.mu.Unlock()
}

// InvalidateUser drops every cached month for a user.
func (c *DataCacheService) InvalidateUser(userID string) {
	c.mu.Lock()
	for key := range c.entries {
		if key.userID == userID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// PreloadAdjacentMonths warms the previous and next month in the background.
// Triggered by calendar navigation.
func (c *DataCacheService) PreloadAdjacentMonths(userID, month string) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return
	}
	for _, adjacent := range []string{
		t.AddDate(0, -1, 0).Format("2006-01"),
		t.AddDate(0, 1, 0).Format("2006-01"),
	} {
		go func(m string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if _, err := c.MonthData(ctx, userID, m); err != nil {
				log.Printf("[Cache] Preload failed for %s: %v", m, err)
			}
		}(adjacent)
	}
}

// StartSweeper evicts expired entries on a fixed interval until ctx is done.
func (c *DataCacheService) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := c.evictExpired()
			if evicted > 0 {
				log.Printf("🧹 Evicted %d expired cache entries", evicted)
			}
		}
	}
}

func (c *DataCacheService) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if time.Since(entry.LoadedAt) >= c.ttl {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

func (c *DataCacheService) load(ctx context.Context, userID, month string) (*MonthData, error) {
	txns, err := c.transactions.ByMonth(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	reminders, err := c.reminders.ByMonth(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	return &MonthData{
		Month:         month,
		Transactions:  txns,
		DailySpending: dailySpendingTotals(txns),
		Reminders:     reminders,
		LoadedAt:      time.Now(),
	}, nil
}

// dailySpendingTotals sums spending-type transactions per calendar day.
func dailySpendingTotals(txns []models.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, txn := range txns {
		if !txn.Type.IsSpending() {
			continue
		}
		day := txn.Date.UTC().Format("2006-01-02")
		totals[day] += txn.Amount
	}
	return totals
}
