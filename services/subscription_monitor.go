package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

// SubscriptionMonitor periodically deactivates restaurants whose
// subscription end date has passed.
type SubscriptionMonitor struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSubscriptionMonitor(db *gorm.DB, interval time.Duration) *SubscriptionMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionMonitor{db: db, interval: interval, now: time.Now}
}

// Start runs one sweep immediately and then one per interval until Stop.
func (m *SubscriptionMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
	utils.InfoLogger.Printf("Subscription monitor started (interval=%s)", m.interval)
}

func (m *SubscriptionMonitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	utils.InfoLogger.Println("Subscription monitor stopped")
}

func (m *SubscriptionMonitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.ExpireDue(ctx, m.now()); err != nil {
			utils.ErrorLogger.Errorf("subscription sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ExpireDue marks every active restaurant whose end date is before now as
// inactive and returns how many changed.
func (m *SubscriptionMonitor) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := m.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("subscription_status = ? AND subscription_end_date IS NOT NULL AND subscription_end_date < ?", models.SubscriptionActive, now).
		Updates(map[string]interface{}{"subscription_status": models.SubscriptionInactive, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Deactivated %d restaurants with expired subscriptions", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
