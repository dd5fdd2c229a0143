package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
)

// OrderExpirer cancels pending orders that were never paid.
type OrderExpirer interface {
	ExpireStalePendingOrders(ctx context.Context, olderThan time.Duration) (int, error)
}

// OrderExpiryScheduler periodically cancels stale pending orders and
// releases their reserved stock.
type OrderExpiryScheduler struct {
	cron    *cron.Cron
	orders  OrderExpirer
	spec    string
	maxAge  time.Duration
	timeout time.Duration
}

func NewOrderExpiryScheduler(orders OrderExpirer, spec string, maxAge time.Duration) *OrderExpiryScheduler {
	return &OrderExpiryScheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		orders:  orders,
		spec:    spec,
		maxAge:  maxAge,
		timeout: time.Minute,
	}
}

// Start registers the expiry job and starts the cron loop.
func (s *OrderExpiryScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for pending order expiry", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order expiry scheduler started", map[string]interface{}{
		"spec":    s.spec,
		"max_age": s.maxAge.String(),
	})
	return nil
}

// RunOnce performs a single expiry sweep.
func (s *OrderExpiryScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.orders.ExpireStalePendingOrders(ctx, s.maxAge); err != nil {
		logger.Error("Scheduled pending order expiry failed", err)
	}
}

// Stop waits for a running sweep to finish.
func (s *OrderExpiryScheduler) Stop() {
	logger.Info("Stopping order expiry scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order expiry scheduler stopped")
}
