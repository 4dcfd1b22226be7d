// Package workers contains background workers for Polarbid.
package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polarbid/polarbid/internal/shell/store"
)

// CloserConfig configures the lot closer worker.
type CloserConfig struct {
	// Interval is the time between closing cycles.
	// Default: 60 seconds.
	Interval time.Duration

	// Now is the clock used for deciding which lots have ended.
	// Default: time.Now.
	Now func() time.Time
}

// DefaultCloserConfig returns the default configuration.
func DefaultCloserConfig() CloserConfig {
	return CloserConfig{
		Interval: 60 * time.Second,
		Now:      time.Now,
	}
}

// Closer periodically assigns winners to ended lots. A lot whose end
// time has passed gets the author of its highest bid as winner; a lot
// that ended without bids stays winnerless and is simply closed for
// bidding by its end time.
type Closer struct {
	store  store.Store
	config CloserConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCloser creates a new lot closer worker.
func NewCloser(s store.Store, config CloserConfig, logger *slog.Logger) *Closer {
	if config.Interval == 0 {
		config.Interval = 60 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Closer{
		store:  s,
		config: config,
		logger: logger.With("component", "lot_closer"),
	}
}

// Start begins the closer background goroutine.
func (c *Closer) Start() {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.wg.Add(1)
	go c.run()

	c.logger.Info("lot closer started", "interval", c.config.Interval)
}

// Stop gracefully stops the closer. It waits for an in-progress cycle
// to complete.
func (c *Closer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("lot closer stopped")
}

// run is the main loop that runs closing cycles periodically.
func (c *Closer) run() {
	defer c.wg.Done()

	// Run immediately on start
	c.RunOnce(c.ctx)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(c.ctx)
		}
	}
}

// RunOnce executes a single closing cycle: it assigns winners for every
// lot that ended with bids and has no winner yet. Each lot is settled
// in its own transaction so one bad row does not block the rest.
func (c *Closer) RunOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, c.config.Interval)
	defer cancel()

	now := c.config.Now()
	lots, err := c.store.ListEndedLotsWithoutWinner(ctx, now)
	if err != nil {
		c.logger.Error("failed to list ended lots", "error", err)
		return
	}
	if len(lots) == 0 {
		return
	}

	c.logger.Debug("starting closing cycle", "lot_count", len(lots))

	var settled int
	for i := range lots {
		lot := &lots[i]
		if err := c.settleLot(ctx, lot.ID); err != nil {
			c.logger.Error("failed to settle lot", "lot_id", lot.ID, "error", err)
			continue
		}
		settled++
	}

	c.logger.Info("completed closing cycle", "lot_count", len(lots), "settled", settled)
}

// settleLot assigns the highest bidder as winner of a single lot. A lot
// without bids is left as-is.
func (c *Closer) settleLot(ctx context.Context, lotID int64) error {
	return c.store.WithTx(ctx, func(tx store.Store) error {
		bid, err := tx.HighestBid(ctx, lotID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.SetLotWinner(ctx, lotID, bid.UserID)
	})
}
