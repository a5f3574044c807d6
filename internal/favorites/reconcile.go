package favorites

import (
	"context"
	"time"
)

// Reconcile asks the backend for the authoritative liked state and, on disagreement, overwrites
// the view's IsLiked and the cached set. The like count is never touched and failures are swallowed.
//
// It returns true when the view changed. Reconciliation is skipped when unauthenticated,
// closed, or while a toggle is pending. An answer is discarded when the liked state changed
// locally (a toggle or an event) while the check was in flight.
func (c *Controller) Reconcile(ctx context.Context) bool {
	if !c.authed() {
		return false
	}

	c.mu.Lock()
	skip := c.closed || c.state.IsLikeLoading
	gen := c.gen
	c.mu.Unlock()
	if skip {
		return false
	}

	status, err := c.backend.CheckFavorite(ctx, c.id)
	if err != nil || status == nil || !status.Success {
		c.logger.Debug("favorite reconciliation failed", "err", err)
		return false
	}

	c.mu.Lock()
	if c.closed || c.state.IsLikeLoading || c.gen != gen || c.state.IsLiked == status.IsFavorite {
		stale := c.gen != gen
		c.mu.Unlock()
		if stale {
			c.logger.Debug("stale favorite reconciliation discarded")
		}
		return false
	}
	c.state.IsLiked = status.IsFavorite
	state := c.state
	c.mu.Unlock()

	set := c.store.Read(ctx)
	set.Apply(c.id, status.IsFavorite)
	if err := c.store.Write(ctx, set); err != nil {
		c.logger.Debug("favorite cache write failed", "err", err)
	}

	c.logger.Debug("favorite reconciled", "liked", status.IsFavorite)
	c.changed(state)
	return true
}

// ScheduleReconcile runs [Controller.Reconcile] once after delay. The returned function cancels it;
// closing the controller cancels it as well.
func (c *Controller) ScheduleReconcile(ctx context.Context, delay time.Duration) (stop func()) {
	timer := time.AfterFunc(delay, func() { c.Reconcile(ctx) })

	c.mu.Lock()
	if c.reconcile != nil {
		c.reconcile.Stop()
	}
	c.reconcile = timer
	c.mu.Unlock()

	return func() { timer.Stop() }
}
