package app

import (
	"context"
	"time"

	"github.com/okian/pulseboard/pkg/logger"
)

// Run starts the session, runs a cycle immediately and then one on every
// tick of the refresh period until ctx is done or the controller navigated
// away. Cycles are not serialized: a slow cycle may overlap the next one.
// Run returns after in-flight cycles finish.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	c.logger.Info(ctx, "dashboard started",
		logger.String("user", c.cred.Username),
		logger.Duration("refresh_interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer c.cycles.Wait()

	c.spawnCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "dashboard stopping")
			return nil
		case <-c.gone:
			return nil
		case <-ticker.C:
			c.spawnCycle(ctx)
		}
	}
}

func (c *Controller) spawnCycle(ctx context.Context) {
	c.cycles.Add(1)
	go func() {
		defer c.cycles.Done()
		c.RunCycle(ctx)
	}()
}
