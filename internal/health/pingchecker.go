package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker tracks the availability of a HealthPinger (such as a KV
// engine) by pinging it on an interval.
type PingChecker struct {
	name    string
	pinger  HealthPinger
	healthy atomic.Int32
	timeout time.Duration
	log     zerolog.Logger
}

func NewPingChecker(name string, p HealthPinger, log zerolog.Logger) *PingChecker {
	return &PingChecker{name: name, pinger: p, timeout: 2 * time.Second, log: log}
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start pings immediately and then on every tick until ctx is cancelled.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.ping(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ping(ctx)
		}
	}
}

func (c *PingChecker) ping(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.HealthPing(pctx); err != nil {
		if c.healthy.Swap(0) == 1 {
			c.log.Error().Stack().Err(err).Str("component", c.name).Msg("health ping failed")
		}
		return
	}
	if c.healthy.Swap(1) == 0 {
		c.log.Info().Str("component", c.name).Msg("health ping ok")
	}
}
