package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/flavioheleno/wxpanel/weather"
	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider so it is queried at most once per interval.
type RateLimited struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimited allows one request every interval, with bursts of burst.
func NewRateLimited(p Provider, every time.Duration, burst int) *RateLimited {
	return &RateLimited{
		provider: p,
		limiter:  rate.NewLimiter(rate.Every(every), burst),
	}
}

// Name returns the wrapped provider name.
func (r *RateLimited) Name() string {
	return fmt.Sprintf("%s [Rate Limited]", r.provider.Name())
}

// Current waits for the limiter, then queries the wrapped provider.
func (r *RateLimited) Current(ctx context.Context) (weather.Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Snapshot{}, fmt.Errorf("fetch: rate limit wait canceled: %w", err)
	}
	return r.provider.Current(ctx)
}

var _ Provider = (*RateLimited)(nil)

// Replacer receives fresh snapshots.
type Replacer interface {
	Replace(s weather.Snapshot)
}

// Poller fetches the weather periodically. Failed fetches leave the last
// snapshot in place.
type Poller struct {
	provider Provider
	store    Replacer
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger

	failures atomic.Int64
}

// NewPoller returns a Poller fetching every interval. logger can be nil.
func NewPoller(p Provider, store Replacer, interval time.Duration, logger *slog.Logger) (*Poller, error) {
	if p == nil || store == nil {
		return nil, errors.New("fetch: provider and store are required")
	}
	if interval <= 0 {
		return nil, errors.New("fetch: interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		provider: p,
		store:    store,
		interval: interval,
		timeout:  30 * time.Second,
		log:      logger,
	}, nil
}

// Poll fetches once and replaces the snapshot on success.
func (p *Poller) Poll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	s, err := p.provider.Current(ctx)
	if err != nil {
		n := p.failures.Add(1)
		p.log.Warn("fetch: weather update failed, keeping last snapshot",
			"provider", p.provider.Name(), "failures", n, "err", err)
		return err
	}
	p.failures.Store(0)
	p.store.Replace(s)
	p.log.Info("fetch: weather updated", "provider", p.provider.Name(), "description", s.Description)
	return nil
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Failures returns the number of consecutive failed polls. It is safe to
// call while Run is polling.
func (p *Poller) Failures() int {
	return int(p.failures.Load())
}
