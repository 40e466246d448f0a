// Package directory maintains the process-wide cache of tradable
// symbols per exchange, refreshed from the NSE and BSE list endpoints
// on a time-to-live.
package directory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTTL is how long a fetched symbol list stays fresh.
const DefaultTTL = 24 * time.Hour

// Fallback lists used when an exchange fetch fails and nothing was
// cached. The endpoint never serves an empty list.
var (
	FallbackNSE = []string{"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "HCLTECH.NS"}
	FallbackBSE = []string{"RELIANCE.BO", "TCS.BO", "HDFCBANK.BO", "INFY.BO", "BAFNAPH.BO"}
)

// SymbolSource fetches the full symbol list for one exchange.
type SymbolSource interface {
	GetSymbols(ctx context.Context) ([]string, error)
}

// Directory caches exchange symbol lists. It is safe for concurrent
// use; overlapping refreshes are tolerated as duplicate fetches, the
// lock only guards the (symbols, timestamp) swap.
type Directory struct {
	nseSource SymbolSource
	bseSource SymbolSource
	ttl       time.Duration

	mu            sync.RWMutex
	nse           []string
	bse           []string
	lastRefreshed time.Time

	now func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithTTL overrides the refresh interval.
func WithTTL(ttl time.Duration) Option {
	return func(d *Directory) { d.ttl = ttl }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// New creates a symbol directory backed by the given exchange sources.
func New(nseSource, bseSource SymbolSource, opts ...Option) *Directory {
	d := &Directory{
		nseSource: nseSource,
		bseSource: bseSource,
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get returns the NSE and BSE symbol lists, refreshing both from their
// sources when the cache is stale or never populated. The returned
// slices are copies.
func (d *Directory) Get(ctx context.Context) (nse, bse []string) {
	if d.stale() {
		d.refresh(ctx)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.nse...), append([]string(nil), d.bse...)
}

// LastRefreshed returns the time of the last refresh attempt.
func (d *Directory) LastRefreshed() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastRefreshed
}

func (d *Directory) stale() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastRefreshed.IsZero() || d.now().Sub(d.lastRefreshed) >= d.ttl
}

// refresh re-fetches both exchanges. The fetches are independent: one
// exchange failing does not block the other, and a failed exchange
// keeps its previous contents (or the fallback list when there are
// none). The TTL advances on the attempt even if a fetch failed, so a
// broken source is retried at most once per TTL window.
func (d *Directory) refresh(ctx context.Context) {
	attemptAt := d.now()

	var nse, bse []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		nse = d.fetchExchange(gctx, d.nseSource, d.snapshotNSE(), FallbackNSE)
		return nil
	})
	g.Go(func() error {
		bse = d.fetchExchange(gctx, d.bseSource, d.snapshotBSE(), FallbackBSE)
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	d.nse = nse
	d.bse = bse
	d.lastRefreshed = attemptAt
	d.mu.Unlock()
}

// fetchExchange returns the fresh list on success, the previously
// cached list on failure, and the fallback when nothing was cached.
func (d *Directory) fetchExchange(ctx context.Context, src SymbolSource, previous, fallback []string) []string {
	symbols, err := src.GetSymbols(ctx)
	if err != nil || len(symbols) == 0 {
		if len(previous) > 0 {
			return previous
		}
		return fallback
	}
	return symbols
}

func (d *Directory) snapshotNSE() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nse
}

func (d *Directory) snapshotBSE() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bse
}
