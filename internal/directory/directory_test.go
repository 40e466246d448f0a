package directory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeSource is a scriptable SymbolSource that counts calls.
type fakeSource struct {
	symbols []string
	err     error
	calls   int
}

func (f *fakeSource) GetSymbols(ctx context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.symbols, nil
}

func TestGetPopulatesFromSources(t *testing.T) {
	nseSrc := &fakeSource{symbols: []string{"RELIANCE.NS", "TCS.NS"}}
	bseSrc := &fakeSource{symbols: []string{"500325.BO"}}
	d := New(nseSrc, bseSrc)

	nse, bse := d.Get(context.Background())
	if len(nse) != 2 || nse[0] != "RELIANCE.NS" {
		t.Fatalf("nse = %v", nse)
	}
	if len(bse) != 1 || bse[0] != "500325.BO" {
		t.Fatalf("bse = %v", bse)
	}
	if nseSrc.calls != 1 || bseSrc.calls != 1 {
		t.Fatalf("calls = %d, %d; want 1, 1", nseSrc.calls, bseSrc.calls)
	}
}

func TestGetUsesFallbackOnTotalFailure(t *testing.T) {
	nseSrc := &fakeSource{err: fmt.Errorf("network down")}
	bseSrc := &fakeSource{err: fmt.Errorf("network down")}
	d := New(nseSrc, bseSrc)

	nse, bse := d.Get(context.Background())
	if len(nse) == 0 || len(bse) == 0 {
		t.Fatal("expected non-empty fallback lists")
	}
	if nse[0] != "RELIANCE.NS" {
		t.Errorf("nse fallback = %v", nse)
	}
	if bse[len(bse)-1] != "BAFNAPH.BO" {
		t.Errorf("bse fallback = %v", bse)
	}
}

func TestGetRetainsStaleOnFailure(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	nseSrc := &fakeSource{symbols: []string{"INFY.NS", "WIPRO.NS"}}
	bseSrc := &fakeSource{symbols: []string{"507685.BO"}}
	d := New(nseSrc, bseSrc, WithClock(clock))

	d.Get(context.Background())

	// Sources start failing; cache goes stale.
	nseSrc.err = fmt.Errorf("HTTP 503")
	bseSrc.err = fmt.Errorf("HTTP 503")
	now = now.Add(25 * time.Hour)

	nse, bse := d.Get(context.Background())
	if len(nse) != 2 || nse[1] != "WIPRO.NS" {
		t.Fatalf("expected stale NSE list retained, got %v", nse)
	}
	if len(bse) != 1 || bse[0] != "507685.BO" {
		t.Fatalf("expected stale BSE list retained, got %v", bse)
	}
}

func TestExchangeFailuresAreIndependent(t *testing.T) {
	nseSrc := &fakeSource{symbols: []string{"TCS.NS"}}
	bseSrc := &fakeSource{err: fmt.Errorf("blocked")}
	d := New(nseSrc, bseSrc)

	nse, bse := d.Get(context.Background())
	if len(nse) != 1 || nse[0] != "TCS.NS" {
		t.Fatalf("nse = %v", nse)
	}
	// BSE falls back, NSE is live data.
	if len(bse) != len(FallbackBSE) {
		t.Fatalf("bse = %v, want fallback", bse)
	}
}

func TestTTLAdvancesOnFailedAttempt(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	nseSrc := &fakeSource{err: fmt.Errorf("down")}
	bseSrc := &fakeSource{err: fmt.Errorf("down")}
	d := New(nseSrc, bseSrc, WithClock(clock))

	d.Get(context.Background())
	if nseSrc.calls != 1 {
		t.Fatalf("calls = %d, want 1", nseSrc.calls)
	}

	// Within the TTL window a failed attempt is not retried.
	now = now.Add(1 * time.Hour)
	d.Get(context.Background())
	if nseSrc.calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry inside TTL)", nseSrc.calls)
	}

	// After the TTL it is retried once.
	now = now.Add(24 * time.Hour)
	d.Get(context.Background())
	if nseSrc.calls != 2 {
		t.Fatalf("calls = %d, want 2", nseSrc.calls)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	nseSrc := &fakeSource{symbols: []string{"TCS.NS"}}
	bseSrc := &fakeSource{symbols: []string{"532540.BO"}}
	d := New(nseSrc, bseSrc)

	nse, _ := d.Get(context.Background())
	nse[0] = "MUTATED"

	nse2, _ := d.Get(context.Background())
	if nse2[0] != "TCS.NS" {
		t.Fatalf("cache mutated through returned slice: %v", nse2)
	}
}

func TestWithTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	nseSrc := &fakeSource{symbols: []string{"TCS.NS"}}
	bseSrc := &fakeSource{symbols: []string{"532540.BO"}}
	d := New(nseSrc, bseSrc, WithTTL(time.Minute), WithClock(clock))

	d.Get(context.Background())
	now = now.Add(2 * time.Minute)
	d.Get(context.Background())
	if nseSrc.calls != 2 {
		t.Fatalf("calls = %d, want 2 with shortened TTL", nseSrc.calls)
	}
}
