package datasource

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finmcp/pkg/models"
)

// DefaultConcurrency bounds a batch when the caller passes no limit.
const DefaultConcurrency = 5

// Fetched is one slot of a batch: the history on success, the classified
// error otherwise.
type Fetched struct {
	Symbol  string
	History *models.PriceHistory
	Err     error
}

// Batch fetches history for several symbols concurrently.
type Batch struct {
	src   MarketData
	limit int
}

// NewBatch creates a batch fetcher running at most limit requests at once.
func NewBatch(src MarketData, limit int) *Batch {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Batch{src: src, limit: limit}
}

// History fetches every symbol over [from, to). Slot i always belongs to
// symbols[i]; a failing symbol does not cancel the others. When ctx expires
// the call returns ctx's error at once; fetches still in flight finish in
// the background and their results are dropped.
func (b *Batch) History(ctx context.Context, symbols []string, from, to time.Time) ([]Fetched, error) {
	out := make([]Fetched, len(symbols))
	for i, sym := range symbols {
		out[i].Symbol = sym
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.fetchAll(ctx, out, from, to)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, Classify(ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return nil, Classify(err)
	}
	return out, nil
}

// fetchAll fills every slot of out, at most b.limit at a time.
func (b *Batch) fetchAll(ctx context.Context, out []Fetched, from, to time.Time) {
	g := new(errgroup.Group)
	g.SetLimit(b.limit)
	for i := range out {
		sym := out[i].Symbol
		g.Go(func() error {
			if ctx.Err() != nil {
				out[i].Err = Classify(ctx.Err())
				return nil
			}
			h, err := b.src.History(ctx, sym, from, to)
			if err != nil {
				out[i].Err = Classify(err)
				return nil // non-fatal
			}
			out[i].History = h
			return nil
		})
	}
	_ = g.Wait()
}
