package sale

import (
	"context"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"
)

// Details describes the token and the sale window. Live is false when the
// values are the configured fallbacks rather than contract reads.
type Details struct {
	TokenName   string
	TokenSymbol string
	SaleStart   time.Time
	SaleEnd     time.Time
	Live        bool
}

// Window reports where t falls relative to the sale window: -1 before it,
// 0 inside it, 1 after it. A zero bound is treated as open.
func (d Details) Window(t time.Time) int {
	switch {
	case !d.SaleStart.IsZero() && t.Before(d.SaleStart):
		return -1
	case !d.SaleEnd.IsZero() && !t.Before(d.SaleEnd):
		return 1
	}
	return 0
}

// Details reads the token name, symbol and sale window from the contract.
// Any failure falls back to the configured defaults; the snapshot is never
// touched.
func (c *Controller) Details(ctx context.Context) Details {
	c.mu.Lock()
	ct := c.contract
	c.mu.Unlock()
	if ct == nil {
		return c.defaults
	}

	var (
		d          = Details{Live: true}
		start, end *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TokenName, err = ct.Name(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TokenSymbol, err = ct.Symbol(gctx)
		return err
	})
	g.Go(func() (err error) {
		start, err = ct.SaleStart(gctx)
		return err
	})
	g.Go(func() (err error) {
		end, err = ct.SaleEnd(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Debug().Err(err).Msg("sale details unavailable, using configured values")
		return c.defaults
	}
	d.SaleStart = unixTime(start)
	d.SaleEnd = unixTime(end)
	return d
}

func unixTime(n *big.Int) time.Time {
	if n == nil || n.Sign() <= 0 || !n.IsInt64() {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0).UTC()
}
