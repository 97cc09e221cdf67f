package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/krypton/internal/chain"
)

// ErrWrongChain is reported for an endpoint that serves another chain.
var ErrWrongChain = errors.New("endpoint serves a different chain")

const (
	probeTimeout = 5 * time.Second
	maxParallel  = 8
)

// Probe is the measured state of one endpoint.
type Probe struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// ProbeAll pings all URLs in parallel and returns results in input order.
// When wantChainID is non-zero an endpoint reporting another chain ID is
// marked with ErrWrongChain.
func ProbeAll(ctx context.Context, urls []string, wantChainID int64) []Probe {
	results := make([]Probe, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = probe(ctx, url, wantChainID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func probe(ctx context.Context, url string, wantChainID int64) Probe {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	p := Probe{URL: url}
	p.Latency, p.BlockNumber, p.Err = c.Ping(ctx)
	if p.Err != nil {
		return p
	}
	p.ChainID, p.Err = c.ChainID(ctx)
	if p.Err == nil && wantChainID != 0 && p.ChainID != wantChainID {
		p.Err = fmt.Errorf("%w: got %d, want %d", ErrWrongChain, p.ChainID, wantChainID)
	}
	return p
}

// ResultsToEndpoints converts probe results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []Probe) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			ChainID:     r.ChainID,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}
