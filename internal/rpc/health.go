package rpc

import (
	"context"
)

// HealthCheck probes a single endpoint. A node is healthy if it answers
// within the probe timeout, serves wantChainID (0 skips that check) and its
// block is within staleBlockThreshold of bestBlock (0 skips the recency check).
func HealthCheck(ctx context.Context, url string, bestBlock uint64, wantChainID int64) (Endpoint, error) {
	p := probe(ctx, url, wantChainID)

	ep := ResultsToEndpoints([]Probe{p})[0]
	if p.Err == nil && bestBlock > 0 && bestBlock > p.BlockNumber && bestBlock-p.BlockNumber > staleBlockThreshold {
		ep.Healthy = false
	}
	return ep, p.Err
}
