package rpc

import (
	"context"
	"fmt"
)

// Select probes urls and returns the one algo prefers among those serving
// wantChainID. Returns ErrNoHealthyRPC when the list is empty or every
// endpoint fails.
func Select(ctx context.Context, p *Picker, urls []string, wantChainID int64) (Endpoint, error) {
	if len(urls) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	results := ProbeAll(ctx, urls, wantChainID)
	winner, err := p.Pick(ResultsToEndpoints(results))
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w (%s)", err, firstError(results))
	}
	return *winner, nil
}

func firstError(results []Probe) string {
	for _, r := range results {
		if r.Err != nil {
			return r.URL + ": " + r.Err.Error()
		}
	}
	return "no endpoints"
}
