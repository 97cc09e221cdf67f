// check-sale: reads the Krypton sale state through every built-in Sepolia
// RPC (plus any URLs given as arguments) in parallel and prints a summary
// table. Endpoints that disagree on the raised amount are usually lagging.
//
// Run from the module root:
//
//	go run ./scripts/check-sale [rpc-url ...]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/contract"
	"github.com/Mohsinsiddi/krypton/internal/sale"
)

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	rpc     string
	latency string
	block   uint64
	raised  string
	hardCap string
	held    string // ether held by the contract
	phase   string
	err     string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	urls := append(append([]string(nil), config.DefaultRPCs...), os.Args[1:]...)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
			defer cancel()

			r := check(ctx, url)

			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(url)
	}

	wg.Wait()

	printTable(results)
}

func check(ctx context.Context, url string) result {
	r := result{rpc: url, latency: "—", raised: "—", hardCap: "—", held: "—", phase: "—"}
	client := chain.NewEVMClient(url)

	// Quick ping first; skip endpoints that don't respond.
	latency, block, err := client.Ping(ctx)
	if err != nil {
		r.err = "unreachable"
		return r
	}
	r.latency = fmt.Sprintf("%dms", latency.Milliseconds())
	r.block = block

	if id, err := client.ChainID(ctx); err != nil || id != config.DefaultChainID {
		r.err = "wrong chain"
		return r
	}

	s := contract.NewSale(client, config.DefaultContract, "")
	raised, err := s.RaisedAmount(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	hardCap, err := s.HardCap(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.raised = chain.FormatEther(raised)
	r.hardCap = chain.FormatEther(hardCap)

	// The sale forwards investments to its deposit address, so this is
	// normally zero.
	if held, err := client.GetBalance(ctx, config.DefaultContract); err == nil {
		r.held = chain.FormatEther(held)
	}

	if code, err := s.GetCurrentState(ctx); err != nil {
		r.phase = sale.PhaseError.String()
	} else {
		r.phase = sale.PhaseFromCode(int64(code)).String()
	}
	return r
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	// Reachable endpoints first, highest block first.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.block != b.block {
			return a.block > b.block
		}
		return a.rpc < b.rpc
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "RPC\tLATENCY\tBLOCK\tRAISED\tHARD CAP\tHELD\tSTATE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 40)+"\t"+
		strings.Repeat("-", 7)+"\t"+
		strings.Repeat("-", 9)+"\t"+
		strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 13)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		block := "—"
		if r.block > 0 {
			block = fmt.Sprintf("%d", r.block)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.rpc, r.latency, block, r.raised, r.hardCap, r.held, r.phase, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
