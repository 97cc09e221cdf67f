package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int64  `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

// ---------------------------------------------------------------------------
// scalar queries
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0xaa36a7"})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id)
}

func TestGasPrice(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x3b9aca00"})
	defer srv.Close()

	gp, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), gp)
}

func TestGetPendingNonce(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionCount": "0x7"})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).GetPendingNonce(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestGetBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	defer srv.Close()

	bal, err := NewEVMClient(srv.URL).GetBalance(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "1", FormatEther(bal))
}

func TestUnparseableQuantity(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0xzz"})
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gas price")
}

func TestRPCErrorIsTyped(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "insufficient funds for gas * price + value")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestBadJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestRequestIDsIncrease(t *testing.T) {
	var last atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		assert.Greater(t, req.ID, last.Load())
		last.Store(req.ID)
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": "0x1",
		})
	}))
	defer srv.Close()

	c := NewEVMClient(srv.URL)
	for range 3 {
		_, err := c.BlockNumber(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), last.Load())
}

// ---------------------------------------------------------------------------
// eth_call / eth_estimateGas parameters
// ---------------------------------------------------------------------------

func TestCallContractSendsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64             `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eth_call", req.Method)

		var params map[string]string
		if assert.Len(t, req.Params, 2) {
			assert.NoError(t, json.Unmarshal(req.Params[0], &params))
		}
		assert.Equal(t, "0xcontract", params["to"])
		assert.Equal(t, "0xsender", params["from"])
		assert.Equal(t, "0x18160ddd", params["data"])

		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID,
			"result": "0x00000000000000000000000000000000000000000000000000000000000f4240",
		})
	}))
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), "0xsender", "0xcontract", []byte{0x18, 0x16, 0x0d, 0xdd})
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, int64(1_000_000), new(big.Int).SetBytes(out).Int64())
}

func TestCallParamsOmitsEmptyFields(t *testing.T) {
	p := callParams("", "0xto", nil, big.NewInt(0))
	assert.Equal(t, map[string]string{"to": "0xto"}, p)

	p = callParams("0xfrom", "0xto", []byte{0xab}, big.NewInt(255))
	assert.Equal(t, "0xfrom", p["from"])
	assert.Equal(t, "0xab", p["data"])
	assert.Equal(t, "0xff", p["value"])
}

func TestEstimateGas(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_estimateGas": "0x186a0"})
	defer srv.Close()

	gas, err := NewEVMClient(srv.URL).EstimateGas(context.Background(), "0xa", "0xb", nil, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), gas)
}

func TestSendRawTransaction(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_sendRawTransaction": "0xhash"})
	defer srv.Close()

	hash, err := NewEVMClient(srv.URL).SendRawTransaction(context.Background(), []byte{0x02, 0xf8})
	require.NoError(t, err)
	assert.Equal(t, "0xhash", hash)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), "0xtx")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestWaitForReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status": "0x1", "blockNumber": "0x10", "gasUsed": "0x5208",
		},
	})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xtx", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(16), r.BlockNumber)
	assert.Equal(t, uint64(21000), r.GasUsed)
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status": "0x0", "blockNumber": "0x10", "gasUsed": "0x5208",
		},
	})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xreverted", time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, r)
	assert.Equal(t, uint64(0), r.Status)
}

func TestWaitForReceiptPendingThenMined(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		var result interface{}
		if calls.Add(1) >= 3 {
			result = map[string]interface{}{"status": "0x1", "blockNumber": "0x2", "gasUsed": "0x1"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xtx", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.BlockNumber)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitForReceiptContextDeadline(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, "0xstuck", 5*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mined")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForReceiptDeadlineDuringRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, "0xslow", time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 0xslow not mined")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// Ping
// ---------------------------------------------------------------------------

func TestPingSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1388"})
	defer srv.Close()

	latency, blockNum, err := NewEVMClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), blockNum)
	assert.Greater(t, latency, time.Duration(0))
}

func TestPingContextCancelled(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1"})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewEVMClient(srv.URL).Ping(ctx)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// parseBigHex
// ---------------------------------------------------------------------------

func TestParseBigHex(t *testing.T) {
	n, ok := parseBigHex("0x64")
	require.True(t, ok)
	assert.Equal(t, int64(100), n.Int64())

	_, ok = parseBigHex("0x")
	assert.False(t, ok)

	_, ok = parseBigHex("")
	assert.False(t, ok)
}
