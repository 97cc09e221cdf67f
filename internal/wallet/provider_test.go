package wallet_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/contract"
	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

const (
	sepolia      = 11155111
	saleContract = "0x3F75dA12899634Ad91E16D230B5a55C576103F10"
)

// node is a minimal JSON-RPC node. It decodes broadcast transactions so
// tests can inspect exactly what was signed.
type node struct {
	t           *testing.T
	chainID     int64
	estimateErr bool
	status      string // receipt status once a tx is sent
	calls       map[string][]byte

	mu      sync.Mutex
	sent    []*types.Transaction
	methods []string
}

func newNode(t *testing.T) (*node, *httptest.Server) {
	n := &node{t: t, chainID: sepolia, status: "0x1", calls: map[string][]byte{}}
	srv := httptest.NewServer(n)
	t.Cleanup(srv.Close)
	return n, srv
}

// returns registers the ABI-encoded answer of a sale contract view.
func (n *node) returns(method string, values ...interface{}) {
	m := contract.SaleABI.Methods[method]
	data, err := m.Outputs.Pack(values...)
	require.NoError(n.t, err)
	n.calls[hex.EncodeToString(m.ID)] = data
}

func (n *node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if !assert.NoError(n.t, json.NewDecoder(r.Body).Decode(&req)) {
		return
	}
	n.mu.Lock()
	n.methods = append(n.methods, req.Method)
	n.mu.Unlock()

	reply := func(result interface{}) {
		b, _ := json.Marshal(result)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, b)
	}
	fail := func(msg string) {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32000,"message":%q}}`, req.ID, msg)
	}

	switch req.Method {
	case "eth_chainId":
		reply(fmt.Sprintf("0x%x", n.chainID))
	case "eth_blockNumber":
		reply("0x100")
	case "eth_gasPrice":
		reply("0x3b9aca00") // 1 gwei
	case "eth_getTransactionCount":
		reply("0x7")
	case "eth_estimateGas":
		if n.estimateErr {
			fail("execution reverted")
			return
		}
		reply("0x1d4c0") // 120000
	case "eth_call":
		var p map[string]string
		if !assert.NoError(n.t, json.Unmarshal(req.Params[0], &p)) {
			return
		}
		out, ok := n.calls[strings.TrimPrefix(p["data"], "0x")[:8]]
		if !ok {
			fail("execution reverted")
			return
		}
		reply("0x" + hex.EncodeToString(out))
	case "eth_sendRawTransaction":
		var raw string
		if !assert.NoError(n.t, json.Unmarshal(req.Params[0], &raw)) {
			return
		}
		b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
		tx := new(types.Transaction)
		if !assert.NoError(n.t, err) || !assert.NoError(n.t, tx.UnmarshalBinary(b)) {
			fail("invalid transaction")
			return
		}
		n.mu.Lock()
		n.sent = append(n.sent, tx)
		n.mu.Unlock()
		reply(tx.Hash().Hex())
	case "eth_getTransactionReceipt":
		n.mu.Lock()
		mined := len(n.sent) > 0
		n.mu.Unlock()
		if !mined {
			reply(nil)
			return
		}
		reply(map[string]string{"status": n.status, "blockNumber": "0x2a", "gasUsed": "0x1d4c0"})
	default:
		fail("method not found: " + req.Method)
	}
}

func (n *node) transactions() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

// recorder approves or denies and remembers what it was shown.
type recorder struct {
	connect  bool
	tx       bool
	asked    []*wallet.Wallet
	previews []wallet.TxPreview
}

func (r *recorder) ApproveConnect(w *wallet.Wallet) bool {
	r.asked = append(r.asked, w)
	return r.connect
}

func (r *recorder) ApproveTx(p wallet.TxPreview) bool {
	r.previews = append(r.previews, p)
	return r.tx
}

func signingManager(t *testing.T) *wallet.Manager {
	t.Helper()
	mgr := wallet.NewManager()
	_, err := mgr.AddWithKey("dev", testKey)
	require.NoError(t, err)
	return mgr
}

func newProvider(t *testing.T, srvURL string, auth wallet.Authorizer) *wallet.Provider {
	t.Helper()
	return wallet.NewProvider(chain.NewEVMClient(srvURL), signingManager(t), wallet.ProviderConfig{
		ChainID:        sepolia,
		Authorizer:     auth,
		PollInterval:   10 * time.Millisecond,
		ConfirmTimeout: 2 * time.Second,
	})
}

func TestRequestAccounts(t *testing.T) {
	_, srv := newNode(t)
	auth := &recorder{connect: true}

	accounts, err := newProvider(t, srv.URL, auth).RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testAddress}, accounts)
	require.Len(t, auth.asked, 1)
	assert.Equal(t, "dev", auth.asked[0].Name)
}

func TestRequestAccountsDenied(t *testing.T) {
	_, srv := newNode(t)

	_, err := newProvider(t, srv.URL, &recorder{connect: false}).RequestAccounts(context.Background())
	assert.ErrorIs(t, err, sale.ErrUserRejected)
}

func TestRequestAccountsWatchOnly(t *testing.T) {
	_, srv := newNode(t)
	mgr := wallet.NewManager()
	require.NoError(t, mgr.Add("watch", testAddress))

	p := wallet.NewProvider(chain.NewEVMClient(srv.URL), mgr, wallet.ProviderConfig{ChainID: sepolia})
	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)
}

func TestRequestAccountsNoWallet(t *testing.T) {
	_, srv := newNode(t)
	p := wallet.NewProvider(chain.NewEVMClient(srv.URL), wallet.NewManager(), wallet.ProviderConfig{ChainID: sepolia})

	_, err := p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoWallet)
}

func TestSignerUnknownAddress(t *testing.T) {
	_, srv := newNode(t)
	_, err := newProvider(t, srv.URL, nil).Signer(context.Background(), "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestSendTransaction(t *testing.T) {
	n, srv := newNode(t)
	auth := &recorder{connect: true, tx: true}
	p := newProvider(t, srv.URL, auth)

	signer, err := p.Signer(context.Background(), strings.ToLower(testAddress))
	require.NoError(t, err)
	assert.Equal(t, testAddress, signer.Address())

	value := big.NewInt(500_000_000_000_000_000)
	hash, err := signer.SendTransaction(context.Background(), saleContract, value)
	require.NoError(t, err)

	sent := n.transactions()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, common.HexToAddress(saleContract), *tx.To())
	assert.Equal(t, 0, value.Cmp(tx.Value()))
	assert.Empty(t, tx.Data(), "investing is a plain transfer")
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(120000), tx.Gas())
	assert.Equal(t, int64(sepolia), tx.ChainId().Int64())

	from, err := types.Sender(types.NewLondonSigner(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), from)

	require.Len(t, auth.previews, 1)
	pv := auth.previews[0]
	assert.True(t, pv.Estimate)
	assert.Equal(t, "2000000000", pv.MaxFee.String())
	// 0.5 ETH + 120000 × 2 gwei
	assert.Equal(t, "500240000000000000", pv.MaxCost().String())
}

func TestSendTransactionGasFallback(t *testing.T) {
	n, srv := newNode(t)
	n.estimateErr = true
	auth := &recorder{tx: true}

	signer, err := newProvider(t, srv.URL, auth).Signer(context.Background(), testAddress)
	require.NoError(t, err)
	_, err = signer.SendTransaction(context.Background(), saleContract, big.NewInt(1))
	require.NoError(t, err)

	require.Len(t, n.transactions(), 1)
	assert.Equal(t, uint64(200_000), n.transactions()[0].Gas())
	assert.False(t, auth.previews[0].Estimate)
}

func TestSendTransactionRejected(t *testing.T) {
	n, srv := newNode(t)

	signer, err := newProvider(t, srv.URL, &recorder{tx: false}).Signer(context.Background(), testAddress)
	require.NoError(t, err)
	_, err = signer.SendTransaction(context.Background(), saleContract, big.NewInt(1))
	assert.ErrorIs(t, err, sale.ErrUserRejected)
	assert.Empty(t, n.transactions(), "nothing broadcast after a refusal")
}

func TestSendTransactionInvalidRecipient(t *testing.T) {
	_, srv := newNode(t)
	signer, err := newProvider(t, srv.URL, nil).Signer(context.Background(), testAddress)
	require.NoError(t, err)

	_, err = signer.SendTransaction(context.Background(), "sale", big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestWaitMined(t *testing.T) {
	n, srv := newNode(t)
	signer, err := newProvider(t, srv.URL, nil).Signer(context.Background(), testAddress)
	require.NoError(t, err)

	hash, err := signer.SendTransaction(context.Background(), saleContract, big.NewInt(1))
	require.NoError(t, err)

	receipt, err := signer.WaitMined(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), receipt.BlockNumber)
	assert.Equal(t, uint64(1), receipt.Status)

	n.status = "0x0"
	_, err = signer.WaitMined(context.Background(), hash)
	assert.ErrorIs(t, err, chain.ErrReverted)
}

func TestWaitMinedTimeout(t *testing.T) {
	_, srv := newNode(t)
	p := wallet.NewProvider(chain.NewEVMClient(srv.URL), signingManager(t), wallet.ProviderConfig{
		ChainID:        sepolia,
		PollInterval:   5 * time.Millisecond,
		ConfirmTimeout: 30 * time.Millisecond,
	})
	signer, err := p.Signer(context.Background(), testAddress)
	require.NoError(t, err)

	_, err = signer.WaitMined(context.Background(), "0xdead")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDetect(t *testing.T) {
	_, srv := newNode(t)

	p, err := wallet.Detect(context.Background(), signingManager(t), wallet.DetectConfig{
		RPCURLs:        []string{srv.URL},
		ProviderConfig: wallet.ProviderConfig{ChainID: sepolia},
	})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestDetectWrongChain(t *testing.T) {
	n, srv := newNode(t)
	n.chainID = 1

	_, err := wallet.Detect(context.Background(), signingManager(t), wallet.DetectConfig{
		RPCURLs:        []string{srv.URL},
		ProviderConfig: wallet.ProviderConfig{ChainID: sepolia},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different chain")
}

func TestDetectWithoutWalletIsReadOnly(t *testing.T) {
	_, srv := newNode(t)

	p, err := wallet.Detect(context.Background(), wallet.NewManager(), wallet.DetectConfig{
		RPCURLs:        []string{srv.URL},
		ProviderConfig: wallet.ProviderConfig{ChainID: sepolia},
	})
	require.NoError(t, err)

	_, err = p.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoWallet)
}

func TestDetectNoEndpoints(t *testing.T) {
	_, err := wallet.Detect(context.Background(), wallet.NewManager(), wallet.DetectConfig{
		ProviderConfig: wallet.ProviderConfig{ChainID: sepolia},
	})
	assert.Error(t, err)
}

// The provider plugged into the sale controller end to end.
func TestControllerOverProvider(t *testing.T) {
	n, srv := newNode(t)
	ether := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	n.returns("totalSupply", big.NewInt(1_000_000))
	n.returns("raisedAmount", new(big.Int).Mul(ether, big.NewInt(12)))
	n.returns("tokenPrice", big.NewInt(1_000_000_000_000_000))
	n.returns("hardCap", new(big.Int).Mul(ether, big.NewInt(300)))
	n.returns("maxInvestment", new(big.Int).Mul(ether, big.NewInt(5)))
	n.returns("minInvestment", big.NewInt(100_000_000_000_000_000))
	n.returns("getCurrentState", uint8(1))
	n.returns("balanceOf", big.NewInt(500))

	mgr := signingManager(t)
	detect := func(ctx context.Context) (sale.Provider, error) {
		p, err := wallet.Detect(ctx, mgr, wallet.DetectConfig{
			RPCURLs: []string{srv.URL},
			ProviderConfig: wallet.ProviderConfig{
				ChainID:      sepolia,
				PollInterval: 10 * time.Millisecond,
			},
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	c := sale.NewController(saleContract, detect)

	snap, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sale.PhaseRunning, snap.Phase)
	assert.Equal(t, "300", snap.HardCap.String())

	sess, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, sess.Account)

	bal, err := c.TokenBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "500", bal.String())

	inv, err := c.Invest(context.Background(), "0.5")
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", inv.Wei.String())
	require.Len(t, n.transactions(), 1)
	assert.Equal(t, inv.TxHash, n.transactions()[0].Hash().Hex())

	_, err = c.Invest(context.Background(), "2")
	kind, _ := sale.KindOf(err)
	assert.Equal(t, sale.KindValidationFailure, kind)
	assert.Len(t, n.transactions(), 1)
}

func TestControllerWithoutEndpoints(t *testing.T) {
	detect := func(ctx context.Context) (sale.Provider, error) {
		p, err := wallet.Detect(ctx, wallet.NewManager(), wallet.DetectConfig{
			ProviderConfig: wallet.ProviderConfig{ChainID: sepolia},
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	_, err := sale.NewController(saleContract, detect).Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sale.ErrNoProvider))
}
