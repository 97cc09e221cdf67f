package sale

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/krypton/internal/chain"
)

const (
	testContract = "0x3F75dA12899634Ad91E16D230B5a55C576103F10"
	testAccount  = "0xABC0000000000000000000000000000000000001"
)

func wei(ether int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(ether), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// fakeContract answers every getter from fixed values. supply, when set,
// overrides TotalSupply so tests can block or count calls.
type fakeContract struct {
	from     string
	values   map[string]*big.Int
	errs     map[string]error
	state    uint8
	stateErr error
	supply   func(ctx context.Context) (*big.Int, error)
	name     string
	symbol   string
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		values: map[string]*big.Int{
			"totalSupply":   big.NewInt(1_000_000),
			"raisedAmount":  wei(12),
			"tokenPrice":    big.NewInt(1_000_000_000_000_000),
			"hardCap":       wei(300),
			"maxInvestment": wei(5),
			"minInvestment": big.NewInt(100_000_000_000_000_000),
			"saleStart":     big.NewInt(1702886400),
			"saleEnd":       big.NewInt(1705089600),
		},
		errs:   map[string]error{},
		state:  1,
		name:   "KRYPTOS",
		symbol: "KRPT",
	}
}

func (f *fakeContract) get(method string) (*big.Int, error) {
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	return f.values[method], nil
}

func (f *fakeContract) TotalSupply(ctx context.Context) (*big.Int, error) {
	if f.supply != nil {
		return f.supply(ctx)
	}
	return f.get("totalSupply")
}
func (f *fakeContract) RaisedAmount(context.Context) (*big.Int, error) { return f.get("raisedAmount") }
func (f *fakeContract) TokenPrice(context.Context) (*big.Int, error)   { return f.get("tokenPrice") }
func (f *fakeContract) HardCap(context.Context) (*big.Int, error)      { return f.get("hardCap") }
func (f *fakeContract) MaxInvestment(context.Context) (*big.Int, error) {
	return f.get("maxInvestment")
}
func (f *fakeContract) MinInvestment(context.Context) (*big.Int, error) {
	return f.get("minInvestment")
}
func (f *fakeContract) SaleStart(context.Context) (*big.Int, error) { return f.get("saleStart") }
func (f *fakeContract) SaleEnd(context.Context) (*big.Int, error)   { return f.get("saleEnd") }

func (f *fakeContract) GetCurrentState(context.Context) (uint8, error) {
	return f.state, f.stateErr
}

func (f *fakeContract) Name(context.Context) (string, error) {
	if err := f.errs["name"]; err != nil {
		return "", err
	}
	return f.name, nil
}

func (f *fakeContract) Symbol(context.Context) (string, error) { return f.symbol, nil }

func (f *fakeContract) BalanceOf(_ context.Context, owner string) (*big.Int, error) {
	if err := f.errs["balanceOf"]; err != nil {
		return nil, err
	}
	if owner != f.from {
		return big.NewInt(0), nil
	}
	return f.values["balanceOf"], nil
}

// bound returns a copy of f as seen from account.
func (f *fakeContract) bound(account string) *fakeContract {
	cp := *f
	cp.from = account
	return &cp
}

type fakeProvider struct {
	contract  *fakeContract
	accounts  []string
	reqErr    error
	signerErr error
	signer    *fakeSigner
	block     chan struct{} // when set, RequestAccounts waits on it

	mu    sync.Mutex
	binds int
}

func newFakeProvider(ct *fakeContract) *fakeProvider {
	return &fakeProvider{
		contract: ct,
		accounts: []string{testAccount},
		signer: &fakeSigner{
			address:  testAccount,
			contract: ct,
			hash:     "0xfeed",
			receipt:  &chain.TxReceipt{Hash: "0xfeed", Status: 1, BlockNumber: 42, GasUsed: 21055},
		},
	}
}

func (p *fakeProvider) Bind(string) Contract {
	p.mu.Lock()
	p.binds++
	p.mu.Unlock()
	return p.contract
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.accounts, p.reqErr
}

func (p *fakeProvider) Signer(context.Context, string) (Signer, error) {
	if p.signerErr != nil {
		return nil, p.signerErr
	}
	return p.signer, nil
}

func (p *fakeProvider) bindCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binds
}

type sentTx struct {
	to    string
	value *big.Int
}

type fakeSigner struct {
	address  string
	contract *fakeContract
	sendErr  error
	waitErr  error
	hash     string
	receipt  *chain.TxReceipt
	onMined  func()
	sent     []sentTx
}

func (s *fakeSigner) Address() string { return s.address }

func (s *fakeSigner) Bind(string) Contract { return s.contract.bound(s.address) }

func (s *fakeSigner) SendTransaction(_ context.Context, to string, value *big.Int) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, sentTx{to: to, value: value})
	return s.hash, nil
}

func (s *fakeSigner) WaitMined(context.Context, string) (*chain.TxReceipt, error) {
	if s.waitErr != nil {
		return s.receipt, s.waitErr
	}
	if s.onMined != nil {
		s.onMined()
	}
	return s.receipt, nil
}

func detectorFor(p Provider) Detector {
	return func(context.Context) (Provider, error) { return p, nil }
}

func noProvider(context.Context) (Provider, error) {
	return nil, errors.New("no rpc endpoint configured")
}
