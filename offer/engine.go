package offer

import (
	"bytes"
	"context"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"go.uber.org/zap"

	"github.com/xolosArmy/RMZWallet-sub000/config"
	"github.com/xolosArmy/RMZWallet-sub000/logging"
	"github.com/xolosArmy/RMZWallet-sub000/network"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
	"github.com/xolosArmy/RMZWallet-sub000/wallet"
)

// State is how far a request got. Confirmed is only observed through Status.
type State string

const (
	StateDraft     State = "draft"
	StateFunded    State = "funded"
	StateSigned    State = "signed"
	StateBroadcast State = "broadcast"
	StateConfirmed State = "confirmed"
)

// Result is the outcome of an engine operation. On failure it records the
// last state reached; a Signed result with an error means the transaction
// in TxHex was refused by the node or never reached it.
type Result struct {
	State   State
	TxIDs   []string // broadcast transactions, in order
	TxHex   string   // last signed transaction
	FeeSats uint64   // total fee of the signed transactions
	OfferID string   // listed offer, or the re-listed remainder after a partial accept
}

// Engine builds, signs and broadcasts wallet and offer transactions. It holds
// no wallet state: every call lists UTXOs afresh and signs with the key in
// the request.
type Engine struct {
	chain       network.ChainDataSource
	net         *wallet.NetworkConfig
	log         *zap.Logger
	feeRate     uint64
	dust        uint64
	lookupLimit int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// WithNetwork selects the chain parameters used for addresses.
func WithNetwork(n *wallet.NetworkConfig) Option {
	return func(e *Engine) {
		if n != nil {
			e.net = n
		}
	}
}

// WithFeeRate sets the fee rate in sat/kB.
func WithFeeRate(rate uint64) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.feeRate = rate
		}
	}
}

// WithDust sets the value of token-carrying and covenant outputs.
func WithDust(dust uint64) Option {
	return func(e *Engine) {
		if dust > 0 {
			e.dust = dust
		}
	}
}

// WithLookupConcurrency bounds parallel fetches in LookupOffers.
func WithLookupConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookupLimit = n
		}
	}
}

// NewEngine returns an engine over chain with mainnet defaults.
func NewEngine(chain network.ChainDataSource, opts ...Option) (*Engine, error) {
	if chain == nil {
		return nil, ErrNoChainSource
	}
	e := &Engine{
		chain:       chain,
		net:         &wallet.MainNet,
		log:         zap.NewNop(),
		feeRate:     tx.DefaultFeeRate,
		dust:        tx.DustLimit,
		lookupLimit: config.DefaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewEngineFromConfig validates cfg and wires an RPC data source behind a
// transaction cache. env supplies RMZ_RPC_* fallbacks for unset RPC fields.
func NewEngineFromConfig(cfg config.Config, log *zap.Logger, env map[string]string) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	netParams, err := cfg.WalletNetwork()
	if err != nil {
		return nil, err
	}
	rpcCfg, err := cfg.ResolveRPC(env)
	if err != nil {
		return nil, err
	}
	log = logging.OrNop(log)
	rpc := network.NewRPCClient(*rpcCfg,
		network.WithLogger(log.Named("rpc")),
		network.WithLabelConcurrency(cfg.LookupConcurrency))
	chain := network.NewCachedSource(rpc, cfg.TxCacheSize, cfg.TxCacheTTL)

	return NewEngine(chain,
		WithLogger(log),
		WithNetwork(netParams),
		WithFeeRate(cfg.FeeRatePerKb),
		WithDust(cfg.DustSats),
		WithLookupConcurrency(cfg.LookupConcurrency))
}

// Network returns the chain parameters the engine encodes addresses for.
func (e *Engine) Network() *wallet.NetworkConfig { return e.net }

// Status reports whether txid is confirmed.
func (e *Engine) Status(ctx context.Context, txid string) (State, error) {
	st, err := e.chain.GetTxStatus(ctx, txid)
	if err != nil {
		return "", err
	}
	if st.Confirmed {
		return StateConfirmed, nil
	}
	return StateBroadcast, nil
}

// owner is the wallet side of a request: its key, P2PKH signer and script.
type owner struct {
	key    *ec.PrivateKey
	signer *tx.KeySigner
	script []byte
}

func newOwner(key *ec.PrivateKey) (*owner, error) {
	signer, err := tx.NewKeySigner(key)
	if err != nil {
		return nil, err
	}
	script, err := signer.LockingScript()
	if err != nil {
		return nil, err
	}
	return &owner{key: key, signer: signer, script: script}, nil
}

// utxos lists the owner's unspent outputs. Only outputs locked to the
// owner's P2PKH script are returned, so every one can be signed.
func (e *Engine) utxos(ctx context.Context, o *owner) ([]*tx.UTXO, error) {
	addr, err := e.net.Address(o.script)
	if err != nil {
		return nil, err
	}
	all, err := e.chain.ListUnspent(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("offer: list unspent for %s: %w", addr, err)
	}
	own := make([]*tx.UTXO, 0, len(all))
	for _, u := range all {
		if bytes.Equal(u.Script, o.script) {
			own = append(own, u)
		}
	}
	return own, nil
}

// walletInputs pairs utxos with the owner's signer.
func (o *owner) walletInputs(utxos []*tx.UTXO) []tx.Input {
	inputs := make([]tx.Input, len(utxos))
	for i, u := range utxos {
		inputs[i] = tx.Input{UTXO: u, Signer: o.signer}
	}
	return inputs
}

// sign assembles the transaction and records it on res.
func (e *Engine) sign(res *Result, inputs []tx.Input, outputs []tx.Output, lockTime uint32) (*tx.Built, error) {
	built, err := tx.Assemble(inputs, outputs, lockTime)
	if err != nil {
		return nil, err
	}
	var in uint64
	for _, i := range inputs {
		in += i.UTXO.Value
	}
	res.State = StateSigned
	res.TxHex = built.Hex()
	res.FeeSats += in - sumValues(outputs)
	return built, nil
}

// broadcast submits built. Errors from the data source are returned as they
// are; a refusal stays ErrBroadcastRejected.
func (e *Engine) broadcast(ctx context.Context, res *Result, built *tx.Built) error {
	txid, err := e.chain.BroadcastTx(ctx, built.Hex())
	if err != nil {
		e.log.Warn("broadcast failed", zap.String("txid", built.TxID), zap.Error(err))
		return err
	}
	if txid != built.TxID {
		e.log.Warn("node returned a different txid", zap.String("built", built.TxID), zap.String("node", txid))
	}
	res.TxIDs = append(res.TxIDs, built.TxID)
	res.State = StateBroadcast
	return nil
}
