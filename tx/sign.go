package tx

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
)

// MaxSignatureLen is the longest low-S DER signature plus its sighash byte.
const MaxSignatureLen = 72

// Signer produces the unlocking script of one input. It has the same shape as
// go-sdk's UnlockingScriptTemplate so P2PKH templates satisfy it directly.
type Signer interface {
	Sign(tx *transaction.Transaction, inputIndex uint32) (*script.Script, error)
	EstimateLength(tx *transaction.Transaction, inputIndex uint32) uint32
}

// Measurer is implemented by signers that can stand in a placeholder of the
// exact final unlocking-script length during a fee measurement pass.
type Measurer interface {
	Placeholder() Signer
}

// KeySigner unlocks P2PKH outputs owned by a single private key.
type KeySigner struct {
	key      *ec.PrivateKey
	unlocker *p2pkh.P2PKH
}

// NewKeySigner creates a P2PKH signer for key using SIGHASH_ALL|FORKID.
func NewKeySigner(key *ec.PrivateKey) (*KeySigner, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: private key", ErrNilParam)
	}
	unlocker, err := p2pkh.Unlock(key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH unlocker: %w", ErrSigningFailed, err)
	}
	return &KeySigner{key: key, unlocker: unlocker}, nil
}

func (k *KeySigner) Sign(tx *transaction.Transaction, inputIndex uint32) (*script.Script, error) {
	return k.unlocker.Sign(tx, inputIndex)
}

func (k *KeySigner) EstimateLength(tx *transaction.Transaction, inputIndex uint32) uint32 {
	return k.unlocker.EstimateLength(tx, inputIndex)
}

// PubKey returns the signer's public key.
func (k *KeySigner) PubKey() *ec.PublicKey {
	return k.key.PubKey()
}

// LockingScript returns the P2PKH script this signer can unlock.
func (k *KeySigner) LockingScript() ([]byte, error) {
	return P2PKHScriptFromPubKey(k.key.PubKey())
}

// Placeholder returns a DummySigner producing a script as long as a real P2PKH unlock.
func (k *KeySigner) Placeholder() Signer {
	return NewDummySigner(k.key.PubKey().Compressed())
}

// DummySigner emits a fixed-length placeholder signature followed by constant
// pushes. It only ever takes part in size measurement; its output is never
// broadcast.
type DummySigner struct {
	tail [][]byte
}

// NewDummySigner creates a placeholder signer appending tail after the signature.
func NewDummySigner(tail ...[]byte) *DummySigner {
	return &DummySigner{tail: tail}
}

func (d *DummySigner) Sign(_ *transaction.Transaction, _ uint32) (*script.Script, error) {
	s := &script.Script{}
	if err := s.AppendPushData(PlaceholderSignature()); err != nil {
		return nil, fmt.Errorf("%w: placeholder signature: %w", ErrSigningFailed, err)
	}
	for _, push := range d.tail {
		if err := s.AppendPushData(push); err != nil {
			return nil, fmt.Errorf("%w: placeholder push: %w", ErrSigningFailed, err)
		}
	}
	return s, nil
}

func (d *DummySigner) EstimateLength(tx *transaction.Transaction, inputIndex uint32) uint32 {
	s, err := d.Sign(tx, inputIndex)
	if err != nil {
		return 0
	}
	return uint32(len(*s))
}

// Placeholder returns the signer itself.
func (d *DummySigner) Placeholder() Signer {
	return d
}

// PlaceholderSignature returns a deterministic MaxSignatureLen-byte stand-in
// for a DER signature with a SIGHASH_ALL|FORKID suffix.
func PlaceholderSignature() []byte {
	sig := make([]byte, MaxSignatureLen)
	sig[0] = 0x30
	sig[len(sig)-1] = byte(sighash.AllForkID)
	return sig
}

// SignInput signs input inputIndex of t with key under SIGHASH_ALL|FORKID.
// The input's source output must be attached; its locking script is used as
// the script code, so P2SH spends attach the redeem script there.
func SignInput(t *transaction.Transaction, inputIndex uint32, key *ec.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: private key", ErrNilParam)
	}
	hash, err := t.CalcInputSignatureHash(inputIndex, sighash.AllForkID)
	if err != nil {
		return nil, fmt.Errorf("%w: sighash for input %d: %w", ErrSigningFailed, inputIndex, err)
	}
	sig, err := key.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: sign input %d: %w", ErrSigningFailed, inputIndex, err)
	}
	return append(sig.Serialize(), byte(sighash.AllForkID)), nil
}

// PlaceholderFor returns the measurement stand-in for s.
func PlaceholderFor(s Signer) (Signer, error) {
	if m, ok := s.(Measurer); ok {
		return m.Placeholder(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNoPlaceholder, s)
}
