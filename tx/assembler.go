package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// FinalSequence disables locktime for an input; LockTimeSequence enables it.
const (
	FinalSequence    = uint32(0xffffffff)
	LockTimeSequence = uint32(0xfffffffe)
)

// Input is an outpoint to spend together with the capability that unlocks it.
type Input struct {
	UTXO   *UTXO
	Signer Signer

	// ScriptCode replaces the UTXO's locking script when computing the sighash.
	// P2SH spends set it to the redeem script.
	ScriptCode []byte
}

// Built is a fully signed transaction.
type Built struct {
	Tx   *transaction.Transaction
	Raw  []byte
	TxID string
}

// Hex returns the serialized transaction as hex.
func (b *Built) Hex() string {
	return hex.EncodeToString(b.Raw)
}

// Size returns the serialized size in bytes.
func (b *Built) Size() int {
	return len(b.Raw)
}

// Outpoint returns the outpoint of output vout.
func (b *Built) Outpoint(vout uint32) Outpoint {
	return Outpoint{TxID: b.TxID, Vout: vout}
}

// Assemble builds a transaction from ordered inputs and outputs and runs every
// input's signer. The engine decides amounts; Assemble only serializes and signs.
func Assemble(inputs []Input, outputs []Output, lockTime uint32) (*Built, error) {
	t, err := buildUnsigned(inputs, outputs, lockTime)
	if err != nil {
		return nil, err
	}
	signers := make([]Signer, len(inputs))
	for i, in := range inputs {
		if in.Signer == nil {
			return nil, fmt.Errorf("%w: input %d has no signer", ErrNilParam, i)
		}
		signers[i] = in.Signer
	}
	if err := signAll(t, signers); err != nil {
		return nil, err
	}
	return finish(t), nil
}

// MeasureSize builds the same transaction Assemble would, but with every
// signer replaced by its placeholder, and returns the serialized size.
func MeasureSize(inputs []Input, outputs []Output, lockTime uint32) (int, error) {
	t, err := buildUnsigned(inputs, outputs, lockTime)
	if err != nil {
		return 0, err
	}
	signers := make([]Signer, len(inputs))
	for i, in := range inputs {
		if in.Signer == nil {
			return 0, fmt.Errorf("%w: input %d has no signer", ErrNilParam, i)
		}
		p, err := PlaceholderFor(in.Signer)
		if err != nil {
			return 0, fmt.Errorf("input %d: %w", i, err)
		}
		signers[i] = p
	}
	if err := signAll(t, signers); err != nil {
		return 0, err
	}
	return len(t.Bytes()), nil
}

// MeasureFee returns the fee for the measured size of the transaction.
func MeasureFee(inputs []Input, outputs []Output, lockTime uint32, feeRate uint64) (uint64, error) {
	size, err := MeasureSize(inputs, outputs, lockTime)
	if err != nil {
		return 0, err
	}
	return EstimateFee(size, feeRate), nil
}

// Decode parses raw transaction bytes.
func Decode(raw []byte) (*transaction.Transaction, error) {
	t, err := transaction.NewTransactionFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode transaction: %w", ErrInvalidParams, err)
	}
	return t, nil
}

// TxIDHex returns the display-order txid of t.
func TxIDHex(t *transaction.Transaction) string {
	return t.TxID().String()
}

func buildUnsigned(inputs []Input, outputs []Output, lockTime uint32) (*transaction.Transaction, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrInvalidParams)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrInvalidParams)
	}

	sequence := FinalSequence
	if lockTime != 0 {
		sequence = LockTimeSequence
	}

	t := transaction.NewTransaction()
	t.LockTime = lockTime
	for i, in := range inputs {
		if in.UTXO == nil {
			return nil, fmt.Errorf("%w: input %d utxo", ErrNilParam, i)
		}
		txidHash, err := hashFromTxID(in.UTXO.TxID)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		t.AddInput(&transaction.TransactionInput{
			SourceTXID:       txidHash,
			SourceTxOutIndex: in.UTXO.Vout,
			SequenceNumber:   sequence,
		})

		scriptCode := in.UTXO.Script
		if len(in.ScriptCode) > 0 {
			scriptCode = in.ScriptCode
		}
		t.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      in.UTXO.Value,
			LockingScript: script.NewFromBytes(scriptCode),
		})
	}
	for _, out := range outputs {
		t.AddOutput(&transaction.TransactionOutput{
			Satoshis:      out.Value,
			LockingScript: script.NewFromBytes(out.Script),
		})
	}
	return t, nil
}

func signAll(t *transaction.Transaction, signers []Signer) error {
	for i, s := range signers {
		unlock, err := s.Sign(t, uint32(i))
		if err != nil {
			return fmt.Errorf("%w: input %d: %w", ErrSigningFailed, i, err)
		}
		t.Inputs[i].UnlockingScript = unlock
	}
	return nil
}

func finish(t *transaction.Transaction) *Built {
	return &Built{
		Tx:   t,
		Raw:  t.Bytes(),
		TxID: TxIDHex(t),
	}
}

// hashFromTxID converts a display-order txid to a chainhash in internal byte order.
func hashFromTxID(txid string) (*chainhash.Hash, error) {
	b, err := hex.DecodeString(txid)
	if err != nil || len(b) != TxIDLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, txid)
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return chainhash.NewHash(b)
}
