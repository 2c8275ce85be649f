package tx

const (
	// DustLimit is the minimum output value in satoshis.
	DustLimit = uint64(546)

	// DefaultFeeRate is the default fee rate in sat/kB.
	DefaultFeeRate = uint64(1200)

	// TxOverheadBytes covers version, locktime and the input/output count varints.
	TxOverheadBytes = 10

	// P2PKHInputBytes is the size of an input spending P2PKH with a 72-byte signature.
	P2PKHInputBytes = 148

	// P2PKHOutputBytes is the size of a P2PKH output.
	P2PKHOutputBytes = 34

	// CompressedPubKeyLen is the length of a compressed public key.
	CompressedPubKeyLen = 33

	// TxIDLen is the length of a transaction ID.
	TxIDLen = 32
)

// EstimateFee estimates the transaction fee for a given size and fee rate.
// Returns ceil(txSizeBytes * feeRate / 1000). A zero rate selects DefaultFeeRate.
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := uint64(txSizeBytes) * feeRate
	return (fee + 999) / 1000
}

// EstimateTxSize estimates the size of a transaction made of P2PKH inputs and
// outputs plus extraBytes of anything else (OP_RETURN outputs, covenant inputs).
//
//	base:   version(4) + locktime(4) + input count(1) + output count(1) = 10
//	input:  prevout(36) + scriptlen(1) + sig push(73) + pubkey push(34) + sequence(4) = 148
//	output: value(8) + scriptlen(1) + script(25) = 34
func EstimateTxSize(numInputs, numOutputs, extraBytes int) int {
	return TxOverheadBytes + numInputs*P2PKHInputBytes + numOutputs*P2PKHOutputBytes + extraBytes
}

// EstimateFeeFor combines EstimateTxSize and EstimateFee.
func EstimateFeeFor(numInputs, numOutputs, extraBytes int, feeRate uint64) uint64 {
	return EstimateFee(EstimateTxSize(numInputs, numOutputs, extraBytes), feeRate)
}

// OutputSize returns the serialized size of an output with the given script length.
func OutputSize(scriptLen int) int {
	return 8 + VarIntSize(uint64(scriptLen)) + scriptLen
}

// VarIntSize returns the length of the Bitcoin compact-size encoding of n.
func VarIntSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
