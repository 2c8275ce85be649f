package tx

import (
	"strings"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKeyPair(t *testing.T) (*ec.PrivateKey, *ec.PublicKey) {
	t.Helper()
	privKey, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return privKey, privKey.PubKey()
}

func testP2PKHUTXO(t *testing.T, pub *ec.PublicKey, seed string, vout uint32, value uint64) *UTXO {
	t.Helper()
	lock, err := P2PKHScriptFromPubKey(pub)
	require.NoError(t, err)
	return &UTXO{
		Outpoint: Outpoint{TxID: strings.Repeat(seed, 64), Vout: vout},
		Value:    value,
		Script:   lock,
	}
}

// --- Fee estimation tests ---

func TestEstimateFee(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate uint64
		want uint64
	}{
		{"one input two outputs", 226, 1200, 272},
		{"exact kilobyte", 1000, 1200, 1200},
		{"rounds up", 1, 1200, 2},
		{"1 sat/B", 219, 1000, 219},
		{"default rate", 1000, 0, DefaultFeeRate},
		{"empty", 0, 1200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateFee(tt.size, tt.rate))
		})
	}
}

func TestEstimateTxSize(t *testing.T) {
	assert.Equal(t, 10, EstimateTxSize(0, 0, 0))
	assert.Equal(t, 10+148+2*34, EstimateTxSize(1, 2, 0))
	assert.Equal(t, 10+3*148+34+40, EstimateTxSize(3, 1, 40))
}

func TestEstimateFeeFor(t *testing.T) {
	// 10 + 148 + 68 = 226 bytes at 1200 sat/kB.
	assert.Equal(t, uint64(272), EstimateFeeFor(1, 2, 0, 1200))
}

func TestOutputSize(t *testing.T) {
	assert.Equal(t, P2PKHOutputBytes, OutputSize(25))
	assert.Equal(t, 8+3+300, OutputSize(300))
}

func TestValidateTxID(t *testing.T) {
	got, err := ValidateTxID(strings.Repeat("AB", 32))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 32), got)

	_, err = ValidateTxID("abcd")
	assert.ErrorIs(t, err, ErrInvalidTxID)

	_, err = ValidateTxID(strings.Repeat("zz", 32))
	assert.ErrorIs(t, err, ErrInvalidTxID)
}

func TestOutpointString(t *testing.T) {
	op := Outpoint{TxID: strings.Repeat("ab", 32), Vout: 3}
	assert.Equal(t, strings.Repeat("ab", 32)+":3", op.String())
}

func TestProtocolString(t *testing.T) {
	assert.Equal(t, "SLP", ProtocolSLP.String())
	assert.Equal(t, "ALP", ProtocolALP.String())
	assert.Equal(t, "none", ProtocolNone.String())
}

// --- OP_RETURN message tests ---

func TestBuildMessageScript_RoundTrip(t *testing.T) {
	s, err := BuildMessageScript("gm eCash")
	require.NoError(t, err)
	assert.True(t, IsOPReturn(s))

	msg, ok, err := ParseMessageScript(s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gm eCash", msg)
}

func TestBuildMessageScript_Errors(t *testing.T) {
	_, err := BuildMessageScript("")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = BuildMessageScript(string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = BuildMessageScript(strings.Repeat("x", MaxOPReturnBytes))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestParseMessageScript_NotMessage(t *testing.T) {
	s, err := BuildOPReturnScript([][]byte{[]byte("SLP\x00")})
	require.NoError(t, err)
	_, ok, err := ParseMessageScript(s)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseMessageScript([]byte{0x76, 0xa9})
	require.NoError(t, err)
	assert.False(t, ok)
}
