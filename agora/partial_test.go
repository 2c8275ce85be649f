package agora

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

var testTokenID = strings.Repeat("ab", 32)

func newTestKey(t *testing.T) *ec.PrivateKey {
	t.Helper()
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

func partialRequest(t *testing.T, offered, price, min uint64) PartialRequest {
	t.Helper()
	return PartialRequest{
		OfferedAtoms:         offered,
		PriceNanoSatsPerAtom: price,
		MinAcceptedAtoms:     min,
		MakerPk:              newTestKey(t).PubKey().Compressed(),
		TokenID:              testTokenID,
		TokenType:            1,
		Protocol:             tx.ProtocolSLP,
	}
}

// --- Parameter derivation ---

func TestNewPartialParams_ThirtyTwoBitIntegers(t *testing.T) {
	req := partialRequest(t, 1000, 10*NanoSatsPerSat, 100)
	req.ScriptIntegerBits = 32

	p, err := NewPartialParams(req)
	require.NoError(t, err)
	assert.Equal(t, byte(0), p.NumAtomsTruncBytes)
	assert.Equal(t, byte(0), p.NumSatsTruncBytes)
	assert.Equal(t, uint64(2147483), p.AtomsScaleFactor)
	assert.Equal(t, uint64(214748), p.ScaledTruncAtomsPerTruncSat)
	assert.Equal(t, uint64(1000), p.OfferedAtoms())
	assert.Equal(t, uint64(100), p.MinAcceptedAtoms())

	asked, err := p.AskedSats(1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10001), asked)

	asked, err = p.AskedSats(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), asked)

	price, err := p.PriceNanoSatsPerAtom(1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_001_000_000), price)
}

func TestNewPartialParams_TruncatesAtoms(t *testing.T) {
	offered := uint64(1) << 40
	req := partialRequest(t, offered, 1, offered/2)
	req.ScriptIntegerBits = 32

	p, err := NewPartialParams(req)
	require.NoError(t, err)
	assert.Equal(t, byte(2), p.NumAtomsTruncBytes)
	assert.Equal(t, uint64(1)<<24, p.TruncAtoms)
	assert.Equal(t, offered, p.OfferedAtoms())
	assert.Equal(t, uint64(127), p.AtomsScaleFactor)

	asked, err := p.AskedSats(offered)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, asked, uint64(1099))
	assert.LessOrEqual(t, asked, uint64(1101))

	assert.Equal(t, offered-65536, p.PrepareAcceptedAtoms(offered-1))
	assert.Equal(t, offered, p.PrepareAcceptedAtoms(offered+1))
	assert.ErrorIs(t, p.ValidateAccept(offered/2+1), ErrGranularityMismatch)
	_, err = p.AskedSats(offered - 1)
	assert.ErrorIs(t, err, ErrGranularityMismatch)
}

func TestNewPartialParams_TruncatesSats(t *testing.T) {
	req := partialRequest(t, 1000, 10_000_000*NanoSatsPerSat, 1000)
	req.ScriptIntegerBits = 32

	p, err := NewPartialParams(req)
	require.NoError(t, err)
	assert.Equal(t, byte(1), p.NumSatsTruncBytes)

	asked, err := p.AskedSats(1000)
	require.NoError(t, err)
	assert.Zero(t, asked%256, "asked sats are whole truncated units")
	assert.GreaterOrEqual(t, asked, uint64(10_000_000_000))
}

func TestNewPartialParams_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PartialRequest)
		err    error
	}{
		{"zero price", func(r *PartialRequest) { r.PriceNanoSatsPerAtom = 0 }, ErrPriceOutOfRange},
		{"price too low", func(r *PartialRequest) { r.OfferedAtoms, r.MinAcceptedAtoms, r.PriceNanoSatsPerAtom = 1, 1, 1 }, ErrPriceOutOfRange},
		{"zero offered", func(r *PartialRequest) { r.OfferedAtoms = 0 }, ErrInvalidParams},
		{"zero minimum", func(r *PartialRequest) { r.MinAcceptedAtoms = 0 }, ErrInvalidParams},
		{"minimum above offered", func(r *PartialRequest) { r.MinAcceptedAtoms = r.OfferedAtoms + 1 }, ErrInvalidParams},
		{"short maker key", func(r *PartialRequest) { r.MakerPk = r.MakerPk[:32] }, ErrInvalidParams},
		{"bad token id", func(r *PartialRequest) { r.TokenID = "xyz" }, ErrInvalidParams},
		{"no protocol", func(r *PartialRequest) { r.Protocol = tx.ProtocolNone }, ErrInvalidParams},
		{"ALP above 48 bits", func(r *PartialRequest) {
			r.Protocol = tx.ProtocolALP
			r.OfferedAtoms = 1 << 50
		}, ErrInvalidParams},
		{"minimum pays dust", func(r *PartialRequest) { r.PriceNanoSatsPerAtom, r.MinAcceptedAtoms = NanoSatsPerSat, 1 }, ErrInvalidParams},
		{"integer bits", func(r *PartialRequest) { r.ScriptIntegerBits = 8 }, ErrInvalidParams},
		{"integer bits beyond the interpreter", func(r *PartialRequest) { r.ScriptIntegerBits = 64 }, ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := partialRequest(t, 1000, 10*NanoSatsPerSat, 100)
			tt.modify(&req)
			_, err := NewPartialParams(req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPartialParams_ValidateAccept(t *testing.T) {
	p, err := NewPartialParams(partialRequest(t, 1000, 10*NanoSatsPerSat, 100))
	require.NoError(t, err)

	assert.NoError(t, p.ValidateAccept(100))
	assert.NoError(t, p.ValidateAccept(1000))
	assert.ErrorIs(t, p.ValidateAccept(99), ErrBelowMinimumAccept)
	assert.ErrorIs(t, p.ValidateAccept(0), ErrBelowMinimumAccept)
	assert.ErrorIs(t, p.ValidateAccept(1001), ErrInvalidParams)

	// A remainder below the minimum can still be taken whole.
	p.TruncAtoms = 50
	assert.NoError(t, p.ValidateAccept(50))
	assert.ErrorIs(t, p.ValidateAccept(40), ErrBelowMinimumAccept)
}

func TestPartialParams_AskedSatsNeverBelowPrice(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 300; iter++ {
		offered := uint64(rng.Int63n(1<<47) + 1)
		price := uint64(rng.Int63n(1<<40) + 1)
		bits := []uint{16, 24, 32}[rng.Intn(3)]
		req := partialRequest(t, offered, price, offered)
		req.ScriptIntegerBits = bits
		p, err := NewPartialParams(req)
		if err != nil {
			continue
		}
		accepted := p.PrepareAcceptedAtoms(uint64(rng.Int63n(int64(offered)) + 1))
		if accepted == 0 {
			continue
		}
		asked, err := p.AskedSats(accepted)
		require.NoError(t, err)

		paid := new(big.Int).Mul(new(big.Int).SetUint64(asked), big.NewInt(NanoSatsPerSat))
		want := new(big.Int).Mul(new(big.Int).SetUint64(accepted), new(big.Int).SetUint64(price))
		assert.True(t, paid.Cmp(want) >= 0, "asked %d for %d atoms at %d", asked, accepted, price)
	}
}

// --- Advertisement and granularity ---

func TestPartialAd_RoundTrip(t *testing.T) {
	p, err := NewPartialParams(partialRequest(t, 5000, 3*NanoSatsPerSat, 500))
	require.NoError(t, err)
	p.EnforcedLockTime = 123456

	ad, err := p.Ad()
	require.NoError(t, err)
	assert.True(t, IsAd(ad))
	assert.Len(t, ad, 4+1+7+2+8+8+8+4+33)

	got, err := DecodePartial(ad, p.OfferedAtoms())
	require.NoError(t, err)
	assert.Equal(t, p.TruncAtoms, got.TruncAtoms)
	assert.Equal(t, p.AtomsScaleFactor, got.AtomsScaleFactor)
	assert.Equal(t, p.ScaledTruncAtomsPerTruncSat, got.ScaledTruncAtomsPerTruncSat)
	assert.Equal(t, p.MinAcceptedScaledTruncAtoms, got.MinAcceptedScaledTruncAtoms)
	assert.Equal(t, uint32(123456), got.EnforcedLockTime)
	assert.Equal(t, p.MakerPk, got.MakerPk)
}

func truncAd(t *testing.T, truncBytes byte) []byte {
	t.Helper()
	p := &PartialParams{
		NumAtomsTruncBytes:          truncBytes,
		AtomsScaleFactor:            1000,
		ScaledTruncAtomsPerTruncSat: 10,
		MinAcceptedScaledTruncAtoms: 1000,
		MakerPk:                     newTestKey(t).PubKey().Compressed(),
	}
	ad, err := p.Ad()
	require.NoError(t, err)
	return ad
}

func TestDecodePartial_Granularity(t *testing.T) {
	tests := []struct {
		name       string
		truncBytes byte
		offered    uint64
		wantTrunc  uint64
		err        error
	}{
		{"two bytes exact", 2, 4 << 16, 4, nil},
		{"two bytes off by one", 2, 4<<16 + 1, 0, ErrGranularityMismatch},
		{"two bytes below unit", 2, 1024, 0, ErrGranularityMismatch},
		{"one byte exact", 1, 1024, 4, nil},
		{"one byte off by one", 1, 1025, 0, ErrGranularityMismatch},
		{"no truncation", 0, 1025, 1025, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePartial(truncAd(t, tt.truncBytes), tt.offered)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrunc, p.TruncAtoms)
			assert.Equal(t, tt.offered, p.OfferedAtoms())
		})
	}
}

func TestDecodePartial_Malformed(t *testing.T) {
	ad := truncAd(t, 1)

	_, err := DecodePartial(ad[:len(ad)-1], 256)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodePartial(append(append([]byte{}, ad...), 0), 256)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	bad := append([]byte{}, ad...)
	copy(bad, "AGR1")
	_, err = DecodePartial(bad, 256)
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)

	wrongVariant := append([]byte("AGR0\x07ONESHOT"), ad[12:]...)
	_, err = DecodePartial(wrongVariant, 256)
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)

	unknown := append([]byte("AGR0\x05OTHER"), ad[12:]...)
	_, err = AdVariant(unknown)
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
}
