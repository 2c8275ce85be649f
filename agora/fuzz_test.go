package agora

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

func FuzzDecodePartialNoPanic(f *testing.F) {
	f.Add([]byte("AGR0\x07PARTIAL"), uint64(1000))
	f.Add([]byte{}, uint64(0))
	f.Add(append([]byte("AGR0\x07PARTIAL\x01\x00"), make([]byte, 61)...), uint64(1<<16))
	f.Fuzz(func(t *testing.T, ad []byte, offered uint64) {
		_, _ = DecodePartial(ad, offered)
		_, _ = AdVariant(ad)
	})
}

func FuzzDecodeOneshotNoPanic(f *testing.F) {
	f.Add([]byte("AGR0\x07ONESHOT\x02"), uint64(1))
	f.Add([]byte("AGR0"), uint64(0))
	f.Fuzz(func(t *testing.T, ad []byte, offered uint64) {
		_, _ = DecodeOneshot(ad, testTokenID, offered)
	})
}

func FuzzPartialAdRoundTrip(f *testing.F) {
	f.Add(uint64(1000), uint64(10_000_000_000), uint64(100), uint32(0))
	f.Add(uint64(1)<<40, uint64(1), uint64(1)<<20, uint32(500_000))
	f.Fuzz(func(t *testing.T, offered, price, min uint64, lockTime uint32) {
		req := partialRequest(t, offered, price, min)
		req.EnforcedLockTime = lockTime
		req.ScriptIntegerBits = 32
		p, err := NewPartialParams(req)
		if err != nil {
			return
		}
		ad, err := p.Ad()
		require.NoError(t, err)
		back, err := DecodePartial(ad, p.OfferedAtoms())
		require.NoError(t, err)
		require.Equal(t, p.OfferedAtoms(), back.OfferedAtoms())
		require.Equal(t, p.AtomsScaleFactor, back.AtomsScaleFactor)
		require.Equal(t, p.ScaledTruncAtomsPerTruncSat, back.ScaledTruncAtomsPerTruncSat)
		require.Equal(t, p.MinAcceptedAtoms(), back.MinAcceptedAtoms())
		require.Equal(t, lockTime, back.EnforcedLockTime)
	})
}

func FuzzParseOfferIDNoPanic(f *testing.F) {
	f.Add("xyz")
	f.Add(`{"txid":"00","vout":1}`)
	f.Fuzz(func(t *testing.T, s string) {
		o, err := ParseOfferID(s)
		if err != nil {
			return
		}
		_, err = tx.ValidateTxID(o.TxID)
		require.NoError(t, err)
	})
}
