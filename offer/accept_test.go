package offer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolosArmy/RMZWallet-sub000/agora"
	"github.com/xolosArmy/RMZWallet-sub000/coinselect"
	"github.com/xolosArmy/RMZWallet-sub000/network"
	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// --- Partial ---

func TestAccept_PartialLeavesRemainder(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, buyer, 50_000, nil)

	id, err := agora.ParseOfferID(listing.OfferID)
	require.NoError(t, err)
	before, err := e.FetchOffer(context.Background(), id, testTokenID)
	require.NoError(t, err)
	asked, err := before.AskedSats(300)
	require.NoError(t, err)

	res, err := e.Accept(context.Background(), AcceptRequest{
		Key:           buyer,
		OfferID:       listing.OfferID,
		TokenID:       testTokenID,
		AcceptedAtoms: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, StateBroadcast, res.State)
	require.Len(t, res.TxIDs, 1)
	assert.Equal(t, res.TxIDs[0]+":2", res.OfferID)

	parsed := f.fetched(t, res.TxIDs[0])
	require.Len(t, parsed.Outputs, 5, "SEND, payout, leftover covenant, buyer, change")
	assert.Equal(t, id.TxID, parsed.Inputs[0].SourceTXID.String())
	assert.Equal(t, id.Vout, parsed.Inputs[0].SourceTxOutIndex)
	assert.Equal(t, asked, parsed.Outputs[1].Satoshis)
	assert.Equal(t, p2pkh(t, maker), outScript(parsed, 1))
	assert.Equal(t, p2pkh(t, buyer), outScript(parsed, 3))
	assert.Equal(t, p2pkh(t, buyer), outScript(parsed, 4))
	requireFeePaid(t, parsed, tx.DustLimit+50_000)

	entries, err := token.OutputEntries(outScript(parsed, 0), res.TxIDs[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(700), entries[2].Atoms)
	assert.Equal(t, uint64(300), entries[3].Atoms)

	leftoverID, err := agora.ParseOfferID(res.OfferID)
	require.NoError(t, err)
	leftover, err := e.FetchOffer(context.Background(), leftoverID, testTokenID)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), leftover.OfferedAtoms())
	assert.Equal(t, maker.PubKey().Compressed(), leftover.CancelPk())

	_, err = e.FetchOffer(context.Background(), id, testTokenID)
	assert.ErrorIs(t, err, ErrOfferSpent)
}

func TestAccept_PartialZeroTakesAll(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, buyer, 50_000, nil)

	res, err := e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID})
	require.NoError(t, err)
	assert.Empty(t, res.OfferID, "nothing is re-listed")

	parsed := f.fetched(t, res.TxIDs[0])
	require.Len(t, parsed.Outputs, 4, "SEND, payout, buyer, change")
	assert.Equal(t, p2pkh(t, buyer), outScript(parsed, 2))
	entries, err := token.OutputEntries(outScript(parsed, 0), res.TxIDs[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), entries[2].Atoms)
}

func TestAccept_PartialBelowMinimum(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, buyer, 50_000, nil)
	sent := f.broadcasts()

	res, err := e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID, AcceptedAtoms: 50})
	assert.ErrorIs(t, err, agora.ErrBelowMinimumAccept)
	assert.Equal(t, StateDraft, res.State)
	assert.Equal(t, sent, f.broadcasts())
}

// --- Oneshot ---

func TestAccept_Oneshot(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listSLPOneshot(t, e, f, maker)
	f.give(t, buyer, 20_000, nil)

	res, err := e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID})
	require.NoError(t, err)
	assert.Empty(t, res.OfferID)

	id, err := agora.ParseOfferID(listing.OfferID)
	require.NoError(t, err)
	offer, err := e.FetchOffer(context.Background(), id, testTokenID)
	require.NoError(t, err)

	parsed := f.fetched(t, res.TxIDs[0])
	for i, want := range offer.Oneshot.EnforcedOutputs {
		assert.Equal(t, want.Value, parsed.Outputs[i].Satoshis, "enforced output %d", i)
		assert.Equal(t, want.Script, outScript(parsed, i), "enforced output %d", i)
	}
	assert.Equal(t, p2pkh(t, buyer), outScript(parsed, 2))
	requireFeePaid(t, parsed, tx.DustLimit+20_000)
}

// Enforced outputs [SEND, payout 5000] with too little buyer XEC.
func TestAccept_OneshotInsufficientXEC(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listSLPOneshot(t, e, f, maker)
	f.give(t, buyer, 3000, nil)
	f.give(t, buyer, 1000, nil)
	sent := f.broadcasts()

	res, err := e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID})
	require.ErrorIs(t, err, coinselect.ErrInsufficientFunds)
	kind, ok := coinselect.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, coinselect.KindXEC, kind)
	assert.Equal(t, StateDraft, res.State)
	assert.Equal(t, sent, f.broadcasts())
}

func TestAccept_OneshotRejectsPartialAmount(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	f.give(t, maker, tx.DustLimit, slpEntry(token.TypeSLPFungible, 10))
	f.give(t, maker, 20_000, nil)
	listing, err := e.ListOneshot(context.Background(), ListOneshotRequest{Key: maker, TokenID: testTokenID, OfferedAtoms: 10, AskedSats: 5000})
	require.NoError(t, err)
	f.give(t, buyer, 20_000, nil)

	_, err = e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID, AcceptedAtoms: 4})
	assert.ErrorIs(t, err, agora.ErrInvalidParams)
}

// --- Lookup failures ---

func TestAccept_Errors(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, buyer := newTestKey(t), newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, buyer, 50_000, nil)

	tests := []struct {
		name    string
		req     AcceptRequest
		wantErr error
	}{
		{"invalid offer id", AcceptRequest{Key: buyer, OfferID: "xyz", TokenID: testTokenID}, agora.ErrInvalidOfferID},
		{"unknown tx", AcceptRequest{Key: buyer, OfferID: strings.Repeat("cd", 32) + ":1", TokenID: testTokenID}, network.ErrTxNotFound},
		{"token mismatch", AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: strings.Repeat("cd", 32)}, agora.ErrTokenMismatch},
		{"not a covenant", AcceptRequest{Key: buyer, OfferID: listing.TxIDs[0] + ":2", TokenID: testTokenID}, agora.ErrNotCovenant},
		{"no key", AcceptRequest{OfferID: listing.OfferID, TokenID: testTokenID}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Accept(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateDraft, res.State)
		})
	}
}

// --- Cancel ---

func TestCancel(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker := newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, maker, 5_000, nil)

	res, err := e.Cancel(context.Background(), CancelRequest{Key: maker, OfferID: listing.OfferID, TokenID: testTokenID})
	require.NoError(t, err)
	assert.Equal(t, StateBroadcast, res.State)

	parsed := f.fetched(t, res.TxIDs[0])
	assert.Equal(t, listing.TxIDs[0], parsed.Inputs[0].SourceTXID.String())
	assert.Equal(t, p2pkh(t, maker), outScript(parsed, 1))
	entries, err := token.OutputEntries(outScript(parsed, 0), res.TxIDs[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), entries[1].Atoms)

	buyer := newTestKey(t)
	f.give(t, buyer, 50_000, nil)
	sent := f.broadcasts()
	_, err = e.Accept(context.Background(), AcceptRequest{Key: buyer, OfferID: listing.OfferID, TokenID: testTokenID})
	assert.ErrorIs(t, err, ErrOfferSpent)
	assert.Equal(t, sent, f.broadcasts())
}

func TestCancel_OneshotSLP(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker := newTestKey(t)
	listing := listSLPOneshot(t, e, f, maker)
	f.give(t, maker, 5_000, nil)

	res, err := e.Cancel(context.Background(), CancelRequest{Key: maker, OfferID: listing.OfferID, TokenID: testTokenID})
	require.NoError(t, err)
	parsed := f.fetched(t, res.TxIDs[0])
	assert.Equal(t, p2pkh(t, maker), outScript(parsed, 1))
}

func TestCancel_NotOwner(t *testing.T) {
	f := newFakeChain()
	e := newTestEngine(t, f)
	maker, other := newTestKey(t), newTestKey(t)
	listing := listALPPartial(t, e, f, maker)
	f.give(t, other, 5_000, nil)
	sent := f.broadcasts()

	res, err := e.Cancel(context.Background(), CancelRequest{Key: other, OfferID: listing.OfferID, TokenID: testTokenID})
	assert.ErrorIs(t, err, ErrNotOfferOwner)
	assert.Equal(t, StateDraft, res.State)
	assert.Equal(t, sent, f.broadcasts())
}
