package token

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// --- ALP sections ---

func TestALPSend_RoundTrip(t *testing.T) {
	tokenID := strings.Repeat("01", 31) + "ff"
	sec, err := ALPSend(tokenID, TypeALPStandard, []uint64{0, 7, MaxU48})
	require.NoError(t, err)

	msg, err := ParseALPSection(sec)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, tx.ProtocolALP, msg.Protocol)
	assert.Equal(t, ActionSend, msg.Action)
	assert.Equal(t, tokenID, msg.TokenID)
	assert.Equal(t, []uint64{0, 7, MaxU48}, msg.Amounts)
	assert.Equal(t, uint64(7), msg.OutputAtoms(2))
}

func TestALPSend_Layout(t *testing.T) {
	tokenID := strings.Repeat("00", 31) + "01"
	sec, err := ALPSend(tokenID, TypeALPStandard, []uint64{1})
	require.NoError(t, err)

	// lokad, type 0, "SEND", token id reversed, count 1, u48 LE amount
	want := "534c5032" + "00" + "0453454e44" + "01" + strings.Repeat("00", 31) + "01" + "010000000000"
	assert.Equal(t, want, hex.EncodeToString(sec))
}

func TestALPSend_AmountOutOfRange(t *testing.T) {
	_, err := ALPSend(testTokenID, TypeALPStandard, []uint64{MaxU48 + 1})
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = ALPSend(testTokenID, TypeALPStandard, make([]uint64, MaxALPOutputs+1))
	assert.ErrorIs(t, err, ErrTooManyOutputs)
}

func TestALPGenesis_RoundTrip(t *testing.T) {
	info := GenesisInfo{
		Ticker:   "ALPX",
		Name:     "ALP Example",
		URL:      "cashtab.com",
		Data:     []byte{0xde, 0xad},
		AuthPub:  make([]byte, 33),
		Decimals: 4,
	}
	sec, err := ALPGenesis(TypeALPStandard, info, []uint64{10, 20}, 1)
	require.NoError(t, err)

	msg, err := ParseALPSection(sec)
	require.NoError(t, err)
	assert.Equal(t, ActionGenesis, msg.Action)
	require.NotNil(t, msg.Genesis)
	assert.Equal(t, info, *msg.Genesis)
	assert.Equal(t, []uint64{10, 20}, msg.Amounts)
	assert.Equal(t, byte(1), msg.NumBatons)
	assert.True(t, msg.IsMintBaton(3))
	assert.False(t, msg.IsMintBaton(2))
}

func TestALPMintAndBurn_RoundTrip(t *testing.T) {
	sec, err := ALPMint(testTokenID, TypeALPStandard, []uint64{99}, 2)
	require.NoError(t, err)
	msg, err := ParseALPSection(sec)
	require.NoError(t, err)
	assert.Equal(t, ActionMint, msg.Action)
	assert.Equal(t, byte(2), msg.NumBatons)

	sec, err = ALPBurn(testTokenID, TypeALPStandard, 12345)
	require.NoError(t, err)
	msg, err = ParseALPSection(sec)
	require.NoError(t, err)
	assert.Equal(t, ActionBurn, msg.Action)
	assert.Equal(t, []uint64{12345}, msg.Amounts)
}

func TestParseALPSection_Foreign(t *testing.T) {
	msg, err := ParseALPSection([]byte("AGR0 some agora ad"))
	assert.NoError(t, err)
	assert.Nil(t, msg)

	msg, err = ParseALPSection([]byte("SL"))
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestParseALPSection_Malformed(t *testing.T) {
	sec, err := ALPSend(testTokenID, TypeALPStandard, []uint64{1, 2})
	require.NoError(t, err)

	_, err = ParseALPSection(sec[:len(sec)-1])
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseALPSection(append(append([]byte{}, sec...), 0x00))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseALPSection([]byte("SLP2\x00\x03FOO"))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseALPSection([]byte("SLP2\x07\x04SEND"))
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
}

// --- eMPP ---

func TestEMPPScript_MultipleChunks(t *testing.T) {
	send, err := ALPSend(testTokenID, TypeALPStandard, []uint64{5})
	require.NoError(t, err)
	foreign := []byte("AGR0\x07PARTIAL")

	s, err := EMPPScript(foreign, send)
	require.NoError(t, err)
	assert.Equal(t, byte(0x6a), s[0])
	assert.Equal(t, byte(0x50), s[1])

	chunks, err := ParseEMPP(s)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, foreign, chunks[0])
	assert.Equal(t, send, chunks[1])

	msgs, err := ParseTokenScript(s)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, testTokenID, msgs[0].TokenID)
	assert.NotNil(t, FindSend(msgs, testTokenID))
	assert.Nil(t, FindSend(msgs, strings.Repeat("b", 64)))
}

func TestEMPPScript_LongSectionUsesPushData(t *testing.T) {
	amounts := make([]uint64, 30)
	send, err := ALPSend(testTokenID, TypeALPStandard, amounts)
	require.NoError(t, err)
	require.Greater(t, len(send), 75)

	s, err := EMPPScript(send)
	require.NoError(t, err)
	assert.Equal(t, byte(0x4c), s[2])

	chunks, err := ParseEMPP(s)
	require.NoError(t, err)
	assert.Equal(t, send, chunks[0])
}

func TestEMPPScript_Errors(t *testing.T) {
	_, err := EMPPScript()
	assert.ErrorIs(t, err, ErrMalformedPayload)
	_, err = EMPPScript([]byte{})
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseEMPP([]byte{0x6a, 0x50, 0x4c, 0x00})
	assert.ErrorIs(t, err, ErrMalformedPayload)
	_, err = ParseEMPP([]byte{0x6a, 0x50, 0x51})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseTokenScript_SkipsUnknownTokenType(t *testing.T) {
	unknown := []byte("SLP2\x09\x04SENDxxxx")
	send, err := ALPSend(testTokenID, TypeALPStandard, []uint64{5})
	require.NoError(t, err)
	s, err := EMPPScript(unknown, send)
	require.NoError(t, err)

	msgs, err := ParseTokenScript(s)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestParseTokenScript_NoProtocol(t *testing.T) {
	msgs, err := ParseTokenScript([]byte{0x76, 0xa9})
	assert.NoError(t, err)
	assert.Nil(t, msgs)
}

// --- Output entries ---

func TestOutputEntries_SLPSendAndGenesis(t *testing.T) {
	s, err := SLPSend(testTokenID, TypeSLPFungible, []uint64{0, 300, 100})
	require.NoError(t, err)
	entries, err := OutputEntries(s, strings.Repeat("c", 64))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(300), entries[2].Atoms)
	assert.Equal(t, testTokenID, entries[3].TokenID)

	g, err := SLPGenesis(TypeSLPFungible, GenesisInfo{Ticker: "X"}, 1000, 2)
	require.NoError(t, err)
	txid := strings.Repeat("d", 64)
	entries, err = OutputEntries(g, txid)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, txid, entries[1].TokenID)
	assert.True(t, entries[2].IsMintBaton)
}

func TestOutputEntries_ALPBatons(t *testing.T) {
	sec, err := ALPGenesis(TypeALPStandard, GenesisInfo{}, []uint64{50}, 2)
	require.NoError(t, err)
	s, err := EMPPScript(sec)
	require.NoError(t, err)

	entries, err := OutputEntries(s, testTokenID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, tx.ProtocolALP, entries[1].Protocol)
	assert.True(t, entries[2].IsMintBaton)
	assert.True(t, entries[3].IsMintBaton)
}

// --- Reader ---

func TestReader_VarSize(t *testing.T) {
	w := &Writer{}
	for _, n := range []uint64{0, 0xfc, 0xfd, 0xffff, 0x10000, 0x1_0000_0000} {
		w.PutVarSize(n)
	}
	r := NewReader(w.Bytes())
	for _, want := range []uint64{0, 0xfc, 0xfd, 0xffff, 0x10000, 0x1_0000_0000} {
		got, err := r.VarSize()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.NoError(t, r.Done())

	_, err := NewReader([]byte{0x05, 0x01}).VarBytes()
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
