package agora

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOfferID(t *testing.T) {
	txid := strings.Repeat("ab", 32)
	tests := []struct {
		name string
		in   string
		want OfferOutpoint
	}{
		{"colon form", txid + ":3", OfferOutpoint{TxID: txid, Vout: 3}},
		{"surrounding space", "  " + txid + ":0\n", OfferOutpoint{TxID: txid, Vout: 0}},
		{"uppercase txid", strings.ToUpper(txid) + ":1", OfferOutpoint{TxID: txid, Vout: 1}},
		{"json", `{"txid":"` + txid + `","vout":7}`, OfferOutpoint{TxID: txid, Vout: 7}},
		{"json max vout", `{"vout":4294967295,"txid":"` + txid + `"}`, OfferOutpoint{TxID: txid, Vout: 4294967295}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOfferID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestParseOfferID_Invalid(t *testing.T) {
	txid := strings.Repeat("ab", 32)
	for _, in := range []string{
		"xyz",
		"",
		txid,
		txid + ":",
		txid + ":-1",
		txid + ":1.5",
		txid + ":4294967296",
		"abcd:1",
		strings.Repeat("zz", 32) + ":1",
		`{"txid":"` + txid + `"}`,
		`{"vout":1}`,
		`{"txid":"` + txid + `","vout":-2}`,
		`{"txid":"` + txid + `","vout":2.5}`,
		`{"txid":"` + txid + `","vout":"x"}`,
		`{"txid":`,
		`{"txid":"` + txid + `","vout":1}garbage`,
		`{"txid":"` + txid + `","vout":1}}`,
		`{"txid":"` + txid + `","vout":1} {"txid":"` + txid + `","vout":2}`,
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseOfferID(in)
			assert.ErrorIs(t, err, ErrInvalidOfferID)
		})
	}
}

func TestOfferOutpoint_String(t *testing.T) {
	o := OfferOutpoint{TxID: strings.Repeat("0f", 32), Vout: 12}
	assert.Equal(t, strings.Repeat("0f", 32)+":12", o.String())
	assert.Equal(t, o.String(), o.Outpoint().String())

	back, err := ParseOfferID(o.String())
	require.NoError(t, err)
	assert.Equal(t, o, back)
}
