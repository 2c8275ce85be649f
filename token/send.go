package token

import (
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// SendScript builds the OP_RETURN of a SEND in either protocol; amounts[i]
// goes to output i+1. extra sections are placed ahead of an ALP SEND and
// ignored for SLP.
func SendScript(tokenID string, tokenType byte, protocol tx.Protocol, amounts []uint64, extra ...[]byte) ([]byte, error) {
	switch protocol {
	case tx.ProtocolSLP:
		return SLPSend(tokenID, tokenType, amounts)
	case tx.ProtocolALP:
		section, err := ALPSend(tokenID, tokenType, amounts)
		if err != nil {
			return nil, err
		}
		sections := make([][]byte, 0, len(extra)+1)
		sections = append(sections, extra...)
		return EMPPScript(append(sections, section)...)
	}
	return nil, fmt.Errorf("%w: token protocol %s", ErrUnsupportedProtocol, protocol)
}
