package token

import "github.com/xolosArmy/RMZWallet-sub000/tx"

// OutputEntries maps output indexes to the token amounts that output 0's
// script claims for them. txid is the id of the transaction carrying the
// script; it becomes the token id of a GENESIS. Claims are not validated
// against the inputs.
func OutputEntries(opReturn []byte, txid string) (map[uint32]*tx.TokenEntry, error) {
	msgs, err := ParseTokenScript(opReturn)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	entries := make(map[uint32]*tx.TokenEntry)
	for _, m := range msgs {
		if m.Action == ActionBurn {
			continue
		}
		tokenID := m.TokenID
		if m.Action == ActionGenesis {
			tokenID = txid
		}
		for i, atoms := range m.Amounts {
			vout := uint32(i + 1)
			if atoms == 0 || entries[vout] != nil {
				continue
			}
			entries[vout] = &tx.TokenEntry{TokenID: tokenID, Protocol: m.Protocol, TokenType: m.TokenType, Atoms: atoms}
		}
		batons := batonOutputs(m)
		for _, vout := range batons {
			if entries[vout] != nil {
				continue
			}
			entries[vout] = &tx.TokenEntry{TokenID: tokenID, Protocol: m.Protocol, TokenType: m.TokenType, IsMintBaton: true}
		}
	}
	return entries, nil
}

func batonOutputs(m *Message) []uint32 {
	switch m.Protocol {
	case tx.ProtocolSLP:
		if m.MintBatonVout != 0 {
			return []uint32{uint32(m.MintBatonVout)}
		}
	case tx.ProtocolALP:
		var vouts []uint32
		first := uint32(len(m.Amounts)) + 1
		for i := uint32(0); i < uint32(m.NumBatons); i++ {
			vouts = append(vouts, first+i)
		}
		return vouts
	}
	return nil
}
