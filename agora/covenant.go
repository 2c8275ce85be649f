package agora

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

const sighashAllForkID = byte(sighash.AllForkID)

// covenantKey signs the preimage an accept rebuilds. The key is public; the
// signature only proves the rebuilt preimage is the spending transaction's.
var covenantKey, covenantPub = ec.PrivateKeyFromBytes(append(make([]byte, 31), 0x01))

// CovenantPubKey returns the key both accept checks are made against.
func CovenantPubKey() []byte {
	return covenantPub.Compressed()
}

// oneshotOutputsAt is where the enforced outputs start inside a ONESHOT ad.
var oneshotOutputsAt = int64(len(AdLokad) + 1 + len(VariantOneshot) + 1)

// oneshotCovenant builds the ONESHOT redeem script. The accept branch
// rebuilds hashOutputs from the enforced outputs in the ad followed by the
// taker's outputs:
//
//	<ad> OP_CODESEPARATOR
//	OP_SWAP OP_IF
//	  <enforced outputs from ad> <taker outputs> OP_CAT OP_HASH256
//	  <preimage prefix> ... OP_CHECKDATASIGVERIFY ... OP_CHECKSIG
//	OP_ELSE
//	  <cancelPk from ad> OP_CHECKSIG
//	OP_ENDIF
func oneshotCovenant(o *OneshotParams) (redeem, scriptCode []byte, err error) {
	ad, err := o.Ad()
	if err != nil {
		return nil, nil, err
	}
	code := &scriptBuilder{}
	code.op(script.OpSWAP, script.OpIF).
		op(script.OpSIZE).num(tx.CompressedPubKeyLen).op(script.OpSUB, script.OpSPLIT, script.OpDROP).
		num(oneshotOutputsAt).op(script.OpSPLIT, script.OpNIP).
		op(script.OpSWAP, script.OpCAT, script.OpHASH256).
		push(sighashSuffix(0)).op(script.OpCAT, script.OpCAT).
		op(script.OpSHA256, script.OpOVER, script.OpSWAP).
		push(CovenantPubKey()).op(script.OpDUP, script.OpTOALTSTACK, opCheckDataSigVerify).
		push([]byte{sighashAllForkID}).op(script.OpCAT, script.OpFROMALTSTACK, script.OpCHECKSIG).
		op(script.OpELSE).
		op(script.OpSIZE).num(tx.CompressedPubKeyLen).op(script.OpSUB, script.OpSPLIT, script.OpNIP, script.OpCHECKSIG).
		op(script.OpENDIF)
	if scriptCode, err = code.script(); err != nil {
		return nil, nil, err
	}

	head := &scriptBuilder{}
	head.push(ad).op(script.OpCODESEPARATOR)
	part1, err := head.script()
	if err != nil {
		return nil, nil, err
	}
	redeem = append(part1, scriptCode...)
	if err := checkLimits(redeem, scriptCode); err != nil {
		return nil, nil, err
	}
	return redeem, scriptCode, nil
}

// partialCovenant builds the PARTIAL redeem script:
//
//	<ad> <covPk payout common offeredScaled> OP_CODESEPARATOR
//	OP_2 OP_ROLL OP_IF
//	  check the taken amount, rebuild SEND, payout and leftover covenant,
//	  then bind them to the preimage as in ONESHOT
//	OP_ELSE
//	  OP_DROP <makerPk from ad> OP_CHECKSIG
//	OP_ENDIF
//
// The leftover covenant differs from this one only in offeredScaled.
func partialCovenant(p *PartialParams) (redeem, scriptCode []byte, err error) {
	ad, err := p.Ad()
	if err != nil {
		return nil, nil, err
	}
	layout, err := newSendLayout(p.TokenID, p.TokenType, p.TokenProtocol)
	if err != nil {
		return nil, nil, err
	}
	payout, err := p.PayoutScript()
	if err != nil {
		return nil, nil, err
	}
	offered, err := p.offeredScaled()
	if err != nil {
		return nil, nil, err
	}
	for name, v := range map[string]uint64{
		"scale factor":     p.AtomsScaleFactor,
		"price":            p.ScaledTruncAtomsPerTruncSat,
		"minimum accepted": p.MinAcceptedScaledTruncAtoms,
	} {
		if v == 0 || v > maxScriptInt {
			return nil, nil, fmt.Errorf("%w: %s %d outside script integer range", ErrInvalidParams, name, v)
		}
	}

	w := &token.Writer{}
	w.PutBytes(CovenantPubKey())
	w.PutVarBytes(payout)
	payoutLen := len(w.Bytes()) - tx.CompressedPubKeyLen
	w.PutBytes(layout.common)
	w.PutU32LE(uint32(offered))
	blob := w.Bytes()
	if len(ad) > 75 || len(blob) <= 75 || len(blob) > 0xff {
		return nil, nil, fmt.Errorf("%w: covenant data of %d and %d bytes", ErrInvalidParams, len(ad), len(blob))
	}

	head := &scriptBuilder{}
	head.push(ad).push(blob).op(script.OpCODESEPARATOR)
	part1, err := head.script()
	if err != nil {
		return nil, nil, err
	}

	// The scriptCode offset depends on the scriptCode length; its push does not.
	pc := partialCode{p: p, layout: layout, adLen: len(ad), blobLen: len(blob), payoutLen: payoutLen}
	if scriptCode, err = pc.build(preimageScriptCodeAt + 1); err != nil {
		return nil, nil, err
	}
	if at := scriptCodeAt(scriptCode); at != preimageScriptCodeAt+1 {
		if scriptCode, err = pc.build(at); err != nil {
			return nil, nil, err
		}
	}
	redeem = append(part1, scriptCode...)
	if err := checkLimits(redeem, scriptCode); err != nil {
		return nil, nil, err
	}
	return redeem, scriptCode, nil
}

type partialCode struct {
	p         *PartialParams
	layout    *sendLayout
	adLen     int
	blobLen   int
	payoutLen int
}

// build emits the part of the PARTIAL covenant after OP_CODESEPARATOR. The
// accept branch starts from [covSig prefix taker scaled ad blob] and the
// cancel branch from [sig ad blob].
func (c partialCode) build(codeAt int) ([]byte, error) {
	p := c.p
	scale := int64(p.AtomsScaleFactor)
	atomShift := int(p.NumAtomsTruncBytes)
	satsShift := int(p.NumSatsTruncBytes)
	b := &scriptBuilder{}

	b.num(2).op(script.OpROLL, script.OpIF)
	// [.. ad blobHead offered scaled]
	b.op(script.OpSIZE).num(4).op(script.OpSUB, script.OpSPLIT, script.OpBIN2NUM).
		num(3).op(script.OpROLL)
	if scale > 1 {
		b.op(script.OpDUP).num(scale).op(script.OpMOD, script.OpNOT, script.OpVERIFY)
	}
	b.op(script.Op2DUP, script.OpGREATERTHANOREQUAL, script.OpVERIFY).
		op(script.Op2DUP, script.OpNUMEQUAL, script.OpOVER).
		num(int64(p.MinAcceptedScaledTruncAtoms)).op(script.OpGREATERTHANOREQUAL, script.OpBOOLOR, script.OpVERIFY).
		op(script.OpTUCK, script.OpSUB)

	// [.. ad blobHead scaled leftover payoutOut]
	b.op(script.OpOVER)
	if price := int64(p.ScaledTruncAtomsPerTruncSat); price > 1 {
		b.op(script.Op1SUB).num(price).op(script.OpDIV, script.Op1ADD)
	}
	b.amountLE(8, satsShift).
		num(3).op(script.OpPICK).
		num(tx.CompressedPubKeyLen).op(script.OpSPLIT, script.OpNIP).
		num(int64(c.payoutLen)).op(script.OpSPLIT, script.OpDROP, script.OpCAT)

	// [.. leftover payoutOut common acceptedAmount]
	b.num(2).op(script.OpPICK).divScale(scale)
	c.layout.amount(b, atomShift)
	b.num(4).op(script.OpPICK).
		num(int64(tx.CompressedPubKeyLen+c.payoutLen)).op(script.OpSPLIT, script.OpNIP, script.OpSWAP)

	b.num(3).op(script.OpPICK, script.Op0NOTEQUAL, script.OpIF)
	{
		b.num(3).op(script.OpPICK).divScale(scale)
		c.layout.amount(b, atomShift)
		b.op(script.OpSWAP, script.OpCAT).
			push(c.layout.mid3).op(script.OpSWAP, script.OpCAT, script.OpCAT).
			push(c.layout.head3).op(script.OpSWAP, script.OpCAT)

		// leftover covenant output: input value, then P2SH of the rebuilt redeem
		b.num(7).op(script.OpPICK, script.OpSIZE).
			num(preimageInputTailLen).op(script.OpSUB, script.OpSPLIT, script.OpNIP).
			num(8).op(script.OpSPLIT, script.OpDROP)
		b.num(6).op(script.OpPICK).
			push([]byte{byte(c.adLen)}).op(script.OpSWAP, script.OpCAT).
			push([]byte{script.OpPUSHDATA1, byte(c.blobLen)}).op(script.OpCAT).
			num(6).op(script.OpPICK, script.OpCAT).
			num(4).op(script.OpPICK).num(4).op(script.OpNUM2BIN, script.OpCAT).
			push([]byte{script.OpCODESEPARATOR}).op(script.OpCAT)
		b.num(9).op(script.OpPICK).
			num(int64(codeAt)).op(script.OpSPLIT, script.OpNIP, script.OpSIZE).
			num(preimageInputTailLen).op(script.OpSUB, script.OpSPLIT, script.OpDROP)
		b.op(script.OpCAT, script.OpHASH160).
			push([]byte{0x17, script.OpHASH160, 0x14}).op(script.OpSWAP, script.OpCAT).
			push([]byte{script.OpEQUAL}).op(script.OpCAT, script.OpCAT)
		b.op(script.OpROT, script.OpSWAP, script.OpCAT, script.OpCAT)
	}
	b.op(script.OpELSE)
	{
		b.push(c.layout.mid2).op(script.OpSWAP, script.OpCAT, script.OpCAT).
			push(c.layout.head2).op(script.OpSWAP, script.OpCAT).
			op(script.OpSWAP, script.OpCAT)
	}
	b.op(script.OpENDIF)

	// [covSig prefix ad blobHead scaled leftover enforced taker]
	b.num(5).op(script.OpROLL, script.OpCAT, script.OpHASH256, script.OpTOALTSTACK).
		op(script.Op2DROP, script.OpNIP).
		num(tx.CompressedPubKeyLen).op(script.OpSPLIT, script.OpDROP, script.OpSWAP, script.OpFROMALTSTACK).
		push(sighashSuffix(p.EnforcedLockTime)).op(script.OpCAT, script.OpCAT)
	b.op(script.OpSHA256).
		num(2).op(script.OpPICK, script.OpSWAP).
		num(2).op(script.OpPICK, opCheckDataSigVerify).
		op(script.OpSWAP).push([]byte{sighashAllForkID}).op(script.OpCAT, script.OpSWAP, script.OpCHECKSIG)

	b.op(script.OpELSE, script.OpDROP).
		num(int64(c.adLen-tx.CompressedPubKeyLen)).op(script.OpSPLIT, script.OpNIP, script.OpCHECKSIG).
		op(script.OpENDIF)
	return b.script()
}

// sendLayout is the serialized SEND output of an accept split around the
// amounts the covenant computes: head || common || mid || amounts.
type sendLayout struct {
	common      []byte
	head2, mid2 []byte // amounts: accepted
	head3, mid3 []byte // amounts: leftover, accepted
	slp         bool
}

func newSendLayout(tokenID string, tokenType byte, protocol tx.Protocol) (*sendLayout, error) {
	width, headLen, tailLen := 9, 9, 0
	if protocol == tx.ProtocolALP {
		width, headLen, tailLen = 6, 12, 1
	}
	l := &sendLayout{slp: protocol == tx.ProtocolSLP}
	for _, k := range []int{2, 3} {
		send, err := token.SendScript(tokenID, tokenType, protocol, make([]uint64, k))
		if err != nil {
			return nil, err
		}
		out := serializeOutput(tx.Output{Value: 0, Script: send})
		body := out[:len(out)-k*width]
		zero := out[len(body) : len(body)+width]
		head := append([]byte(nil), body[:headLen]...)
		common := body[headLen : len(body)-tailLen]
		mid := append(append([]byte(nil), body[len(body)-tailLen:]...), zero...)
		if k == 2 {
			l.common, l.head2, l.mid2 = append([]byte(nil), common...), head, mid
			continue
		}
		if !bytes.Equal(common, l.common) {
			return nil, fmt.Errorf("%w: SEND layout for %s", ErrInvalidParams, protocol)
		}
		l.head3, l.mid3 = head, mid
	}
	return l, nil
}

// amount turns the truncated atom count on top of the stack into its SEND
// encoding.
func (l *sendLayout) amount(b *scriptBuilder, shift int) {
	if !l.slp {
		b.amountLE(6, shift)
		return
	}
	b.amountLE(8, shift).op(opReverseBytes).num(8).op(script.OpSWAP, script.OpCAT)
}

func serializeOutput(out tx.Output) []byte {
	o := &transaction.TransactionOutput{Satoshis: out.Value, LockingScript: script.NewFromBytes(out.Script)}
	return o.Bytes()
}

// offeredScaled is TruncAtoms * AtomsScaleFactor, the amount the covenant
// carries.
func (p *PartialParams) offeredScaled() (uint64, error) {
	v, ok := fit64(mulWide(p.TruncAtoms, p.AtomsScaleFactor))
	if !ok || v == 0 || v > maxScriptInt {
		return 0, fmt.Errorf("%w: %d truncated atoms at scale %d", ErrInvalidParams, p.TruncAtoms, p.AtomsScaleFactor)
	}
	return v, nil
}

// AdSetupScript builds the redeem script of the ad-setup output of a
// two-transaction listing: <ad> OP_DROP <pk> OP_CHECKSIG.
func AdSetupScript(ad, pk []byte) ([]byte, error) {
	if !IsAd(ad) {
		return nil, fmt.Errorf("%w: ad setup needs an advertisement", ErrInvalidParams)
	}
	if err := validatePk("ad key", pk); err != nil {
		return nil, err
	}
	b := &scriptBuilder{}
	b.push(ad).op(script.OpDROP).push(pk).op(script.OpCHECKSIG)
	return b.script()
}

// Covenant returns the redeem script of p's offer output and its P2SH
// locking script.
func Covenant(p Params) (redeem, locking []byte, err error) {
	redeem, _, err = covenantScripts(p)
	if err != nil {
		return nil, nil, err
	}
	locking, err = tx.P2SHScript(redeem)
	if err != nil {
		return nil, nil, err
	}
	return redeem, locking, nil
}

// covenantScripts returns the redeem script of p and the part of it after
// OP_CODESEPARATOR, which is what both branches sign.
func covenantScripts(p Params) (redeem, scriptCode []byte, err error) {
	switch v := p.(type) {
	case *PartialParams:
		return partialCovenant(v)
	case *OneshotParams:
		return oneshotCovenant(v)
	}
	return nil, nil, fmt.Errorf("%w: covenant for %T", ErrInvalidParams, p)
}

// leadingPush returns the data of the first push of s.
func leadingPush(s []byte) ([]byte, bool) {
	chunks, err := script.NewFromBytes(s).Chunks()
	if err != nil || len(chunks) == 0 {
		return nil, false
	}
	return chunks[0].Data, len(chunks[0].Data) > 0
}
