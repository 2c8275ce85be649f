package tx

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// PubKeyHashLen is the length of a HASH160 digest.
const PubKeyHashLen = 20

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	return bsvhash.Hash160(b)
}

// P2PKHScript creates a P2PKH locking script for a 20-byte public key hash.
func P2PKHScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != PubKeyHashLen {
		return nil, fmt.Errorf("%w: pubkey hash must be %d bytes, got %d", ErrScriptBuild, PubKeyHashLen, len(pubKeyHash))
	}
	addr, err := script.NewAddressFromPublicKeyHash(pubKeyHash, true)
	if err != nil {
		return nil, fmt.Errorf("%w: address from hash: %w", ErrScriptBuild, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock: %w", ErrScriptBuild, err)
	}
	return []byte(*lockScript), nil
}

// P2PKHScriptFromPubKey creates a P2PKH locking script for the given public key.
func P2PKHScriptFromPubKey(pubKey *ec.PublicKey) ([]byte, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: public key", ErrNilParam)
	}
	return P2PKHScript(Hash160(pubKey.Compressed()))
}

// P2SHScript creates OP_HASH160 <hash160(redeem)> OP_EQUAL.
func P2SHScript(redeemScript []byte) ([]byte, error) {
	if len(redeemScript) == 0 {
		return nil, fmt.Errorf("%w: empty redeem script", ErrScriptBuild)
	}
	return P2SHScriptFromHash(Hash160(redeemScript))
}

// P2SHScriptFromHash creates the P2SH locking script for a 20-byte script hash.
func P2SHScriptFromHash(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != PubKeyHashLen {
		return nil, fmt.Errorf("%w: script hash must be %d bytes, got %d", ErrScriptBuild, PubKeyHashLen, len(scriptHash))
	}
	s := &script.Script{}
	*s = append(*s, script.OpHASH160)
	if err := s.AppendPushData(scriptHash); err != nil {
		return nil, fmt.Errorf("%w: P2SH hash push: %w", ErrScriptBuild, err)
	}
	*s = append(*s, script.OpEQUAL)
	return []byte(*s), nil
}

// P2SHHash returns the script hash of a P2SH locking script.
func P2SHHash(lockingScript []byte) ([]byte, bool) {
	if len(lockingScript) != 23 ||
		lockingScript[0] != script.OpHASH160 ||
		lockingScript[1] != PubKeyHashLen ||
		lockingScript[22] != script.OpEQUAL {
		return nil, false
	}
	return lockingScript[2:22], true
}

// P2PKHHash returns the public key hash of a P2PKH locking script.
func P2PKHHash(lockingScript []byte) ([]byte, bool) {
	if len(lockingScript) != 25 ||
		lockingScript[0] != script.OpDUP ||
		lockingScript[1] != script.OpHASH160 ||
		lockingScript[2] != PubKeyHashLen ||
		lockingScript[23] != script.OpEQUALVERIFY ||
		lockingScript[24] != script.OpCHECKSIG {
		return nil, false
	}
	return lockingScript[3:23], true
}

// IsP2SHOf reports whether lockingScript pays to the hash of redeemScript.
func IsP2SHOf(lockingScript, redeemScript []byte) bool {
	h, ok := P2SHHash(lockingScript)
	return ok && bytes.Equal(h, Hash160(redeemScript))
}
