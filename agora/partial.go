package agora

import (
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

const (
	// NanoSatsPerSat scales prices given in nano-satoshis per atom.
	NanoSatsPerSat = 1_000_000_000

	// DefaultScriptIntegerBits is the script integer width partial offers are sized for.
	DefaultScriptIntegerBits = 32

	minScriptIntegerBits = 16
	maxScriptIntegerBits = 32
	maxTruncBytes        = 7
	maxSatsTruncBytes    = 4
)

// PartialRequest is the maker's intent for a divisible offer.
type PartialRequest struct {
	OfferedAtoms         uint64
	PriceNanoSatsPerAtom uint64
	MinAcceptedAtoms     uint64
	MakerPk              []byte
	TokenID              string
	TokenType            byte
	Protocol             tx.Protocol
	EnforcedLockTime     uint32
	Dust                 uint64 // 0 for tx.DustLimit
	ScriptIntegerBits    uint   // 0 for DefaultScriptIntegerBits
}

// PartialParams are the terms of a divisible offer. Amounts are carried in
// truncated units: atoms in multiples of 256^NumAtomsTruncBytes, sats in
// multiples of 256^NumSatsTruncBytes.
type PartialParams struct {
	TruncAtoms                  uint64
	NumAtomsTruncBytes          byte
	NumSatsTruncBytes           byte
	AtomsScaleFactor            uint64
	ScaledTruncAtomsPerTruncSat uint64
	MinAcceptedScaledTruncAtoms uint64
	EnforcedLockTime            uint32
	MakerPk                     []byte
	TokenID                     string
	TokenType                   byte
	TokenProtocol               tx.Protocol
}

// NewPartialParams derives covenant parameters approximating the requested
// price. OfferedAtoms of the result is req.OfferedAtoms rounded down to the
// truncation unit. All math is integer; intermediate products use 128 bits.
func NewPartialParams(req PartialRequest) (*PartialParams, error) {
	tokenID, err := validateToken(req.TokenID, req.Protocol)
	if err != nil {
		return nil, err
	}
	if err := validatePk("maker key", req.MakerPk); err != nil {
		return nil, err
	}
	if req.OfferedAtoms == 0 {
		return nil, fmt.Errorf("%w: nothing offered", ErrInvalidParams)
	}
	if req.Protocol == tx.ProtocolALP && req.OfferedAtoms > token.MaxU48 {
		return nil, fmt.Errorf("%w: %d atoms exceed ALP range", ErrInvalidParams, req.OfferedAtoms)
	}
	if req.PriceNanoSatsPerAtom == 0 {
		return nil, fmt.Errorf("%w: zero price", ErrPriceOutOfRange)
	}
	if req.MinAcceptedAtoms == 0 || req.MinAcceptedAtoms > req.OfferedAtoms {
		return nil, fmt.Errorf("%w: minimum accept %d not in [1, %d]", ErrInvalidParams, req.MinAcceptedAtoms, req.OfferedAtoms)
	}
	intBits := req.ScriptIntegerBits
	if intBits == 0 {
		intBits = DefaultScriptIntegerBits
	}
	if intBits < minScriptIntegerBits || intBits > maxScriptIntegerBits {
		return nil, fmt.Errorf("%w: script integer bits %d", ErrInvalidParams, intBits)
	}
	maxScriptInt := uint64(1)<<(intBits-1) - 1
	dust := req.Dust
	if dust == 0 {
		dust = tx.DustLimit
	}

	// Truncate atoms until they fit a script integer.
	var atomsTruncBytes byte
	truncAtoms := req.OfferedAtoms
	for truncAtoms > maxScriptInt {
		truncAtoms >>= 8
		atomsTruncBytes++
	}
	atomShift := 8 * uint(atomsTruncBytes)
	scale := maxScriptInt / truncAtoms

	// Scaled truncated atoms bought by one truncated sat:
	//   (scale * 1e9 << 8*satsTruncBytes) / price >> 8*atomsTruncBytes
	// Truncate sats until at least one scaled atom maps to a truncated sat.
	var perTruncSat uint64
	var satsTruncBytes byte
	for ; satsTruncBytes <= maxSatsTruncBytes; satsTruncBytes++ {
		num, ok := shlChecked(mulWide(scale, NanoSatsPerSat), 8*uint(satsTruncBytes))
		if !ok {
			return nil, fmt.Errorf("%w: price %d nsat/atom too high", ErrPriceOutOfRange, req.PriceNanoSatsPerAtom)
		}
		q, _ := num.QuoRem64(req.PriceNanoSatsPerAtom)
		v, fits := fit64(q.Rsh(atomShift))
		if !fits || v > maxScriptInt {
			return nil, fmt.Errorf("%w: price %d nsat/atom too low", ErrPriceOutOfRange, req.PriceNanoSatsPerAtom)
		}
		if v > 0 {
			perTruncSat = v
			break
		}
	}
	if perTruncSat == 0 {
		return nil, fmt.Errorf("%w: price %d nsat/atom too high", ErrPriceOutOfRange, req.PriceNanoSatsPerAtom)
	}

	truncMin := req.MinAcceptedAtoms >> atomShift
	if truncMin<<atomShift != req.MinAcceptedAtoms {
		truncMin++
	}
	if truncMin > truncAtoms {
		truncMin = truncAtoms
	}

	p := &PartialParams{
		TruncAtoms:                  truncAtoms,
		NumAtomsTruncBytes:          atomsTruncBytes,
		NumSatsTruncBytes:           satsTruncBytes,
		AtomsScaleFactor:            scale,
		ScaledTruncAtomsPerTruncSat: perTruncSat,
		MinAcceptedScaledTruncAtoms: truncMin * scale,
		EnforcedLockTime:            req.EnforcedLockTime,
		MakerPk:                     append([]byte(nil), req.MakerPk...),
		TokenID:                     tokenID,
		TokenType:                   req.TokenType,
		TokenProtocol:               req.Protocol,
	}
	if _, err := p.AskedSats(p.OfferedAtoms()); err != nil {
		return nil, err
	}
	minSats, err := p.AskedSats(p.MinAcceptedAtoms())
	if err != nil {
		return nil, err
	}
	if minSats < dust {
		return nil, fmt.Errorf("%w: minimum accept pays %d sats, below dust %d", ErrInvalidParams, minSats, dust)
	}
	if _, _, err := partialCovenant(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PartialParams) Variant() Variant { return VariantPartial }

func (p *PartialParams) CovenantPk() []byte { return p.MakerPk }

func (p *PartialParams) TokenInfo() (string, byte, tx.Protocol) {
	return p.TokenID, p.TokenType, p.TokenProtocol
}

func (p *PartialParams) atomShift() uint { return 8 * uint(p.NumAtomsTruncBytes) }

// OfferedAtoms is the full amount held by the offer output.
func (p *PartialParams) OfferedAtoms() uint64 {
	return p.TruncAtoms << p.atomShift()
}

// MinAcceptedAtoms is the smallest amount a partial accept may take.
func (p *PartialParams) MinAcceptedAtoms() uint64 {
	truncMin := p.MinAcceptedScaledTruncAtoms / p.AtomsScaleFactor
	if p.MinAcceptedScaledTruncAtoms%p.AtomsScaleFactor != 0 {
		truncMin++
	}
	return truncMin << p.atomShift()
}

// AskedSats is the payout the maker receives for acceptedAtoms, rounded up
// to the sats truncation unit.
func (p *PartialParams) AskedSats(acceptedAtoms uint64) (uint64, error) {
	if err := p.checkGranularity(acceptedAtoms); err != nil {
		return 0, err
	}
	scaled := mulWide(acceptedAtoms>>p.atomShift(), p.AtomsScaleFactor)
	truncSats := divCeil64(scaled, p.ScaledTruncAtomsPerTruncSat)
	sats, ok := shlChecked(truncSats, 8*uint(p.NumSatsTruncBytes))
	if !ok {
		return 0, fmt.Errorf("%w: asked sats for %d atoms", ErrOverflow, acceptedAtoms)
	}
	v, ok := fit64(sats)
	if !ok {
		return 0, fmt.Errorf("%w: asked sats for %d atoms", ErrOverflow, acceptedAtoms)
	}
	return v, nil
}

// PriceNanoSatsPerAtom is the effective price of accepting acceptedAtoms.
func (p *PartialParams) PriceNanoSatsPerAtom(acceptedAtoms uint64) (uint64, error) {
	if acceptedAtoms == 0 {
		return 0, fmt.Errorf("%w: zero accepted atoms", ErrInvalidParams)
	}
	sats, err := p.AskedSats(acceptedAtoms)
	if err != nil {
		return 0, err
	}
	q, _ := mulWide(sats, NanoSatsPerSat).QuoRem64(acceptedAtoms)
	v, ok := fit64(q)
	if !ok {
		return 0, fmt.Errorf("%w: price for %d atoms", ErrOverflow, acceptedAtoms)
	}
	return v, nil
}

// PrepareAcceptedAtoms rounds requested down to the truncation unit and caps
// it at the offered amount.
func (p *PartialParams) PrepareAcceptedAtoms(requested uint64) uint64 {
	if offered := p.OfferedAtoms(); requested >= offered {
		return offered
	}
	return requested >> p.atomShift() << p.atomShift()
}

// ValidateAccept checks that acceptedAtoms can be taken from the offer.
// Taking the whole remainder is allowed even below the minimum.
func (p *PartialParams) ValidateAccept(acceptedAtoms uint64) error {
	if acceptedAtoms == 0 {
		return fmt.Errorf("%w: zero accepted atoms", ErrBelowMinimumAccept)
	}
	if err := p.checkGranularity(acceptedAtoms); err != nil {
		return err
	}
	offered := p.OfferedAtoms()
	if acceptedAtoms > offered {
		return fmt.Errorf("%w: accepting %d of %d offered atoms", ErrInvalidParams, acceptedAtoms, offered)
	}
	if acceptedAtoms != offered && acceptedAtoms < p.MinAcceptedAtoms() {
		return fmt.Errorf("%w: %d < %d", ErrBelowMinimumAccept, acceptedAtoms, p.MinAcceptedAtoms())
	}
	if _, err := p.AskedSats(acceptedAtoms); err != nil {
		return err
	}
	return nil
}

func (p *PartialParams) checkGranularity(atoms uint64) error {
	if shift := p.atomShift(); atoms>>shift<<shift != atoms {
		return fmt.Errorf("%w: %d is not a multiple of 2^%d", ErrGranularityMismatch, atoms, shift)
	}
	return nil
}

// Ad serializes the PARTIAL advertisement:
//
//	"AGR0" <7 "PARTIAL"> atomsTruncBytes:u8 satsTruncBytes:u8
//	scale:u64LE perTruncSat:u64LE minScaled:u64LE lockTime:u32LE makerPk:33
func (p *PartialParams) Ad() ([]byte, error) {
	if err := validatePk("maker key", p.MakerPk); err != nil {
		return nil, err
	}
	w := adHeader(VariantPartial)
	w.PutU8(p.NumAtomsTruncBytes)
	w.PutU8(p.NumSatsTruncBytes)
	w.PutU64LE(p.AtomsScaleFactor)
	w.PutU64LE(p.ScaledTruncAtomsPerTruncSat)
	w.PutU64LE(p.MinAcceptedScaledTruncAtoms)
	w.PutU32LE(p.EnforcedLockTime)
	w.PutBytes(p.MakerPk)
	return w.Bytes(), nil
}

// DecodePartial reads a PARTIAL advertisement for an offer output holding
// offeredAtoms. offeredAtoms must be an exact multiple of the truncation
// unit; token fields are left for the caller.
func DecodePartial(ad []byte, offeredAtoms uint64) (*PartialParams, error) {
	p, err := decodePartialAd(ad)
	if err != nil {
		return nil, err
	}
	shift := p.atomShift()
	p.TruncAtoms = offeredAtoms >> shift
	if p.TruncAtoms<<shift != offeredAtoms {
		return nil, fmt.Errorf("%w: %d atoms with %d truncated bytes", ErrGranularityMismatch, offeredAtoms, p.NumAtomsTruncBytes)
	}
	if p.TruncAtoms == 0 {
		return nil, fmt.Errorf("%w: empty offer", ErrNotCovenant)
	}
	return p, nil
}

// decodePartialAd reads the advertisement fields without any atom amount.
func decodePartialAd(ad []byte) (*PartialParams, error) {
	v, r, err := readAdHeader(ad)
	if err != nil {
		return nil, err
	}
	if v != VariantPartial {
		return nil, fmt.Errorf("%w: expected %s advertisement, got %s", ErrUnsupportedProtocol, VariantPartial, v)
	}
	p := &PartialParams{}
	if p.NumAtomsTruncBytes, err = r.U8(); err != nil {
		return nil, err
	}
	if p.NumSatsTruncBytes, err = r.U8(); err != nil {
		return nil, err
	}
	if p.AtomsScaleFactor, err = r.U64LE(); err != nil {
		return nil, err
	}
	if p.ScaledTruncAtomsPerTruncSat, err = r.U64LE(); err != nil {
		return nil, err
	}
	if p.MinAcceptedScaledTruncAtoms, err = r.U64LE(); err != nil {
		return nil, err
	}
	if p.EnforcedLockTime, err = r.U32LE(); err != nil {
		return nil, err
	}
	pk, err := r.Bytes(tx.CompressedPubKeyLen)
	if err != nil {
		return nil, err
	}
	p.MakerPk = append([]byte(nil), pk...)
	if err := r.Done(); err != nil {
		return nil, err
	}

	if p.NumAtomsTruncBytes > maxTruncBytes || p.NumSatsTruncBytes > maxTruncBytes {
		return nil, fmt.Errorf("%w: truncation %d/%d bytes", ErrMalformedPayload, p.NumAtomsTruncBytes, p.NumSatsTruncBytes)
	}
	if p.AtomsScaleFactor == 0 || p.ScaledTruncAtomsPerTruncSat == 0 {
		return nil, fmt.Errorf("%w: zero scale parameter", ErrMalformedPayload)
	}
	return p, nil
}
