package xmr

import (
	"xmrserial.dev/serial"
	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/schema"
)

// keyIdentity is the curve identity point; outPk destinations are not on the
// blockchain wire and come back as identity on load.
var keyIdentity = ECKey{0x01}

func validRctType(t uint8) bool {
	switch t {
	case RctTypeFull, RctTypeSimple, RctTypeBulletproof, RctTypeBulletproof2, RctTypeCLSAG, RctTypeBulletproofPlus:
		return true
	}
	return false
}

func isBulletproofFlavor(t uint8) bool {
	switch t {
	case RctTypeBulletproof, RctTypeBulletproof2, RctTypeCLSAG, RctTypeBulletproofPlus:
		return true
	}
	return false
}

// truncatedEcdh reports whether ecdhInfo entries carry only the first eight
// amount bytes on the wire.
func truncatedEcdh(t uint8) bool {
	switch t {
	case RctTypeBulletproof2, RctTypeCLSAG, RctTypeBulletproofPlus:
		return true
	}
	return false
}

// keyVecN moves exactly n keys with no length prefix; the count comes from
// the surrounding layout.
func keyVecN(ar *blockchain.Archive, v *KeyV, n int) error {
	if ar.Writing() {
		if len(*v) != n {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "key vector has %d entries, want %d", len(*v), n)
		}
	} else {
		*v = make(KeyV, n)
	}
	for i := 0; i < n; i++ {
		if err := ar.Field(&(*v)[i], ECKeySpec); err != nil {
			return err
		}
	}
	return nil
}

// SerializeBase moves the non-prunable ring-ct part. The pseudo-output,
// ecdh-info and output-key vectors carry no length prefixes; their counts are
// the transaction's input and output counts.
func (r *RctSigBase) SerializeBase(ar *blockchain.Archive, inputs, outputs int) error {
	if err := ar.Field(&r.Type, schema.UInt8); err != nil {
		return err
	}
	if r.Type == RctTypeNull {
		return nil
	}
	if !validRctType(r.Type) {
		return serial.Ef(serial.ERR_UNKNOWN_RCT_TYPE, "rct type %d", r.Type)
	}
	if err := ar.Field(&r.TxnFee, schema.UVarint); err != nil {
		return err
	}

	if r.Type == RctTypeSimple {
		if err := keyVecN(ar, &r.PseudoOuts, inputs); err != nil {
			return err
		}
	}

	if ar.Writing() {
		if len(r.EcdhInfo) != outputs {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "ecdhInfo has %d entries, want %d", len(r.EcdhInfo), outputs)
		}
	} else {
		r.EcdhInfo = make([]EcdhTuple, outputs)
	}
	for i := 0; i < outputs; i++ {
		e := &r.EcdhInfo[i]
		if truncatedEcdh(r.Type) {
			// Only the first eight amount bytes travel; the rest of the
			// tuple is zero-filled on load.
			if !ar.Writing() {
				*e = EcdhTuple{}
			}
			if err := ar.RawBytes(e.Amount[:8]); err != nil {
				return err
			}
		} else if err := ar.Field(e, EcdhTupleSpec); err != nil {
			return err
		}
	}

	if ar.Writing() {
		if len(r.OutPk) != outputs {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "outPk has %d entries, want %d", len(r.OutPk), outputs)
		}
	} else {
		r.OutPk = make([]CtKey, outputs)
	}
	for i := 0; i < outputs; i++ {
		if err := ar.Field(&r.OutPk[i].Mask, ECKeySpec); err != nil {
			return err
		}
		if !ar.Writing() {
			r.OutPk[i].Dest = keyIdentity
		}
	}
	return nil
}

// SerializePrunable moves the prunable part: the range proofs in the flavor
// the rct type dictates, then the ring signatures, then the pseudo-outputs
// of the Bulletproof flavors.
func (p *RctSigPrunable) SerializePrunable(ar *blockchain.Archive, typ uint8, inputs, outputs, mixin int) error {
	if typ == RctTypeNull {
		return nil
	}
	if !validRctType(typ) {
		return serial.Ef(serial.ERR_UNKNOWN_RCT_TYPE, "rct type %d", typ)
	}

	switch {
	case typ == RctTypeBulletproofPlus:
		n := uint64(len(p.BulletproofsPlus))
		if err := ar.Uvarint(&n); err != nil {
			return err
		}
		if !ar.Writing() {
			p.BulletproofsPlus = make([]BulletproofPlus, n)
		}
		for i := range p.BulletproofsPlus {
			if err := ar.Field(&p.BulletproofsPlus[i], BulletproofPlusSpec); err != nil {
				return err
			}
		}

	case isBulletproofFlavor(typ):
		// The proof count is a 32-bit word for the first Bulletproof type
		// and a varint from Bulletproof2 on.
		n := uint64(len(p.Bulletproofs))
		if typ == RctTypeBulletproof {
			n32 := uint32(n)
			if err := ar.Uint32(&n32); err != nil {
				return err
			}
			n = uint64(n32)
		} else if err := ar.Uvarint(&n); err != nil {
			return err
		}
		if !ar.Writing() {
			p.Bulletproofs = make([]Bulletproof, n)
		}
		for i := range p.Bulletproofs {
			if err := ar.Field(&p.Bulletproofs[i], BulletproofSpec); err != nil {
				return err
			}
		}

	default:
		// Borromean range proofs, one per output, no count on the wire.
		if ar.Writing() {
			if len(p.RangeSigs) != outputs {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "rangeSigs has %d entries, want %d", len(p.RangeSigs), outputs)
			}
		} else {
			p.RangeSigs = make([]RangeSig, outputs)
		}
		for i := range p.RangeSigs {
			if err := ar.Field(&p.RangeSigs[i], RangeSigSpec); err != nil {
				return err
			}
		}
	}

	if typ == RctTypeCLSAG || typ == RctTypeBulletproofPlus {
		if ar.Writing() {
			if len(p.Clsags) != inputs {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "CLSAGs has %d entries, want %d", len(p.Clsags), inputs)
			}
		} else {
			p.Clsags = make([]ClsagSig, inputs)
		}
		for i := range p.Clsags {
			c := &p.Clsags[i]
			// The s vector follows the ring size with no inner prefix.
			if err := keyVecN(ar, &c.S, mixin+1); err != nil {
				return err
			}
			if err := ar.Field(&c.C1, ECKeySpec); err != nil {
				return err
			}
			if err := ar.Field(&c.D, ECKeySpec); err != nil {
				return err
			}
		}
	} else {
		mgCount := inputs
		cols := 2
		if typ == RctTypeFull {
			mgCount = 1
			cols = inputs + 1
		}
		if ar.Writing() {
			if len(p.MGs) != mgCount {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "MGs has %d entries, want %d", len(p.MGs), mgCount)
			}
		} else {
			p.MGs = make([]MgSig, mgCount)
		}
		for i := range p.MGs {
			mg := &p.MGs[i]
			// The ss matrix is (mixin+1) x cols with neither dimension on
			// the wire; the load could not know sizes that are not implied.
			if ar.Writing() {
				if len(mg.Ss) != mixin+1 {
					return serial.Ef(serial.ERR_SIZE_MISMATCH, "MG ss has %d rows, want %d", len(mg.Ss), mixin+1)
				}
			} else {
				mg.Ss = make([]KeyV, mixin+1)
			}
			for j := range mg.Ss {
				if ar.Writing() && len(mg.Ss[j]) != cols {
					return serial.Ef(serial.ERR_SIZE_MISMATCH, "MG ss row has %d keys, want %d", len(mg.Ss[j]), cols)
				}
				if err := keyVecN(ar, &mg.Ss[j], cols); err != nil {
					return err
				}
			}
			if err := ar.Field(&mg.Cc, ECKeySpec); err != nil {
				return err
			}
		}
	}

	if isBulletproofFlavor(typ) {
		// Non-Simple Bulletproof flavors carry their pseudo-outputs here,
		// separate from any emitted in the base for Simple.
		if err := keyVecN(ar, &p.PseudoOuts, inputs); err != nil {
			return err
		}
	}
	return nil
}
