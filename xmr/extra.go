package xmr

import (
	"errors"

	"xmrserial.dev/serial"
	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/xio"
)

const maxExtraPadding = 255

// SerializeArchive spans the padding: zero bytes with no framing. The load
// direction consumes bytes to the end of input, so padding must be the last
// field of an extra blob; a non-zero byte or more than 255 bytes is an error.
func (p *TxExtraPadding) SerializeArchive(ar *blockchain.Archive) error {
	if ar.Writing() {
		if p.Size > maxExtraPadding {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "padding of %d bytes", p.Size)
		}
		zero := make([]byte, p.Size)
		return ar.RawBytes(zero)
	}
	p.Size = 0
	var b [1]byte
	for {
		if err := ar.RawBytes(b[:]); err != nil {
			if serial.CodeOf(err) == serial.ERR_END_OF_INPUT {
				return nil
			}
			return err
		}
		if b[0] != 0 {
			return serial.E(serial.ERR_SIZE_MISMATCH, "non-zero byte inside padding")
		}
		p.Size++
		if p.Size > maxExtraPadding {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "padding exceeds %d bytes", maxExtraPadding)
		}
	}
}

// ParseExtra splits a transaction's extra blob into its tagged fields.
func ParseExtra(extra []byte) ([]TxExtraField, error) {
	mem := xio.NewMemory(extra)
	ar := blockchain.NewReader(mem, nil)
	var fields []TxExtraField
	for mem.Remaining() > 0 {
		var f TxExtraField
		if err := ar.Field(&f, TxExtraFieldSpec); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// DumpExtra is the inverse of ParseExtra.
func DumpExtra(fields []TxExtraField) ([]byte, error) {
	mem := xio.NewMemory(nil)
	ar := blockchain.NewWriter(mem, nil)
	for _, f := range fields {
		if err := ar.Field(&f, TxExtraFieldSpec); err != nil {
			return nil, err
		}
	}
	return mem.Bytes(), nil
}

// FindExtraPubKey returns the first tx public key in the parsed fields.
func FindExtraPubKey(fields []TxExtraField) (ECPoint, error) {
	for _, f := range fields {
		if pk, ok := f.(*TxExtraPubKey); ok {
			return pk.PubKey, nil
		}
	}
	return ECPoint{}, errors.New("no tx public key in extra")
}
