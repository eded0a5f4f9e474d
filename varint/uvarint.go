// Package varint implements the three variable-length integer encodings used
// by the codecs: the continuation-bit varint of the blockchain wire format,
// the size-byte-prefixed signed varint of Boost portable archives, and the
// tagged-width varint of portable storage.
package varint

import (
	"github.com/holiman/uint256"

	"xmrserial.dev/serial"
	"xmrserial.dev/serial/xio"
)

// Continuation-bit varint: 7-bit groups, least significant first, high bit set
// on every byte except the last.

// AppendUvarint encodes n and appends the bytes to dst.
func AppendUvarint(dst []byte, n uint64) []byte {
	for n >= 0x80 {
		dst = append(dst, byte(n)|0x80)
		n >>= 7
	}
	return append(dst, byte(n))
}

func WriteUvarint(w xio.Writer, n uint64) error {
	var buf [10]byte
	return w.WriteAll(AppendUvarint(buf[:0], n))
}

// ReadUvarint decodes one continuation-bit varint into a uint64. Values that
// do not fit 64 bits fail with ERR_VARINT_OVERFLOW; use ReadUvarintWide for
// the wide paths.
func ReadUvarint(r xio.Reader) (uint64, error) {
	var buf [1]byte
	var result uint64
	shift := uint(0)
	for {
		if err := r.ReadExact(buf[:]); err != nil {
			return 0, err
		}
		b := buf[0]
		if shift >= 64 || (shift == 63 && b&0x7f > 1) {
			return 0, serial.E(serial.ERR_VARINT_OVERFLOW, "uvarint exceeds 64 bits")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// WriteUvarintWide encodes an arbitrary-width non-negative integer. The wide
// form exists for the key-offset path where observed values exceed 64 bits.
func WriteUvarintWide(w xio.Writer, n *uint256.Int) error {
	var buf [1]byte
	v := new(uint256.Int).Set(n)
	for {
		buf[0] = byte(v.Uint64() & 0x7f)
		v.Rsh(v, 7)
		if !v.IsZero() {
			buf[0] |= 0x80
		}
		if err := w.WriteAll(buf[:]); err != nil {
			return err
		}
		if v.IsZero() {
			return nil
		}
	}
}

// ReadUvarintWide decodes one continuation-bit varint of up to 256 bits.
func ReadUvarintWide(r xio.Reader) (*uint256.Int, error) {
	var buf [1]byte
	result := new(uint256.Int)
	group := new(uint256.Int)
	shift := uint(0)
	for {
		if err := r.ReadExact(buf[:]); err != nil {
			return nil, err
		}
		b := buf[0]
		if shift > 255 {
			return nil, serial.E(serial.ERR_VARINT_OVERFLOW, "uvarint exceeds 256 bits")
		}
		group.SetUint64(uint64(b & 0x7f))
		group.Lsh(group, shift)
		result.Or(result, group)
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}
