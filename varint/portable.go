package varint

import (
	"xmrserial.dev/serial"
	"xmrserial.dev/serial/xio"
)

// Portable-storage tagged-width varint: the low two bits of the first byte
// select a total width of 1, 2, 4 or 8 bytes, the remaining bits carry the
// value little-endian. Range 0..2^62-1; the encoder picks the smallest width.

const (
	portableMarkByte  = 0
	portableMarkWord  = 1
	portableMarkDword = 2
	portableMarkInt64 = 3

	// PortableVarintMax is the largest encodable value.
	PortableVarintMax = 1<<62 - 1
)

func WritePortableVarint(w xio.Writer, n uint64) error {
	switch {
	case n <= 63:
		return xio.WriteUintLE(w, n<<2|portableMarkByte, 1)
	case n <= 16383:
		return xio.WriteUintLE(w, n<<2|portableMarkWord, 2)
	case n <= 1073741823:
		return xio.WriteUintLE(w, n<<2|portableMarkDword, 4)
	case n <= PortableVarintMax:
		return xio.WriteUintLE(w, n<<2|portableMarkInt64, 8)
	default:
		return serial.Ef(serial.ERR_VARINT_OVERFLOW, "value %d exceeds portable varint range", n)
	}
}

func ReadPortableVarint(r xio.Reader) (uint64, error) {
	b, err := xio.ReadByte(r)
	if err != nil {
		return 0, err
	}
	width := 1 << (b & 0x03)
	result := uint64(b)
	if width > 1 {
		rest, err := xio.ReadUintLE(r, width-1)
		if err != nil {
			return 0, err
		}
		result |= rest << 8
	}
	return result >> 2, nil
}
