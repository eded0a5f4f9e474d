package varint

import (
	"xmrserial.dev/serial"
	"xmrserial.dev/serial/xio"
)

// Boost portable-archive integer encoding: one signature byte s, then |s|
// little-endian magnitude bytes. s == 0 means zero, a negative s flags a
// negative value. |s| is capped at 8.

// WriteBoostUint encodes a non-negative value.
func WriteBoostUint(w xio.Writer, n uint64) error {
	if n == 0 {
		return xio.WriteByte(w, 0)
	}
	var buf [9]byte
	size := 0
	for v := n; v != 0; v >>= 8 {
		size++
		buf[size] = byte(v)
	}
	buf[0] = byte(size)
	return w.WriteAll(buf[:size+1])
}

// WriteBoostInt encodes a signed value; the sign lives in the size byte.
func WriteBoostInt(w xio.Writer, n int64) error {
	if n >= 0 {
		return WriteBoostUint(w, uint64(n))
	}
	mag := uint64(-n)
	var buf [9]byte
	size := 0
	for v := mag; v != 0; v >>= 8 {
		size++
		buf[size] = byte(v)
	}
	buf[0] = byte(-int8(size))
	return w.WriteAll(buf[:size+1])
}

// ReadBoostUint decodes a value that must be non-negative.
func ReadBoostUint(r xio.Reader) (uint64, error) {
	neg, mag, err := readBoost(r)
	if err != nil {
		return 0, err
	}
	if neg {
		return 0, serial.E(serial.ERR_VARINT_OVERFLOW, "negative varint where unsigned expected")
	}
	return mag, nil
}

// ReadBoostInt decodes a signed value.
func ReadBoostInt(r xio.Reader) (int64, error) {
	neg, mag, err := readBoost(r)
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(mag), nil
	}
	return int64(mag), nil
}

func readBoost(r xio.Reader) (neg bool, mag uint64, err error) {
	b, err := xio.ReadByte(r)
	if err != nil {
		return false, 0, err
	}
	size := int(int8(b))
	if size == 0 {
		return false, 0, nil
	}
	if size < 0 {
		neg = true
		size = -size
	}
	if size > 8 {
		return false, 0, serial.Ef(serial.ERR_VARINT_OVERFLOW, "varint size %d too big", size)
	}
	var buf [8]byte
	if err := r.ReadExact(buf[:size]); err != nil {
		return false, 0, err
	}
	for i := size - 1; i >= 0; i-- {
		mag = mag<<8 | uint64(buf[i])
	}
	return neg, mag, nil
}
