// Package xio defines the byte transport the archives run over. Readers fill
// the whole buffer or fail; writers take the whole buffer or fail. No partial
// read or write ever reaches the codec layers.
package xio

import "encoding/binary"

type Reader interface {
	// ReadExact fills p completely or returns ERR_END_OF_INPUT.
	ReadExact(p []byte) error
}

type Writer interface {
	// WriteAll writes every byte of p or returns ERR_WRITE.
	WriteAll(p []byte) error
}

type ReadWriter interface {
	Reader
	Writer
}

// ReadUintLE reads a little-endian unsigned integer of the given byte width.
func ReadUintLE(r Reader, width int) (uint64, error) {
	var buf [8]byte
	if err := r.ReadExact(buf[:width]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteUintLE writes v as a little-endian unsigned integer of the given byte
// width. Bits beyond the width are discarded.
func WriteUintLE(w Writer, v uint64, width int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.WriteAll(buf[:width])
}

// ReadByte reads a single byte.
func ReadByte(r Reader) (byte, error) {
	var buf [1]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteByte writes a single byte.
func WriteByte(w Writer, b byte) error {
	return w.WriteAll([]byte{b})
}
