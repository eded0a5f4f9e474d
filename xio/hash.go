package xio

import "hash"

// HashWriter feeds every written byte into a hash, optionally teeing into a
// second writer. Used to compute message digests while (or instead of)
// producing output bytes.
type HashWriter struct {
	H   hash.Hash
	Sub Writer
}

func NewHashWriter(h hash.Hash, sub Writer) *HashWriter {
	return &HashWriter{H: h, Sub: sub}
}

func (hw *HashWriter) WriteAll(p []byte) error {
	hw.H.Write(p)
	if hw.Sub != nil {
		return hw.Sub.WriteAll(p)
	}
	return nil
}

func (hw *HashWriter) Sum() []byte {
	return hw.H.Sum(nil)
}

// CountingWriter discards bytes and counts them.
type CountingWriter struct {
	N int
}

func (cw *CountingWriter) WriteAll(p []byte) error {
	cw.N += len(p)
	return nil
}
