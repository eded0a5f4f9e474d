package xio

import "xmrserial.dev/serial"

// LimitedReader fails any read that would exceed the remaining budget. The
// budget only shrinks; a failed read does not consume it.
type LimitedReader struct {
	R     Reader
	Limit int
}

func (lr *LimitedReader) ReadExact(p []byte) error {
	if len(p) > lr.Limit {
		return serial.Ef(serial.ERR_END_OF_INPUT, "read of %d exceeds limit %d", len(p), lr.Limit)
	}
	if err := lr.R.ReadExact(p); err != nil {
		return err
	}
	lr.Limit -= len(p)
	return nil
}
