// Package serial carries the error taxonomy and serialization-path tracking
// shared by the blockchain, Boost and portable-storage codecs.
package serial

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ERR_END_OF_INPUT               ErrorCode = "ERR_END_OF_INPUT"
	ERR_WRITE                      ErrorCode = "ERR_WRITE"
	ERR_BAD_HEADER                 ErrorCode = "ERR_BAD_HEADER"
	ERR_UNSUPPORTED_TRACKING       ErrorCode = "ERR_UNSUPPORTED_TRACKING"
	ERR_UNSUPPORTED_FORMAT_VERSION ErrorCode = "ERR_UNSUPPORTED_FORMAT_VERSION"
	ERR_UNKNOWN_VARIANT_TAG        ErrorCode = "ERR_UNKNOWN_VARIANT_TAG"
	ERR_UNKNOWN_RCT_TYPE           ErrorCode = "ERR_UNKNOWN_RCT_TYPE"
	ERR_SIZE_MISMATCH              ErrorCode = "ERR_SIZE_MISMATCH"
	ERR_INVALID_BOOL               ErrorCode = "ERR_INVALID_BOOL"
	ERR_VARINT_OVERFLOW            ErrorCode = "ERR_VARINT_OVERFLOW"
	ERR_MISSING_FIELD              ErrorCode = "ERR_MISSING_FIELD"
	ERR_UNKNOWN_TAG_NAME           ErrorCode = "ERR_UNKNOWN_TAG_NAME"
	ERR_NOT_SUPPORTED              ErrorCode = "ERR_NOT_SUPPORTED"
)

// Error is the single error type surfaced by the codecs. Path holds the
// breadcrumb of field names, array indices and variant alternatives that were
// being walked when the error occurred, e.g. "[vin][0][<txin_to_key>][key_offsets][3]".
type Error struct {
	Code ErrorCode
	Msg  string
	Path string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Code)
	if e.Msg != "" {
		s = fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	if e.Path != "" {
		s = fmt.Sprintf("%s, path: %s", s, e.Path)
	}
	return s
}

func E(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

func Ef(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a codec error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// WithPath annotates err with the serialization path unless a deeper layer
// already did. Non-codec errors pass through untouched.
func WithPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
