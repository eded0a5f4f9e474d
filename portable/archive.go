package portable

import (
	"xmrserial.dev/serial"
	"xmrserial.dev/serial/varint"
	"xmrserial.dev/serial/xio"
)

const (
	signatureA    = 0x01011101
	signatureB    = 0x01020101
	formatVersion = 1

	maxSectionName = 255
)

// Archive is the symmetric portable-storage codec. With modeled set (the
// default), loaded scalars come back as *Int carrying their wire type so a
// re-dump reproduces the input bytes exactly.
type Archive struct {
	r       xio.Reader
	w       xio.Writer
	writing bool
	modeled bool
	tracker serial.Tracker
}

func NewWriter(w xio.Writer) *Archive {
	return &Archive{w: w, writing: true, modeled: true}
}

func NewReader(r xio.Reader) *Archive {
	return &Archive{r: r, modeled: true}
}

// NewReaderPlain returns a loading archive that unwraps scalar entries to
// bare uint64 values and arrays to []Entry, discarding wire-type fidelity.
func NewReaderPlain(r xio.Reader) *Archive {
	return &Archive{r: r}
}

func (ar *Archive) Writing() bool { return ar.writing }

// Root reads or writes the nine-byte storage preamble: signature A,
// signature B, format version.
func (ar *Archive) Root() error {
	if ar.writing {
		if err := xio.WriteUintLE(ar.w, signatureA, 4); err != nil {
			return err
		}
		if err := xio.WriteUintLE(ar.w, signatureB, 4); err != nil {
			return err
		}
		return xio.WriteByte(ar.w, formatVersion)
	}
	sigA, err := xio.ReadUintLE(ar.r, 4)
	if err != nil {
		return err
	}
	sigB, err := xio.ReadUintLE(ar.r, 4)
	if err != nil {
		return err
	}
	if sigA != signatureA || sigB != signatureB {
		return serial.Ef(serial.ERR_BAD_HEADER, "storage signature %08x %08x", sigA, sigB)
	}
	ver, err := xio.ReadByte(ar.r)
	if err != nil {
		return err
	}
	if ver != formatVersion {
		return serial.Ef(serial.ERR_UNSUPPORTED_FORMAT_VERSION, "storage format version %d", ver)
	}
	return nil
}

// Section loads into or dumps from sec, the root (or a nested) object.
func (ar *Archive) Section(sec *Section) error {
	if ar.writing {
		if err := varint.WritePortableVarint(ar.w, uint64(sec.Len())); err != nil {
			return err
		}
		for i := range sec.entries {
			e := &sec.entries[i]
			ar.tracker.PushField(e.name)
			if err := ar.sectionName(&e.name); err != nil {
				return ar.fail(err)
			}
			if err := ar.storageEntry(&e.value); err != nil {
				return ar.fail(err)
			}
			ar.tracker.Pop()
		}
		return nil
	}

	count, err := varint.ReadPortableVarint(ar.r)
	if err != nil {
		return err
	}
	sec.entries = sec.entries[:0]
	for i := uint64(0); i < count; i++ {
		var name string
		if err := ar.sectionName(&name); err != nil {
			return ar.fail(err)
		}
		ar.tracker.PushField(name)
		var val Entry
		if err := ar.storageEntry(&val); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
		sec.entries = append(sec.entries, sectionEntry{name: name, value: val})
	}
	return nil
}

func (ar *Archive) fail(err error) error {
	return serial.WithPath(err, ar.tracker.String())
}

// sectionName moves a one-byte-length ASCII key of at most 255 bytes.
func (ar *Archive) sectionName(name *string) error {
	if ar.writing {
		if len(*name) > maxSectionName {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "section name %d bytes long", len(*name))
		}
		for i := 0; i < len(*name); i++ {
			if (*name)[i] > 0x7f {
				return serial.Ef(serial.ERR_UNKNOWN_TAG_NAME, "section name %q is not ASCII", *name)
			}
		}
		if err := xio.WriteByte(ar.w, byte(len(*name))); err != nil {
			return err
		}
		return ar.w.WriteAll([]byte(*name))
	}
	n, err := xio.ReadByte(ar.r)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if err := ar.r.ReadExact(buf); err != nil {
		return err
	}
	*name = string(buf)
	return nil
}

// storageEntry moves one `type byte || body` entry. Typed arrays carry the
// flagged type byte themselves.
func (ar *Archive) storageEntry(e *Entry) error {
	if ar.writing {
		switch v := (*e).(type) {
		case *Array:
			return ar.array(v)
		case *Int:
			if err := xio.WriteByte(ar.w, v.T); err != nil {
				return err
			}
			return ar.entryBody(v.T, e)
		case []byte:
			if err := xio.WriteByte(ar.w, TypeString); err != nil {
				return err
			}
			return ar.entryBody(TypeString, e)
		case *Section:
			if err := xio.WriteByte(ar.w, TypeObject); err != nil {
				return err
			}
			return ar.entryBody(TypeObject, e)
		default:
			return serial.Ef(serial.ERR_NOT_SUPPORTED, "cannot model storage entry %T", *e)
		}
	}

	t, err := xio.ReadByte(ar.r)
	if err != nil {
		return err
	}
	return ar.entryBody(t, e)
}

// entryBody moves the body of an entry of the given type. On load the decoded
// value is stored through e.
func (ar *Archive) entryBody(t byte, e *Entry) error {
	if t&ArrayFlag != 0 || t == TypeArray {
		return ar.arrayBody(t, e)
	}
	if w, ok := typeWidth(t); ok {
		if ar.writing {
			v := (*e).(*Int)
			return xio.WriteUintLE(ar.w, v.V, w)
		}
		n, err := xio.ReadUintLE(ar.r, w)
		if err != nil {
			return err
		}
		if ar.modeled {
			*e = &Int{T: t, V: n}
		} else {
			*e = n
		}
		return nil
	}
	switch t {
	case TypeString:
		if ar.writing {
			data := (*e).([]byte)
			if err := varint.WritePortableVarint(ar.w, uint64(len(data))); err != nil {
				return err
			}
			return ar.w.WriteAll(data)
		}
		n, err := varint.ReadPortableVarint(ar.r)
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := ar.r.ReadExact(buf); err != nil {
			return err
		}
		*e = buf
		return nil

	case TypeObject:
		if ar.writing {
			return ar.Section((*e).(*Section))
		}
		sec := &Section{}
		if err := ar.Section(sec); err != nil {
			return err
		}
		*e = sec
		return nil

	case TypeDouble:
		return serial.E(serial.ERR_NOT_SUPPORTED, "double entries are not supported")
	}
	return serial.Ef(serial.ERR_NOT_SUPPORTED, "unrecognized entry type 0x%02x", t)
}

// array dumps a typed array: flagged type byte, element count, then bare
// element bodies.
func (ar *Archive) array(a *Array) error {
	if a.T&ArrayFlag != 0 || a.T == TypeArray {
		return serial.Ef(serial.ERR_NOT_SUPPORTED, "invalid array element type 0x%02x", a.T)
	}
	if err := xio.WriteByte(ar.w, a.T|ArrayFlag); err != nil {
		return err
	}
	if err := varint.WritePortableVarint(ar.w, uint64(len(a.V))); err != nil {
		return err
	}
	for i := range a.V {
		ar.tracker.PushIndex(i)
		if err := ar.entryBody(a.T, &a.V[i]); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
	}
	return nil
}

// arrayBody loads an array entry. A bare ARRAY type code is followed by the
// array's own flagged type byte; a flagged code carries the element type
// directly.
func (ar *Archive) arrayBody(t byte, e *Entry) error {
	elem := t &^ ArrayFlag
	if t == TypeArray {
		inner, err := xio.ReadByte(ar.r)
		if err != nil {
			return err
		}
		if inner&ArrayFlag == 0 {
			return serial.Ef(serial.ERR_NOT_SUPPORTED, "nested array type 0x%02x lacks array flag", inner)
		}
		elem = inner &^ ArrayFlag
	}
	count, err := varint.ReadPortableVarint(ar.r)
	if err != nil {
		return err
	}
	vals := make([]Entry, 0, minInt(int(count), 4096))
	for i := uint64(0); i < count; i++ {
		ar.tracker.PushIndex(int(i))
		var v Entry
		if err := ar.entryBody(elem, &v); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
		vals = append(vals, v)
	}
	if ar.modeled {
		*e = &Array{T: elem, V: vals}
	} else {
		*e = vals
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
