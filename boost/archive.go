// Package boost implements the portable-binary archive used by wallet files
// and unsigned/signed transaction sets: a fixed magic preamble, size-byte
// varint integers, and a per-type version emitted on the type's first
// occurrence in the archive.
package boost

import (
	"reflect"

	"github.com/holiman/uint256"

	"xmrserial.dev/serial"
	"xmrserial.dev/serial/schema"
	"xmrserial.dev/serial/varint"
	"xmrserial.dev/serial/xio"
)

// Serializer is the custom-layout hook for this archive. The walker resolves
// the type's version (reading or writing it on first occurrence) and hands it
// to the hook.
type Serializer interface {
	BoostSerialize(ar *Archive, version uint32) error
}

// archiveMagic is the fixed start of the preamble: 0x01 0x16 and the ASCII
// archive banner. Root follows it with two zero signed varints (tracking,
// format version).
var archiveMagic = []byte("\x01\x16serialization::archive")

type Archive struct {
	r        xio.Reader
	w        xio.Writer
	writing  bool
	db       *schema.VersionDB
	versions *schema.VersionSetting
	tracker  serial.Tracker
}

// NewWriter returns a dumping archive. versions optionally overrides the
// version emitted for a type's first occurrence; nil emits every type's
// current version.
func NewWriter(w xio.Writer, versions *schema.VersionSetting) *Archive {
	return &Archive{w: w, writing: true, db: schema.NewVersionDB(), versions: versions}
}

func NewReader(r xio.Reader) *Archive {
	return &Archive{r: r, db: schema.NewVersionDB()}
}

func (ar *Archive) Writing() bool { return ar.writing }

// Root reads or writes the 26-byte archive preamble.
func (ar *Archive) Root() error {
	if ar.writing {
		if err := ar.w.WriteAll(archiveMagic); err != nil {
			return err
		}
		if err := varint.WriteBoostUint(ar.w, 0); err != nil {
			return err
		}
		return varint.WriteBoostUint(ar.w, 0)
	}
	hdr := make([]byte, len(archiveMagic))
	if err := ar.r.ReadExact(hdr); err != nil {
		return err
	}
	for i := range hdr {
		if hdr[i] != archiveMagic[i] {
			return serial.E(serial.ERR_BAD_HEADER, "unrecognized archive magic")
		}
	}
	tracking, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return err
	}
	if tracking != 0 {
		return serial.Ef(serial.ERR_UNSUPPORTED_TRACKING, "archive tracking %d", tracking)
	}
	// Archive format version; all known producers write zero.
	_, err = varint.ReadBoostUint(ar.r)
	return err
}

// Message loads or dumps one message, resolving its version first. Multiple
// root messages may share one archive; the version database spans them.
func (ar *Archive) Message(msg any, sp *schema.Spec) error {
	ver, err := ar.version(sp)
	if err != nil {
		return ar.fail(err)
	}
	if s, ok := msg.(Serializer); ok {
		return s.BoostSerialize(ar, ver)
	}
	return ar.MessageFields(msg, sp)
}

// MessageFields walks the declared fields, bypassing any custom hook.
func (ar *Archive) MessageFields(msg any, sp *schema.Spec) error {
	return ar.messageFields(reflect.ValueOf(msg).Elem(), sp)
}

// Field loads or dumps a single typed slot; ptr must point at the value.
func (ar *Archive) Field(ptr any, sp *schema.Spec) error {
	return ar.field(reflect.ValueOf(ptr).Elem(), sp)
}

func (ar *Archive) fail(err error) error {
	return serial.WithPath(err, ar.tracker.String())
}

func (ar *Archive) messageFields(mv reflect.Value, sp *schema.Spec) error {
	for i := range sp.Fields {
		f := &sp.Fields[i]
		ar.tracker.PushField(f.Name)
		if err := ar.field(schema.FieldSlot(mv, f.Index), f.Spec); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
	}
	return nil
}

// boostVersioned reports whether the type carries a first-occurrence version
// prefix in this archive. Elementary types never do; containers do only when
// their element is non-elementary and the container is not a raw array.
func boostVersioned(sp *schema.Spec) bool {
	switch sp.Kind {
	case schema.KindContainer:
		return !sp.RawBoost && !sp.Elem.Elementary()
	case schema.KindBlob, schema.KindTuple, schema.KindVariant, schema.KindMessage:
		return true
	}
	return false
}

// version resolves the type's version under the read-once-per-type contract:
// the first occurrence reads or writes `tracking || version`, every later
// occurrence uses the cached pair.
func (ar *Archive) version(sp *schema.Spec) (uint32, error) {
	if !boostVersioned(sp) {
		return 0, nil
	}
	if _, v, ok := ar.db.Get(sp); ok {
		return v, nil
	}
	if ar.writing {
		v := sp.Version
		if ov, ok := ar.versions.Get(sp); ok {
			v = ov
		}
		if err := varint.WriteBoostUint(ar.w, 0); err != nil {
			return 0, err
		}
		if err := varint.WriteBoostUint(ar.w, uint64(v)); err != nil {
			return 0, err
		}
		ar.db.Put(sp, 0, v)
		return v, nil
	}
	tracking, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return 0, err
	}
	if tracking != 0 {
		return 0, serial.Ef(serial.ERR_UNSUPPORTED_TRACKING, "tracking %d for %s", tracking, sp.Key())
	}
	ver, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return 0, err
	}
	ar.db.Put(sp, uint32(tracking), uint32(ver))
	return uint32(ver), nil
}

func (ar *Archive) field(slot reflect.Value, sp *schema.Spec) error {
	switch sp.Kind {
	case schema.KindUVarint:
		if ar.writing {
			return varint.WriteBoostUint(ar.w, slot.Uint())
		}
		n, err := varint.ReadBoostUint(ar.r)
		if err != nil {
			return err
		}
		slot.SetUint(n)
		return nil

	case schema.KindWideUvarint:
		u := slot.Addr().Interface().(*uint256.Int)
		if ar.writing {
			if !u.IsUint64() {
				return serial.E(serial.ERR_VARINT_OVERFLOW, "wide value exceeds boost varint range")
			}
			return varint.WriteBoostUint(ar.w, u.Uint64())
		}
		n, err := varint.ReadBoostUint(ar.r)
		if err != nil {
			return err
		}
		u.SetUint64(n)
		return nil

	case schema.KindInt:
		return ar.integer(slot, sp)

	case schema.KindBool:
		if ar.writing {
			var v uint64
			if slot.Bool() {
				v = 1
			}
			return varint.WriteBoostUint(ar.w, v)
		}
		n, err := varint.ReadBoostUint(ar.r)
		if err != nil {
			return err
		}
		if n > 1 {
			return serial.Ef(serial.ERR_INVALID_BOOL, "boolean value %d", n)
		}
		slot.SetBool(n == 1)
		return nil

	case schema.KindString:
		if ar.writing {
			s := slot.String()
			if err := varint.WriteBoostUint(ar.w, uint64(len(s))); err != nil {
				return err
			}
			if len(s) == 0 {
				return nil
			}
			return ar.w.WriteAll([]byte(s))
		}
		n, err := varint.ReadBoostUint(ar.r)
		if err != nil {
			return err
		}
		if n == 0 {
			slot.SetString("")
			return nil
		}
		buf := make([]byte, n)
		if err := ar.r.ReadExact(buf); err != nil {
			return err
		}
		slot.SetString(string(buf))
		return nil

	case schema.KindBlob:
		if _, err := ar.version(sp); err != nil {
			return err
		}
		return ar.blob(slot, sp)

	case schema.KindContainer:
		return ar.container(slot, sp)

	case schema.KindTuple:
		if _, err := ar.version(sp); err != nil {
			return err
		}
		return ar.messageFields(slot, sp)

	case schema.KindVariant:
		return ar.variant(slot, sp)

	case schema.KindMessage:
		ver, err := ar.version(sp)
		if err != nil {
			return err
		}
		if s, ok := slot.Addr().Interface().(Serializer); ok {
			return s.BoostSerialize(ar, ver)
		}
		return ar.messageFields(slot, sp)
	}
	return serial.Ef(serial.ERR_NOT_SUPPORTED, "kind %d", sp.Kind)
}

// integer: one-byte types are raw bytes, everything else a signed varint.
func (ar *Archive) integer(slot reflect.Value, sp *schema.Spec) error {
	if sp.Width == 1 {
		if ar.writing {
			var b byte
			if sp.Signed {
				b = byte(slot.Int())
			} else {
				b = byte(slot.Uint())
			}
			return xio.WriteByte(ar.w, b)
		}
		b, err := xio.ReadByte(ar.r)
		if err != nil {
			return err
		}
		if sp.Signed {
			slot.SetInt(int64(int8(b)))
		} else {
			slot.SetUint(uint64(b))
		}
		return nil
	}
	if ar.writing {
		if sp.Signed {
			return varint.WriteBoostInt(ar.w, slot.Int())
		}
		return varint.WriteBoostUint(ar.w, slot.Uint())
	}
	if sp.Signed {
		n, err := varint.ReadBoostInt(ar.r)
		if err != nil {
			return err
		}
		slot.SetInt(n)
		return nil
	}
	n, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return err
	}
	slot.SetUint(n)
	return nil
}

// blob body: always length-prefixed; fixed blobs must carry exactly SIZE
// bytes. The blob type's version pair is handled by the field dispatch.
func (ar *Archive) blob(slot reflect.Value, sp *schema.Spec) error {
	if ar.writing {
		var data []byte
		if slot.Kind() == reflect.Array {
			data = slot.Slice(0, slot.Len()).Bytes()
		} else {
			data = slot.Bytes()
		}
		if sp.FixSize && len(data) != sp.Size {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed blob has %d bytes, want %d", len(data), sp.Size)
		}
		if err := varint.WriteBoostUint(ar.w, uint64(len(data))); err != nil {
			return err
		}
		return ar.w.WriteAll(data)
	}
	n, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return err
	}
	if sp.FixSize && int(n) != sp.Size {
		return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed blob length %d, want %d", n, sp.Size)
	}
	if slot.Kind() == reflect.Array {
		return ar.r.ReadExact(slot.Slice(0, slot.Len()).Bytes())
	}
	buf := make([]byte, n)
	if err := ar.r.ReadExact(buf); err != nil {
		return err
	}
	slot.SetBytes(buf)
	return nil
}

// container framing: for non-raw containers of non-elementary elements the
// container type's version (first occurrence) precedes the length, and one
// extra varint after the length carries the element type's current version.
// Raw arrays write the bare elements with no prefixes at all.
func (ar *Archive) container(slot reflect.Value, sp *schema.Spec) error {
	if sp.RawBoost {
		if !sp.FixSize {
			return serial.Ef(serial.ERR_NOT_SUPPORTED, "raw boost container %s without fixed size", sp.Key())
		}
		return ar.containerElems(slot, sp, sp.Size)
	}

	versioned := boostVersioned(sp)
	if versioned {
		if _, err := ar.version(sp); err != nil {
			return err
		}
	}

	var n int
	if ar.writing {
		n = slot.Len()
		if sp.FixSize && n != sp.Size {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed container has %d elements, want %d", n, sp.Size)
		}
		if err := varint.WriteBoostUint(ar.w, uint64(n)); err != nil {
			return err
		}
		if versioned {
			if err := varint.WriteBoostUint(ar.w, uint64(sp.Elem.Version)); err != nil {
				return err
			}
		}
	} else {
		c, err := varint.ReadBoostUint(ar.r)
		if err != nil {
			return err
		}
		n = int(c)
		if versioned {
			// Element version; informational, the element types re-state
			// theirs through the registry.
			if _, err := varint.ReadBoostUint(ar.r); err != nil {
				return err
			}
		}
		if slot.Kind() == reflect.Array && slot.Len() != n {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed container length %d, want %d", n, slot.Len())
		}
	}
	return ar.containerElems(slot, sp, n)
}

func (ar *Archive) containerElems(slot reflect.Value, sp *schema.Spec, n int) error {
	if ar.writing && slot.Len() != n {
		return serial.Ef(serial.ERR_SIZE_MISMATCH, "container has %d elements, want %d", slot.Len(), n)
	}
	if !ar.writing && slot.Kind() == reflect.Array && slot.Len() != n {
		return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed container slot %s, want %d", slot.Type(), n)
	}
	if !ar.writing && slot.Kind() == reflect.Slice {
		schema.EnsureSlice(slot, minInt(n, containerPrealloc))
	}
	for i := 0; i < n; i++ {
		if !ar.writing && slot.Kind() == reflect.Slice && i >= slot.Len() {
			schema.EnsureSlice(slot, minInt(n, 2*i+1))
		}
		ar.tracker.PushIndex(i)
		if err := ar.field(slot.Index(i), sp.Elem); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
	}
	return nil
}

// variant: the variant type's version, one signed-varint Boost tag, then the
// alternative's body (which states its own version on first occurrence).
func (ar *Archive) variant(slot reflect.Value, sp *schema.Spec) error {
	if _, err := ar.version(sp); err != nil {
		return err
	}
	if ar.writing {
		body, err := variantValue(slot, sp)
		if err != nil {
			return err
		}
		alt := schema.FindAltByType(sp, body.Type())
		if alt == nil {
			return serial.Ef(serial.ERR_UNKNOWN_VARIANT_TAG, "no %s alternative for %s", sp.Key(), body.Type())
		}
		ar.tracker.PushVariant(alt.Name)
		if err := varint.WriteBoostUint(ar.w, uint64(alt.BoostTag)); err != nil {
			return ar.fail(err)
		}
		if err := ar.field(body, alt.Spec); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
		return nil
	}

	tag, err := varint.ReadBoostUint(ar.r)
	if err != nil {
		return err
	}
	if tag > 0xff {
		return serial.Ef(serial.ERR_UNKNOWN_VARIANT_TAG, "tag %d for %s", tag, sp.Key())
	}
	alt := schema.FindAltByTag(sp, byte(tag), true)
	if alt == nil {
		return serial.Ef(serial.ERR_UNKNOWN_VARIANT_TAG, "tag 0x%02x for %s", tag, sp.Key())
	}
	ar.tracker.PushVariant(alt.Name)
	body := reflect.New(alt.Spec.Type)
	if err := ar.field(body.Elem(), alt.Spec); err != nil {
		return ar.fail(err)
	}
	ar.tracker.Pop()
	storeVariant(slot, alt.Name, body)
	return nil
}

func variantValue(slot reflect.Value, sp *schema.Spec) (reflect.Value, error) {
	if slot.Type() == schema.VariantType {
		v := slot.Addr().Interface().(*schema.Variant)
		if v.Value == nil {
			return reflect.Value{}, serial.Ef(serial.ERR_MISSING_FIELD, "empty %s variant", sp.Key())
		}
		return reflect.ValueOf(v.Value).Elem(), nil
	}
	if slot.IsNil() {
		return reflect.Value{}, serial.Ef(serial.ERR_MISSING_FIELD, "empty %s variant", sp.Key())
	}
	return slot.Elem().Elem(), nil
}

func storeVariant(slot reflect.Value, alt string, body reflect.Value) {
	if slot.Type() == schema.VariantType {
		slot.Addr().Interface().(*schema.Variant).Set(alt, body.Interface())
		return
	}
	slot.Set(body)
}

const containerPrealloc = 4096

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
