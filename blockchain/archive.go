// Package blockchain implements the tagless on-chain wire format: no field
// tags, continuation-bit varints, length-prefixed containers, one-byte
// variant codes. Types are identified purely by their position in the schema.
//
// The archive is symmetric: the same walk serves load and dump, with a
// direction flag selecting the primitive operations and every mutable access
// going through an addressable slot.
package blockchain

import (
	"reflect"

	"github.com/holiman/uint256"

	"xmrserial.dev/serial"
	"xmrserial.dev/serial/schema"
	"xmrserial.dev/serial/varint"
	"xmrserial.dev/serial/xio"
)

// Serializer is the escape hatch from the generic walker: a message type that
// implements it owns its own wire layout under this archive.
type Serializer interface {
	SerializeArchive(ar *Archive) error
}

type Archive struct {
	r        xio.Reader
	w        xio.Writer
	writing  bool
	versions *schema.VersionSetting
	tracker  serial.Tracker
}

// NewWriter returns a dumping archive. The hard-fork profile selects versions
// for version-conditional types; nil means every type's current version.
func NewWriter(w xio.Writer, versions *schema.VersionSetting) *Archive {
	return &Archive{w: w, writing: true, versions: versions}
}

// NewReader returns a loading archive over the same profile contract.
func NewReader(r xio.Reader, versions *schema.VersionSetting) *Archive {
	return &Archive{r: r, versions: versions}
}

func (ar *Archive) Writing() bool { return ar.writing }

// Root is a no-op; the blockchain format has no preamble.
func (ar *Archive) Root() error { return nil }

// Version returns the hard-fork profile's version for the type, or the type's
// declared current version when the profile has no entry. Nothing is read
// from or written to the stream.
func (ar *Archive) Version(sp *schema.Spec) uint32 {
	if v, ok := ar.versions.Get(sp); ok {
		return v
	}
	return sp.Version
}

// Message loads or dumps a root message. msg must be a pointer to the
// concrete type described by sp.
func (ar *Archive) Message(msg any, sp *schema.Spec) error {
	if s, ok := msg.(Serializer); ok {
		return s.SerializeArchive(ar)
	}
	return ar.MessageFields(msg, sp)
}

// MessageFields walks the declared field list, bypassing any custom
// serializer. Custom hooks use it to emit their generic prefix.
func (ar *Archive) MessageFields(msg any, sp *schema.Spec) error {
	return ar.messageFields(reflect.ValueOf(msg).Elem(), sp)
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

// Field loads or dumps a single typed slot; ptr must point at the value.
// Custom serializers are built from Field calls.
func (ar *Archive) Field(ptr any, sp *schema.Spec) error {
	return ar.field(reflect.ValueOf(ptr).Elem(), sp)
}

// Uvarint is shorthand for Field on a continuation-bit varint slot.
func (ar *Archive) Uvarint(v *uint64) error {
	if ar.writing {
		return varint.WriteUvarint(ar.w, *v)
	}
	n, err := varint.ReadUvarint(ar.r)
	if err != nil {
		return err
	}
	*v = n
	return nil
}

// Uint8 reads or writes one raw byte.
func (ar *Archive) Uint8(v *uint8) error {
	if ar.writing {
		return xio.WriteByte(ar.w, *v)
	}
	b, err := xio.ReadByte(ar.r)
	if err != nil {
		return err
	}
	*v = b
	return nil
}

// Uint32 reads or writes a fixed 4-byte little-endian integer.
func (ar *Archive) Uint32(v *uint32) error {
	if ar.writing {
		return xio.WriteUintLE(ar.w, uint64(*v), 4)
	}
	n, err := xio.ReadUintLE(ar.r, 4)
	if err != nil {
		return err
	}
	*v = uint32(n)
	return nil
}

// RawBytes reads or writes len(p) bytes with no framing.
func (ar *Archive) RawBytes(p []byte) error {
	if ar.writing {
		return ar.w.WriteAll(p)
	}
	return ar.r.ReadExact(p)
}

func (ar *Archive) fail(err error) error {
	return serial.WithPath(err, ar.tracker.String())
}

func (ar *Archive) field(slot reflect.Value, sp *schema.Spec) error {
	switch sp.Kind {
	case schema.KindUVarint:
		if ar.writing {
			return varint.WriteUvarint(ar.w, slot.Uint())
		}
		n, err := varint.ReadUvarint(ar.r)
		if err != nil {
			return err
		}
		slot.SetUint(n)
		return nil

	case schema.KindWideUvarint:
		u := slot.Addr().Interface().(*uint256.Int)
		if ar.writing {
			return varint.WriteUvarintWide(ar.w, u)
		}
		n, err := varint.ReadUvarintWide(ar.r)
		if err != nil {
			return err
		}
		u.Set(n)
		return nil

	case schema.KindInt:
		if ar.writing {
			var v uint64
			if sp.Signed {
				v = uint64(slot.Int())
			} else {
				v = slot.Uint()
			}
			return xio.WriteUintLE(ar.w, v, sp.Width)
		}
		n, err := xio.ReadUintLE(ar.r, sp.Width)
		if err != nil {
			return err
		}
		if sp.Signed {
			slot.SetInt(signExtend(n, sp.Width))
		} else {
			slot.SetUint(n)
		}
		return nil

	case schema.KindBool:
		if ar.writing {
			b := byte(0)
			if slot.Bool() {
				b = 1
			}
			return xio.WriteByte(ar.w, b)
		}
		b, err := xio.ReadByte(ar.r)
		if err != nil {
			return err
		}
		if b > 1 {
			return serial.Ef(serial.ERR_INVALID_BOOL, "boolean byte 0x%02x", b)
		}
		slot.SetBool(b == 1)
		return nil

	case schema.KindString:
		if ar.writing {
			s := slot.String()
			if err := varint.WriteUvarint(ar.w, uint64(len(s))); err != nil {
				return err
			}
			return ar.w.WriteAll([]byte(s))
		}
		n, err := varint.ReadUvarint(ar.r)
		if err != nil {
			return err
		}
		// Read in bounded chunks so a corrupt length runs out of input
		// instead of being allocated up front.
		var buf []byte
		for rem := n; rem > 0; {
			k := uint64(containerPrealloc)
			if rem < k {
				k = rem
			}
			chunk := make([]byte, k)
			if err := ar.r.ReadExact(chunk); err != nil {
				return err
			}
			buf = append(buf, chunk...)
			rem -= k
		}
		slot.SetString(string(buf))
		return nil

	case schema.KindBlob:
		return ar.blob(slot, sp)

	case schema.KindContainer:
		return ar.container(slot, sp)

	case schema.KindTuple:
		return ar.tuple(slot, sp)

	case schema.KindVariant:
		return ar.variant(slot, sp)

	case schema.KindMessage:
		if s, ok := slot.Addr().Interface().(Serializer); ok {
			return s.SerializeArchive(ar)
		}
		return ar.messageFields(slot, sp)
	}
	return serial.Ef(serial.ERR_NOT_SUPPORTED, "kind %d", sp.Kind)
}

// blob: fixed blobs are raw SIZE bytes, variable blobs carry a varint length.
func (ar *Archive) blob(slot reflect.Value, sp *schema.Spec) error {
	if sp.FixSize {
		if slot.Kind() != reflect.Array || slot.Len() != sp.Size {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "blob slot %s does not hold %d bytes", slot.Type(), sp.Size)
		}
		return ar.RawBytes(slot.Slice(0, sp.Size).Bytes())
	}
	if ar.writing {
		if err := varint.WriteUvarint(ar.w, uint64(slot.Len())); err != nil {
			return err
		}
		return ar.w.WriteAll(slot.Bytes())
	}
	n, err := varint.ReadUvarint(ar.r)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if err := ar.r.ReadExact(buf); err != nil {
		return err
	}
	slot.SetBytes(buf)
	return nil
}

// container: varint length unless the schema fixes the size, then elements in
// order. Byte containers move as one block.
func (ar *Archive) container(slot reflect.Value, sp *schema.Spec) error {
	var n int
	if ar.writing {
		n = slot.Len()
		if sp.FixSize {
			if n != sp.Size {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed container has %d elements, want %d", n, sp.Size)
			}
		} else if err := varint.WriteUvarint(ar.w, uint64(n)); err != nil {
			return err
		}
	} else {
		if sp.FixSize {
			n = sp.Size
			if slot.Kind() == reflect.Array && slot.Len() != n {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "fixed container slot %s, want %d", slot.Type(), n)
			}
		} else {
			c, err := varint.ReadUvarint(ar.r)
			if err != nil {
				return err
			}
			n = int(c)
		}
		if slot.Kind() == reflect.Slice {
			schema.EnsureSlice(slot, minInt(n, containerPrealloc))
		}
	}

	// Fast path for byte payloads (tx extra and friends).
	if sp.Elem.Kind == schema.KindInt && sp.Elem.Width == 1 && !sp.Elem.Signed && slot.Type().Elem().Kind() == reflect.Uint8 {
		if slot.Kind() == reflect.Slice {
			if ar.writing {
				return ar.RawBytes(slot.Bytes())
			}
			for done := 0; done < n; {
				k := containerPrealloc
				if done > k {
					k = done
				}
				k = minInt(n-done, k)
				schema.EnsureSlice(slot, done+k)
				if err := ar.RawBytes(slot.Slice(done, done+k).Bytes()); err != nil {
					return err
				}
				done += k
			}
			return nil
		}
		return ar.RawBytes(slot.Slice(0, n).Bytes())
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

// containerPrealloc bounds the up-front allocation for wire-supplied lengths;
// longer containers grow as elements actually decode.
const containerPrealloc = 4096

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// tuple: varint arity prefix, then each member against the field-type list.
func (ar *Archive) tuple(slot reflect.Value, sp *schema.Spec) error {
	arity := uint64(len(sp.Fields))
	if ar.writing {
		if err := varint.WriteUvarint(ar.w, arity); err != nil {
			return err
		}
	} else {
		n, err := varint.ReadUvarint(ar.r)
		if err != nil {
			return err
		}
		if n != arity {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "tuple arity %d, want %d", n, arity)
		}
	}
	return ar.messageFields(slot, sp)
}

// variant: one blockchain tag byte, then the alternative's body. Slots are
// either interface-typed (raw form) or a schema.Variant (wrapped form).
func (ar *Archive) variant(slot reflect.Value, sp *schema.Spec) error {
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
		if err := xio.WriteByte(ar.w, alt.Tag); err != nil {
			return ar.fail(err)
		}
		if err := ar.field(body, alt.Spec); err != nil {
			return ar.fail(err)
		}
		ar.tracker.Pop()
		return nil
	}

	tag, err := xio.ReadByte(ar.r)
	if err != nil {
		return err
	}
	alt := schema.FindAltByTag(sp, tag, false)
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

// variantValue resolves the active alternative's body slot for a dump.
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

// storeVariant writes a loaded alternative back through the slot. body is a
// pointer to the concrete alternative.
func storeVariant(slot reflect.Value, alt string, body reflect.Value) {
	if slot.Type() == schema.VariantType {
		slot.Addr().Interface().(*schema.Variant).Set(alt, body.Interface())
		return
	}
	slot.Set(body)
}

func signExtend(v uint64, width int) int64 {
	shift := uint(64 - width*8)
	return int64(v<<shift) >> shift
}
