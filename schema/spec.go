// Package schema holds the static type descriptors the archives walk, the
// slot (eref) helpers that let one code path serve both serialization
// directions, and the per-archive version registry.
//
// Descriptors are immutable program-lifetime values; archives never mutate
// them and may share them freely across goroutines.
package schema

import (
	"fmt"
	"reflect"
	"strings"
)

type Kind uint8

const (
	KindUVarint Kind = iota
	KindWideUvarint
	KindInt
	KindBool
	KindString
	KindBlob
	KindContainer
	KindTuple
	KindVariant
	KindMessage
)

// Spec describes one serializable type. Which members are meaningful depends
// on Kind: Width/Signed for integers, FixSize/Size for blobs and containers,
// Elem for containers, Fields for messages and tuples, Alts for variants.
type Spec struct {
	Kind Kind
	Name string

	// Type is the concrete Go struct (or named blob) used to allocate values
	// during a load. Unset for primitives and anonymous containers.
	Type reflect.Type

	Width  int
	Signed bool

	FixSize bool
	Size    int

	// RawBoost marks containers whose Boost encoding omits the container and
	// per-element version prefixes (statically sized arrays).
	RawBoost bool

	Elem   *Spec
	Fields []Field
	Alts   []Alt

	// Version is the type's current (default) version where layouts are
	// version-conditional.
	Version uint32

	key string
}

// Field is one named member of a message or tuple. Go names the struct field
// carrying the value; Index is resolved from it by Resolve.
type Field struct {
	Name  string
	Go    string
	Spec  *Spec
	Index []int
}

// Alt is one variant alternative with its two independent one-byte tags: Tag
// for the blockchain wire format, BoostTag for Boost archives.
type Alt struct {
	Name     string
	Spec     *Spec
	Tag      byte
	BoostTag byte
}

// Elementary reports whether the type is never versioned: varints, fixed
// integers, bools and strings.
func (s *Spec) Elementary() bool {
	switch s.Kind {
	case KindUVarint, KindWideUvarint, KindInt, KindBool, KindString:
		return true
	}
	return false
}

// Key returns the identity under which the type is versioned. Named types
// version under their name; anonymous containers and tuples share a
// structural key, so every inline Container<T> field of the same T maps to
// one registry entry.
func (s *Spec) Key() string {
	if s.key != "" {
		return s.key
	}
	if s.Name != "" {
		s.key = s.Name
		return s.key
	}
	switch s.Kind {
	case KindUVarint:
		s.key = "uvarint"
	case KindWideUvarint:
		s.key = "uvarint_wide"
	case KindInt:
		sign := "u"
		if s.Signed {
			sign = "i"
		}
		s.key = fmt.Sprintf("%sint%d", sign, s.Width*8)
	case KindBool:
		s.key = "bool"
	case KindString:
		s.key = "string"
	case KindBlob:
		s.key = fmt.Sprintf("blob%d", s.Size)
	case KindContainer:
		s.key = "container<" + s.Elem.Key() + ">"
	case KindTuple:
		parts := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			parts[i] = f.Spec.Key()
		}
		s.key = "tuple<" + strings.Join(parts, ",") + ">"
	default:
		s.key = fmt.Sprintf("anon_kind%d", s.Kind)
	}
	return s.key
}

// Shared primitive descriptors.
var (
	UVarint     = &Spec{Kind: KindUVarint}
	WideUvarint = &Spec{Kind: KindWideUvarint}
	Int8        = &Spec{Kind: KindInt, Width: 1, Signed: true}
	Int16       = &Spec{Kind: KindInt, Width: 2, Signed: true}
	Int32       = &Spec{Kind: KindInt, Width: 4, Signed: true}
	Int64       = &Spec{Kind: KindInt, Width: 8, Signed: true}
	UInt8       = &Spec{Kind: KindInt, Width: 1}
	UInt16      = &Spec{Kind: KindInt, Width: 2}
	UInt32      = &Spec{Kind: KindInt, Width: 4}
	UInt64      = &Spec{Kind: KindInt, Width: 8}
	Bool        = &Spec{Kind: KindBool}
	String      = &Spec{Kind: KindString}

	// SizeT is a size_t, an alias of UInt64: fixed 8-byte little-endian in
	// the blockchain format, a signed varint in Boost archives.
	SizeT = UInt64
)

// Resolve fills in the struct-field index paths of every Field reachable from
// sp. It must be called once, at registration time, for every root message
// spec; it panics on a descriptor that does not match its Go struct, which is
// a programming error in the schema catalog.
func Resolve(specs ...*Spec) {
	seen := map[*Spec]bool{}
	for _, sp := range specs {
		resolve(sp, seen)
	}
}

func resolve(sp *Spec, seen map[*Spec]bool) {
	if sp == nil || seen[sp] {
		return
	}
	seen[sp] = true
	sp.Key()
	switch sp.Kind {
	case KindContainer:
		resolve(sp.Elem, seen)
	case KindVariant:
		for _, a := range sp.Alts {
			resolve(a.Spec, seen)
		}
	case KindMessage, KindTuple:
		for i := range sp.Fields {
			f := &sp.Fields[i]
			if f.Index == nil {
				if sp.Type == nil {
					panic(fmt.Sprintf("schema: %s has fields but no Go type", sp.Key()))
				}
				goName := f.Go
				if goName == "" {
					goName = f.Name
				}
				sf, ok := sp.Type.FieldByName(goName)
				if !ok {
					panic(fmt.Sprintf("schema: %s has no field %s", sp.Type, goName))
				}
				f.Index = sf.Index
			}
			resolve(f.Spec, seen)
		}
	}
}

// FindAltByType returns the variant alternative whose concrete type matches.
func FindAltByType(sp *Spec, t reflect.Type) *Alt {
	for i := range sp.Alts {
		if sp.Alts[i].Spec.Type == t {
			return &sp.Alts[i]
		}
	}
	return nil
}

// FindAltByTag returns the alternative carrying the given one-byte code under
// the selected tag table.
func FindAltByTag(sp *Spec, tag byte, boost bool) *Alt {
	for i := range sp.Alts {
		t := sp.Alts[i].Tag
		if boost {
			t = sp.Alts[i].BoostTag
		}
		if t == tag {
			return &sp.Alts[i]
		}
	}
	return nil
}
