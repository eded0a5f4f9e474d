package schema

import "reflect"

// A slot is an addressable reflect.Value: the walker reads from it when
// dumping and stores into it when loading, so one method body serves both
// directions. These helpers cover the two slot shapes the formats need,
// object attributes and array elements.

// FieldSlot addresses field index path idx of the struct pointed to by msg.
func FieldSlot(msg reflect.Value, idx []int) reflect.Value {
	return msg.FieldByIndex(idx)
}

// EnsureSlice grows or shrinks a slice slot to exactly n elements, reusing
// the backing array when possible. Fresh elements are zero values.
func EnsureSlice(slot reflect.Value, n int) {
	if slot.Cap() >= n {
		old := slot.Len()
		slot.SetLen(n)
		for i := old; i < n; i++ {
			slot.Index(i).Set(reflect.Zero(slot.Type().Elem()))
		}
		return
	}
	grown := reflect.MakeSlice(slot.Type(), n, n)
	reflect.Copy(grown, slot)
	slot.Set(grown)
}

// Variant is the wrapped form of a variant value: it carries the active
// alternative's name next to the value. The raw form stores the value
// directly in an interface-typed field; both encode to identical bytes.
type Variant struct {
	Alt   string
	Value any
}

// Set replaces any prior state with the given alternative.
func (v *Variant) Set(alt string, value any) {
	v.Alt = alt
	v.Value = value
}

// VariantType is the reflect identity the walkers test slots against.
var VariantType = reflect.TypeOf(Variant{})
