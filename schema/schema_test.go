package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuralContainerKeys(t *testing.T) {
	blob := &Spec{Kind: KindBlob, Name: "ECKey", FixSize: true, Size: 32}
	a := &Spec{Kind: KindContainer, Elem: blob}
	b := &Spec{Kind: KindContainer, Elem: blob}
	named := &Spec{Kind: KindContainer, Name: "KeyV", Elem: blob}

	// Inline containers of the same element share one identity; a named
	// container type keeps its own.
	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Key(), named.Key())
	require.Equal(t, "KeyV", named.Key())
}

func TestVersionDBReadOnce(t *testing.T) {
	sp := &Spec{Kind: KindMessage, Name: "M"}
	db := NewVersionDB()
	require.False(t, db.Has(sp))
	db.Put(sp, 0, 3)
	db.Put(sp, 0, 9) // second write must not replace the first
	_, v, ok := db.Get(sp)
	require.True(t, ok)
	require.Equal(t, uint32(3), v)
}

func TestVersionSettingFallback(t *testing.T) {
	sp := &Spec{Kind: KindMessage, Name: "M", Version: 7}
	vs := NewVersionSetting()
	_, ok := vs.Get(sp)
	require.False(t, ok)
	vs.Set(sp, 2)
	v, ok := vs.Get(sp)
	require.True(t, ok)
	require.Equal(t, uint32(2), v)

	var nilSetting *VersionSetting
	_, ok = nilSetting.Get(sp)
	require.False(t, ok)
}

func TestVariantSetReplaces(t *testing.T) {
	var v Variant
	v.Set("a", 1)
	v.Set("b", 2)
	require.Equal(t, "b", v.Alt)
	require.Equal(t, 2, v.Value)
}

func TestEnsureSlice(t *testing.T) {
	s := []int{1, 2, 3}
	rv := reflect.ValueOf(&s).Elem()
	EnsureSlice(rv, 2)
	require.Equal(t, []int{1, 2}, s)
	EnsureSlice(rv, 5)
	require.Len(t, s, 5)
	require.Equal(t, 1, s[0])
}

func TestResolvePromotedFields(t *testing.T) {
	type inner struct{ A uint64 }
	type outer struct {
		inner
		B uint64
	}
	sp := &Spec{Kind: KindMessage, Name: "outer", Type: reflect.TypeOf(outer{}), Fields: []Field{
		{Name: "a", Go: "A", Spec: UVarint},
		{Name: "b", Go: "B", Spec: UVarint},
	}}
	Resolve(sp)
	require.Equal(t, []int{0, 0}, sp.Fields[0].Index)
	require.Equal(t, []int{1}, sp.Fields[1].Index)
}
