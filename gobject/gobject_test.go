//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"os"
	"sync/atomic"
	"testing"

	"github.com/obinnaokechukwu/gobj/internal/bindings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gobjectAvailable bool

func TestMain(m *testing.M) {
	if err := bindings.Load(); err == nil {
		gobjectAvailable = true
	}
	os.Exit(m.Run())
}

func skipIfNoGObject(t *testing.T) {
	t.Helper()
	if !gobjectAvailable {
		t.Skip("GObject not available")
	}
}

// newObject creates a plain GObject and drops it when the test ends.
func newObject(t *testing.T) uintptr {
	t.Helper()
	obj, err := ObjectNew(TypeObject)
	require.NoError(t, err)
	require.NotZero(t, obj)
	t.Cleanup(func() { ObjectUnref(obj) })
	return obj
}

// bindingGroupType returns GBindingGroup (GLib 2.72+), which has a
// read-write object property "source".
func bindingGroupType(t *testing.T) Type {
	t.Helper()
	typ, err := EnsureType(bindings.LibGObject(), "g_binding_group_get_type")
	if err != nil {
		t.Skipf("GBindingGroup not available: %v", err)
	}
	return typ
}

func TestFundamentalTypeNames(t *testing.T) {
	skipIfNoGObject(t)

	assert.Equal(t, "GObject", TypeObject.Name())
	assert.Equal(t, "gchararray", TypeString.Name())
	assert.Equal(t, "gboolean", TypeBoolean.Name())
	assert.Equal(t, TypeObject, TypeFromName("GObject"))
	assert.Equal(t, TypeInvalid, TypeFromName("NoSuchTypeAnywhere"))
	assert.Equal(t, "", TypeInvalid.Name())
}

func TestTypeAncestry(t *testing.T) {
	skipIfNoGObject(t)

	assert.Equal(t, []string{"GObject"}, TypeObject.Ancestry())

	unowned := TypeFromName("GInitiallyUnowned")
	require.NotEqual(t, TypeInvalid, unowned)
	assert.Equal(t, []string{"GInitiallyUnowned", "GObject"}, unowned.Ancestry())
	assert.True(t, unowned.IsA(TypeObject))
	assert.True(t, unowned.IsAbstract())
}

func TestObjectNew(t *testing.T) {
	skipIfNoGObject(t)

	obj := newObject(t)
	assert.True(t, IsObject(obj))
	assert.Equal(t, TypeObject, InstanceType(obj))
	assert.False(t, IsObject(0))
}

func TestObjectNewRejectsAbstractAndUnknown(t *testing.T) {
	skipIfNoGObject(t)

	_, err := ObjectNew(TypeFromName("GInitiallyUnowned"))
	assert.ErrorIs(t, err, ErrAbstractType)

	_, err = ObjectNewByName("NoSuchTypeAnywhere")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = ObjectNew(TypeString)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestUnknownProperty(t *testing.T) {
	skipIfNoGObject(t)

	obj := newObject(t)
	_, err := ObjectGetProperty(obj, "no-such-property")
	assert.ErrorIs(t, err, ErrUnknownProperty)

	v, err := ValueFromGo(TypeInt, 1)
	require.NoError(t, err)
	defer ValueFree(v)
	assert.ErrorIs(t, ObjectSetProperty(obj, "no-such-property", v), ErrUnknownProperty)
}

func TestInvalidObject(t *testing.T) {
	skipIfNoGObject(t)

	_, err := ObjectGetProperty(0, "name")
	assert.ErrorIs(t, err, ErrInvalidObject)

	_, err = WeakRef(0, func() {})
	assert.ErrorIs(t, err, ErrInvalidObject)
}

func TestObjectPropertyRoundTrip(t *testing.T) {
	skipIfNoGObject(t)
	typ := bindingGroupType(t)

	group, err := ObjectNew(typ)
	require.NoError(t, err)
	defer ObjectUnref(group)
	source := newObject(t)

	v, err := ValueFromGo(TypeObject, source)
	require.NoError(t, err)
	require.NoError(t, ObjectSetProperty(group, "source", v))
	ValueFree(v)

	got, err := ObjectGetProperty(group, "source")
	require.NoError(t, err)
	defer ValueFree(got)

	decoded, err := ValueGet(got)
	require.NoError(t, err)
	assert.Equal(t, source, decoded)
}

func TestListProperties(t *testing.T) {
	skipIfNoGObject(t)

	props, err := ListProperties(TypeObject)
	require.NoError(t, err)
	assert.Empty(t, props)

	typ := bindingGroupType(t)
	props, err = ListProperties(typ)
	require.NoError(t, err)

	var found bool
	for _, p := range props {
		if p.Name == "source" {
			found = true
			assert.True(t, p.Readable())
			assert.True(t, p.Writable())
			assert.True(t, p.ValueType.IsA(TypeObject))
		}
	}
	assert.True(t, found, "GBindingGroup should expose a source property")

	_, err = ListProperties(TypeString)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValueConversions(t *testing.T) {
	skipIfNoGObject(t)

	tests := []struct {
		typ  Type
		in   any
		want any
	}{
		{TypeBoolean, true, true},
		{TypeInt, float64(-12), int32(-12)},
		{TypeUInt, 7, uint32(7)},
		{TypeInt64, int64(1) << 40, int64(1) << 40},
		{TypeDouble, 3, float64(3)},
		{TypeString, "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			v, err := ValueFromGo(tt.typ, tt.in)
			require.NoError(t, err)
			defer ValueFree(v)

			got, err := ValueGet(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, ValueContents(v))
		})
	}
}

func TestValueRangeChecks(t *testing.T) {
	skipIfNoGObject(t)

	_, err := ValueFromGo(TypeInt, int64(1)<<40)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromGo(TypeUInt, -1)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromGo(TypeInt, 1.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromGo(TypeBoolean, "yes")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueFromGo(TypePointer, uintptr(0))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestWeakRefFiresOnFinalize(t *testing.T) {
	skipIfNoGObject(t)

	obj, err := ObjectNew(TypeObject)
	require.NoError(t, err)

	var fired atomic.Int32
	_, err = WeakRef(obj, func() { fired.Add(1) })
	require.NoError(t, err)

	ObjectUnref(obj)
	assert.EqualValues(t, 1, fired.Load())
}

func TestWeakRefCancel(t *testing.T) {
	skipIfNoGObject(t)

	obj, err := ObjectNew(TypeObject)
	require.NoError(t, err)

	var fired atomic.Int32
	cancel, err := WeakRef(obj, func() { fired.Add(1) })
	require.NoError(t, err)
	cancel()
	cancel()

	ObjectUnref(obj)
	assert.Zero(t, fired.Load())
}

func TestParamFlagsString(t *testing.T) {
	assert.Equal(t, "rw", (ParamReadable | ParamWritable).String())
	assert.Equal(t, "r,construct-only", (ParamReadable | ParamConstructOnly).String())
	assert.Equal(t, "-", ParamFlags(0).String())
	assert.Equal(t, "w,construct,deprecated", (ParamWritable | ParamConstruct | ParamDeprecated).String())
}
