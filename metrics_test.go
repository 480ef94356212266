package gobj

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	native := newFakeNative()
	native.addObject(0x1000, map[string]any{"n": int32(1)})
	b := NewBinding(native, WithRegistryName("widgets"), WithFinalizeTracking(false))

	obj := b.Bind(0x1000)
	b.Bind(0x2000)
	b.Lookup(0x3000)
	_, err := obj.Property("missing")
	require.Error(t, err)

	c := NewCollector(b)
	assert.Equal(t, 1+5+len(nativeOps), testutil.CollectAndCount(c))

	expected := `
# HELP gobj_registry_entries Number of native handles with a registered wrapper.
# TYPE gobj_registry_entries gauge
gobj_registry_entries{registry="widgets"} 2
# HELP gobj_native_call_errors_total Failed calls into the native library by operation.
# TYPE gobj_native_call_errors_total counter
gobj_native_call_errors_total{op="decode_value",registry="widgets"} 0
gobj_native_call_errors_total{op="encode_value",registry="widgets"} 0
gobj_native_call_errors_total{op="get_property",registry="widgets"} 1
gobj_native_call_errors_total{op="notify_finalize",registry="widgets"} 0
gobj_native_call_errors_total{op="set_property",registry="widgets"} 0
gobj_native_call_errors_total{op="type_names",registry="widgets"} 0
`
	err = testutil.CollectAndCompare(c, strings.NewReader(expected),
		"gobj_registry_entries", "gobj_native_call_errors_total")
	assert.NoError(t, err)
}

func TestCollectorRegisters(t *testing.T) {
	b := NewBinding(newFakeNative(), WithRegistryName("a"))
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(b)))

	b.Bind(0x1000)
	b.Lookup(0x1000)
	b.Lookup(0x2000)

	families, err := reg.Gather()
	require.NoError(t, err)

	ops := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "gobj_registry_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "op" {
					ops[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, ops["register"])
	assert.Equal(t, 1.0, ops["hit"])
	assert.Equal(t, 1.0, ops["miss"])
	assert.Equal(t, 0.0, ops["replace"])
}
