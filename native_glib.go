//go:build !ios && !android && (amd64 || arm64)

package gobj

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/gobj/glib"
	"github.com/obinnaokechukwu/gobj/gobject"
)

// glibNative forwards to libgobject-2.0. Value handles are heap-allocated
// GValues of the property's type.
type glibNative struct{}

var (
	_ Native           = glibNative{}
	_ TypeResolver     = glibNative{}
	_ FinalizeNotifier = glibNative{}
	_ ValueCodec       = glibNative{}
)

// GLib returns the Native implementation backed by libgobject-2.0, loading
// the libraries on first use.
func GLib() (Native, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return glibNative{}, nil
}

func (glibNative) GetProperty(obj Handle, name string) (uintptr, error) {
	if err := checkInstance(obj); err != nil {
		return 0, err
	}
	return gobject.ObjectGetProperty(uintptr(obj), name)
}

func (glibNative) SetProperty(obj Handle, name string, value uintptr) error {
	if err := checkInstance(obj); err != nil {
		return err
	}
	if value == 0 {
		return gobject.ErrTypeMismatch
	}
	return gobject.ObjectSetProperty(uintptr(obj), name, value)
}

func (glibNative) ReleaseValue(value uintptr) {
	gobject.ValueFree(value)
}

func (glibNative) TypeNames(obj Handle) ([]string, error) {
	if err := checkInstance(obj); err != nil {
		return nil, err
	}
	return gobject.InstanceType(uintptr(obj)).Ancestry(), nil
}

func (glibNative) NotifyFinalize(obj Handle, fn func()) (func(), error) {
	return gobject.WeakRef(uintptr(obj), fn)
}

func (glibNative) DecodeValue(value uintptr) (any, error) {
	x, err := gobject.ValueGet(value)
	if err != nil {
		return nil, err
	}
	// Object values are the only ones decoded as uintptr.
	if p, ok := x.(uintptr); ok {
		return Handle(p), nil
	}
	return x, nil
}

func (glibNative) EncodeValue(obj Handle, name string, x any) (uintptr, error) {
	if err := checkInstance(obj); err != nil {
		return 0, err
	}
	pspec, err := gobject.FindProperty(uintptr(obj), name)
	if err != nil {
		return 0, err
	}
	if h, ok := x.(Handle); ok {
		x = uintptr(h)
	}
	return gobject.ValueFromGo(pspec.ValueType, x)
}

func (glibNative) FormatValue(value uintptr) string {
	return gobject.ValueContents(value)
}

func checkInstance(obj Handle) error {
	if obj == 0 || !gobject.IsObject(uintptr(obj)) {
		return fmt.Errorf("%w: %s", gobject.ErrInvalidObject, obj)
	}
	return nil
}

// NewInstance creates an instance of the named GObject type with default
// property values. The caller owns the returned reference and drops it with
// Unref, after unregistering any wrapper for it.
func NewInstance(typeName string) (Handle, error) {
	if err := Init(); err != nil {
		return 0, err
	}
	obj, err := gobject.ObjectNewByName(typeName)
	if err != nil {
		return 0, err
	}
	return Handle(obj), nil
}

// Unref drops one native reference to h.
func Unref(h Handle) {
	if h != 0 {
		gobject.ObjectUnref(uintptr(h))
	}
}

// PropertyInfo describes one property of a GObject class.
type PropertyInfo struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Flags string `json:"flags" yaml:"flags"`
	Owner string `json:"owner" yaml:"owner"`
	Nick  string `json:"nick,omitempty" yaml:"nick,omitempty"`
	Blurb string `json:"blurb,omitempty" yaml:"blurb,omitempty"`

	Readable bool `json:"-" yaml:"-"`
	Writable bool `json:"-" yaml:"-"`
}

// ListProperties describes the properties of the named class, including
// inherited ones.
func ListProperties(typeName string) ([]PropertyInfo, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	t := gobject.TypeFromName(typeName)
	if t == gobject.TypeInvalid {
		return nil, fmt.Errorf("%w: %q", gobject.ErrUnknownType, typeName)
	}
	specs, err := gobject.ListProperties(t)
	if err != nil {
		return nil, err
	}

	out := make([]PropertyInfo, 0, len(specs))
	for _, p := range specs {
		out = append(out, PropertyInfo{
			Name:     p.Name,
			Type:     p.ValueType.Name(),
			Flags:    p.Flags.String(),
			Owner:    p.OwnerType.Name(),
			Nick:     p.Nick,
			Blurb:    p.Blurb,
			Readable: p.Readable(),
			Writable: p.Writable(),
		})
	}
	return out, nil
}

// ForwardGLibLogs routes messages from GLib's default log handler, such as
// g_warning and g_critical output, to l. A nil logger restores GLib's own
// handler.
func ForwardGLibLogs(l *zap.Logger) error {
	if err := Init(); err != nil {
		return err
	}
	if l == nil {
		return glib.SetLogHandler(nil)
	}
	return glib.SetLogHandler(func(domain string, level glib.LogLevel, message string) {
		fields := []zap.Field{zap.String("domain", domain), zap.Stringer("glib_level", level)}
		s := level.Severity()
		switch {
		case s&(glib.LogLevelError|glib.LogLevelCritical) != 0:
			l.Error(message, fields...)
		case s&glib.LogLevelWarning != 0:
			l.Warn(message, fields...)
		case s&(glib.LogLevelMessage|glib.LogLevelInfo) != 0:
			l.Info(message, fields...)
		default:
			l.Debug(message, fields...)
		}
	})
}
