//go:build !ios && !android && (amd64 || arm64)

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/gobj"
)

var getCmd = &cobra.Command{
	Use:   "get <type> [property...]",
	Short: "Create an instance and read its properties",
	Long: `get creates an instance of the type with default property values and prints
the requested properties, or every readable property when none are named.`,
	Example: `  gobj get GBindingGroup --type-init g_binding_group_get_type`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

// propertyValue is one property read from an instance.
type propertyValue struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	typeName := args[0]
	infos, err := gobj.ListProperties(typeName)
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		for _, p := range infos {
			if p.Readable {
				names = append(names, p.Name)
			}
		}
	}

	obj, release, err := s.instance(typeName)
	if err != nil {
		return err
	}
	defer release()

	values, err := readProperties(obj, infos, names)
	if err != nil {
		return err
	}
	return renderValues(cmd.OutOrStdout(), values)
}

// readProperties reads each named property, decoding it where possible and
// falling back to GLib's formatting for other types.
func readProperties(obj *gobj.Object, infos []gobj.PropertyInfo, names []string) ([]propertyValue, error) {
	types := make(map[string]string, len(infos))
	for _, p := range infos {
		types[p.Name] = p.Type
	}

	values := make([]propertyValue, 0, len(names))
	for _, name := range names {
		pv := propertyValue{Name: name, Type: types[name]}
		err := obj.WithProperty(name, func(v *gobj.Value) error {
			x, err := v.Get()
			if _, isHandle := x.(gobj.Handle); err != nil || isHandle {
				pv.Value = v.String()
				return nil
			}
			pv.Value = x
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		values = append(values, pv)
	}
	return values, nil
}

func renderValues(w io.Writer, values []propertyValue) error {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v.Name, v.Type, fmt.Sprint(v.Value)})
	}
	return render(w, outputFormat(), []string{"Property", "Type", "Value"}, rows, values)
}
