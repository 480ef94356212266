//go:build !ios && !android && (amd64 || arm64)

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/gobj"
)

var propsCmd = &cobra.Command{
	Use:   "props <type>",
	Short: "List the properties of a GObject class",
	Example: `  gobj props GObject
  gobj props GBindingGroup --type-init g_binding_group_get_type -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProps,
}

func runProps(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	props, err := gobj.ListProperties(args[0])
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{p.Name, p.Type, p.Flags, p.Owner, p.Blurb})
	}
	return render(cmd.OutOrStdout(), outputFormat(), []string{"Name", "Type", "Flags", "Owner", "Description"}, rows, props)
}
