//go:build !ios && !android && (amd64 || arm64)

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/gobj"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the loaded GLib",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		major, minor, micro := gobj.Version()
		info := map[string]string{"glib": fmt.Sprintf("%d.%d.%d", major, minor, micro)}
		return render(cmd.OutOrStdout(), outputFormat(), []string{"Library", "Version"},
			[][]string{{"glib", info["glib"]}}, info)
	},
}
