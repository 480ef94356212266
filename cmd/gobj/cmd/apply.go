//go:build !ios && !android && (amd64 || arm64)

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/gobj"
)

var manifestFile string

var applyCmd = &cobra.Command{
	Use:   "apply -f <manifest.yaml>",
	Short: "Create an instance from a manifest and set its properties",
	Long: `apply validates a YAML manifest, creates an instance of its type, sets each
listed property and prints the values read back from the instance.

A manifest looks like:

  type: GBindingGroup
  properties:
    name: value`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&manifestFile, "file", "f", "", "manifest file")
	_ = applyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(manifestFile)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	infos, err := gobj.ListProperties(m.Type)
	if err != nil {
		return err
	}

	obj, release, err := s.instance(m.Type)
	if err != nil {
		return err
	}
	defer release()

	names := m.PropertyNames()
	for _, name := range names {
		if err := obj.Set(name, m.Properties[name]); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		s.log.Info("set property", zap.String("type", m.Type), zap.String("property", name))
	}

	values, err := readProperties(obj, infos, names)
	if err != nil {
		return err
	}
	return renderValues(cmd.OutOrStdout(), values)
}
