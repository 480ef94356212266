//go:build !ios && !android && (amd64 || arm64)

// Command gobj inspects GObject classes and instances through the gobj
// binding layer.
package main

import (
	"os"

	"github.com/obinnaokechukwu/gobj/cmd/gobj/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
