package main

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/monolink/pkg/config"
	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Prefer the workspace root when one is discoverable,
			// otherwise write next to the caller.
			dir, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, errors.ErrFileAccess, "failed to get working directory")
			}
			if layout, perr := paths.New("", ""); perr == nil {
				dir = layout.WorkspaceRoot()
			}

			target := filepath.Join(dir, "monolink.toml")
			if _, err := os.Stat(target); err == nil {
				pterm.Info.Printfln("%s already exists, leaving it untouched", target)
				return nil
			}

			content := config.GetDefaultConfigContent()
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", target)
			}

			pterm.Success.Printfln("Wrote %s", target)
			return nil
		},
	}
}
