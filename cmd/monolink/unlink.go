package main

import (
	"github.com/arthur-debert/monolink/pkg/filesystem"
	"github.com/arthur-debert/monolink/pkg/linker"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: MsgUnlinkShort,
		Long:  MsgUnlinkLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.unlink")

			fs := filesystem.NewOS()
			layout, _, ws, err := loadWorkspace(fs)
			if err != nil {
				return err
			}

			removed, err := linker.Unlink(fs, layout, ws)
			if err != nil {
				return err
			}

			logger.Info().Int("removed", removed).Msg("Unlink finished")
			pterm.Success.Printfln("Removed %d symlink(s) across %d project(s)",
				removed, len(ws.Projects))
			return nil
		},
	}
}
