package main

import (
	"fmt"

	"github.com/arthur-debert/monolink/pkg/config"
	"github.com/arthur-debert/monolink/pkg/filesystem"
	"github.com/arthur-debert/monolink/pkg/linker"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/types"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newLinkCmd() *cobra.Command {
	var strategyFlag string

	cmd := &cobra.Command{
		Use:   "link",
		Short: MsgLinkShort,
		Long:  MsgLinkLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.link")

			fs := filesystem.NewOS()
			layout, cfg, ws, err := loadWorkspace(fs)
			if err != nil {
				return err
			}

			strategyName := cfg.Link.Strategy
			if strategyFlag != "" {
				strategyName = strategyFlag
			}

			var strategy linker.Strategy
			switch strategyName {
			case config.StrategyNested:
				strategy = linker.NewNested(fs, layout, ws)
			case config.StrategyFlattened:
				strategy = linker.NewFlattened(fs, layout, ws)
			default:
				return fmt.Errorf("unknown link strategy %q (expected %s or %s)",
					strategyName, config.StrategyNested, config.StrategyFlattened)
			}

			logger.Info().
				Str("strategy", strategy.Name()).
				Int("projects", len(ws.Projects)).
				Msg("Starting link")

			result, err := linker.New(fs, layout, strategy, cfg.Link.Concurrency).Run(cmd.Context(), ws)
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Linked %d project(s) using the %s strategy",
				len(result.LocalLinks), strategy.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyFlag, "strategy", "", MsgFlagStrategy)

	return cmd
}

// loadWorkspace locates the workspace root, layers configuration, reads
// workspace.yaml and loads every project's staging manifest.
func loadWorkspace(fs types.FS) (paths.Layout, *config.Config, *manifest.Workspace, error) {
	probe, err := paths.New("", "")
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.Load(probe.WorkspaceRoot())
	if err != nil {
		return nil, nil, nil, err
	}

	wsFile, err := manifest.LoadWorkspaceFile(fs, probe.WorkspaceFilePath())
	if err != nil {
		return nil, nil, nil, err
	}

	commonFolder := cfg.Workspace.CommonFolder
	if wsFile.CommonFolder != "" {
		commonFolder = wsFile.CommonFolder
	}

	layout, err := paths.New(probe.WorkspaceRoot(), commonFolder)
	if err != nil {
		return nil, nil, nil, err
	}

	ws, err := manifest.NewReader(fs, layout).LoadProjects(wsFile)
	if err != nil {
		return nil, nil, nil, err
	}

	return layout, cfg, ws, nil
}
