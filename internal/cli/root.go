package cli

import (
	"storyplayer/internal/structures"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the storyplayer command tree.
func NewRootCommand() *cobra.Command {
	flags := &structures.CliFlags{}

	cmd := &cobra.Command{
		Use:   "storyplayer",
		Short: "Story playback engine",
		Long:  "Serves grouped stories and drives per-viewer playback sessions over HTTP.",
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "debug mode")

	cmd.AddCommand(NewServeCommand(flags))
	cmd.AddCommand(NewSeedCommand(flags))

	return cmd
}
