package cli

import (
	"storyplayer/internal/di"
	"storyplayer/internal/structures"

	"github.com/spf13/cobra"
)

func NewServeCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP server until SIGINT or SIGTERM",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := di.InitApp(flags)
			return err
		},
	}
}
