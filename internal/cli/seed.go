package cli

import (
	"fmt"
	"storyplayer/internal/di"
	"storyplayer/internal/structures"

	"github.com/spf13/cobra"
)

func NewSeedCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture>",
		Short: "Merge a JSON or YAML fixture into the persisted store",
		Long: `Load authors and stories from a fixture file and append them to the
snapshot configured under persistence.filePath. Run it while the server is
stopped; a running server overwrites the snapshot on its next save.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeder, err := di.InitSeeder(flags)
			if err != nil {
				return err
			}
			n, err := seeder.Seed(args[0])
			if err != nil {
				return fmt.Errorf("seed %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d stories\n", n)
			return nil
		},
	}
}
