package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/rcindex/config"
)

var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "Show the remotes of the synthesized rclone config",
	Long: `Prepare the rclone config the way a request would and print its
remotes, including the combine remote that merges them.`,
	Args: cobra.NoArgs,
	RunE: runRemotes,
}

func runRemotes(cmd *cobra.Command, _ []string) error {
	c, formatter, err := setup(cmd)
	if err != nil {
		return fail(formatter, err)
	}

	settings, err := config.NewEnvSource().Settings()
	if err != nil {
		return fail(formatter, err)
	}

	remotes, err := c.service.Remotes(cmd.Context(), settings.Source())
	if err != nil {
		return fail(formatter, err)
	}

	return formatter.FormatRemotes(os.Stdout, remotes)
}
