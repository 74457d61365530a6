package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/config"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory of the combined remotes",
	Long: `List one directory of the combined remotes, the same listing the
server renders as HTML.

CONFIG_BASE64 and CONFIG_URL are honored as they are by the server.

Examples:
  rcindex ls
  rcindex ls gdrive/photos
  rcindex ls s3/backups -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	c, formatter, err := setup(cmd)
	if err != nil {
		return fail(formatter, err)
	}

	settings, err := config.NewEnvSource().Settings()
	if err != nil {
		return fail(formatter, err)
	}

	var p string
	if len(args) > 0 {
		p = args[0]
	}

	listing, err := c.service.List(cmd.Context(), rcindex.ListQuery{
		Path:   p,
		Source: settings.Source(),
	})
	if err != nil {
		return fail(formatter, err)
	}

	return formatter.FormatListing(os.Stdout, &listing)
}
