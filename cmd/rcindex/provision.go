package main

import (
	"os"

	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Download rclone into the scratch directory",
	Long: `Download and install rclone if it is not already present.

Useful to warm a container image so the first request does not pay for
the download. Does nothing when the binary already exists.`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

func runProvision(cmd *cobra.Command, _ []string) error {
	c, formatter, err := setup(cmd)
	if err != nil {
		return fail(formatter, err)
	}

	bin, err := c.provisioner.Ensure(cmd.Context())
	if err != nil {
		return fail(formatter, err)
	}

	return formatter.FormatBinary(os.Stdout, bin)
}
