package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/rcindex/config"
)

var version = "dev"

var (
	cfgFile      string
	envFile      string
	outputFormat string
	quiet        bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "rcindex",
	Short:   "Browsable directory index backed by rclone",
	Long: `rcindex serves an HTML index of every remote in an rclone config.

The remotes are merged into one tree through a combine remote, so each
remote shows up as a top-level folder. rclone itself is downloaded on
first use into the scratch directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		var files []string
		if cfgFile != "" {
			files = append(files, cfgFile)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./rcindex.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before anything else (default: ./.env if present)")
	rootCmd.PersistentFlags().String("scratch-dir", "", "directory for the rclone binary and config (env: RCINDEX_SCRATCH_DIR)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "rclone execution timeout (default: 25s, env: RCINDEX_RCLONE_TIMEOUT)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: RCINDEX_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "human", "output format: human, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(remotesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
