package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/config"
	"github.com/sagarc03/rcindex/executor"
	"github.com/sagarc03/rcindex/namespace"
	"github.com/sagarc03/rcindex/output"
	"github.com/sagarc03/rcindex/provision"
)

type components struct {
	provisioner *provision.Provisioner
	synthesizer *namespace.Synthesizer
	runner      *executor.Runner
	service     *rcindex.IndexService
}

func buildComponents(cfg *config.Config) (*components, error) {
	p, err := provision.New(provision.Config{
		ScratchDir:  cfg.Scratch.Dir,
		DownloadURL: cfg.Rclone.DownloadURL,
		BinaryName:  cfg.Rclone.BinaryName,
	})
	if err != nil {
		return nil, fmt.Errorf("create provisioner: %w", err)
	}

	s, err := namespace.New(namespace.Config{
		ScratchDir: cfg.Scratch.Dir,
		ConfigName: cfg.Rclone.ConfigName,
	})
	if err != nil {
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}

	r := executor.New(executor.Config{
		Timeout:   cfg.Rclone.Timeout,
		KillGrace: cfg.Rclone.KillGrace,
	})

	return &components{
		provisioner: p,
		synthesizer: s,
		runner:      r,
		service:     rcindex.NewIndexService(p, s, r),
	}, nil
}

// setup loads the config from the command context and builds everything a
// one-shot command needs.
func setup(cmd *cobra.Command) (*components, output.Formatter, error) {
	formatter, err := output.NewFormatter(outputFormat, quiet)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return nil, formatter, err
	}

	c, err := buildComponents(cfg)
	if err != nil {
		return nil, formatter, err
	}
	return c, formatter, nil
}

func fail(f output.Formatter, err error) error {
	if f != nil {
		_ = f.FormatError(os.Stderr, err)
	}
	return err
}
