package rcindex

import (
	"context"
	"fmt"
	"log/slog"
)

// BinaryProvisioner guarantees a runnable rclone binary.
//
// Ensure must return without network access once the binary is installed.
// Concurrent first calls may coalesce but each call either returns a usable
// Binary or an error wrapping ErrFetch or ErrBinaryNotFound.
type BinaryProvisioner interface {
	Ensure(ctx context.Context) (Binary, error)
}

// ConfigSynthesizer establishes the rclone config for a request.
//
// Ensure picks the config text from src (base64 blob, then URL, then a
// placeholder), appends the composite [combine] remote when missing and
// returns a handle to the file. It is called on every request and must not
// duplicate the composite section.
type ConfigSynthesizer interface {
	Ensure(ctx context.Context, src ConfigSource) (ConfigFile, error)
}

// CommandRunner executes a binary with a bounded lifetime.
//
// Run returns a ProcessResult only for a zero exit. Failures wrap ErrSpawn,
// ErrTimeout or ErrExecution (with an *ExecutionError carrying stderr).
type CommandRunner interface {
	Run(ctx context.Context, executable string, args []string) (ProcessResult, error)
}

type IndexService struct {
	binaries BinaryProvisioner
	configs  ConfigSynthesizer
	runner   CommandRunner
}

func NewIndexService(binaries BinaryProvisioner, configs ConfigSynthesizer, runner CommandRunner) *IndexService {
	return &IndexService{
		binaries: binaries,
		configs:  configs,
		runner:   runner,
	}
}

// List enumerates the direct children of q.Path inside the composite
// namespace.
//
// The steps run in order and the first failure aborts the request; nothing
// is retried:
//  1. Cleans the request path (ErrInvalidInput on control characters)
//  2. Ensures the binary (ErrFetch, ErrBinaryNotFound)
//  3. Ensures the config (ErrConfig)
//  4. Runs "lsjson --config <path> combine:<path>" (ErrSpawn, ErrTimeout, ErrExecution)
//  5. Normalizes stdout (ErrParse)
//
// The subprocess runs on a context detached from ctx's cancellation; only
// the runner's deadline bounds it.
func (s *IndexService) List(ctx context.Context, q ListQuery) (Listing, error) {
	cleanPath, err := CleanRequestPath(q.Path)
	if err != nil {
		return Listing{}, fmt.Errorf("list: %w", err)
	}

	bin, err := s.binaries.Ensure(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("list: ensure binary: %w", err)
	}

	cfg, err := s.configs.Ensure(ctx, q.Source)
	if err != nil {
		return Listing{}, fmt.Errorf("list: ensure config: %w", err)
	}

	args := ListArgs(cfg.Path, cleanPath)
	slog.Debug("running listing", "binary", bin.Path, "target", RemoteTarget(cleanPath), "remotes", len(cfg.Remotes))

	result, err := s.runner.Run(context.WithoutCancel(ctx), bin.Path, args)
	if err != nil {
		return Listing{}, fmt.Errorf("list %q: %w", cleanPath, err)
	}

	entries, err := Normalize(result.Stdout, cleanPath)
	if err != nil {
		return Listing{}, fmt.Errorf("list %q: %w", cleanPath, err)
	}

	return Listing{Path: cleanPath, Entries: entries}, nil
}

// Remotes returns the remotes of the synthesized config, composite included.
func (s *IndexService) Remotes(ctx context.Context, src ConfigSource) ([]RemoteDefinition, error) {
	cfg, err := s.configs.Ensure(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("remotes: %w", err)
	}
	return cfg.Remotes, nil
}

// ListArgs is the rclone argument vector for listing cleanPath.
func ListArgs(configPath, cleanPath string) []string {
	return []string{"lsjson", "--config", configPath, RemoteTarget(cleanPath)}
}
