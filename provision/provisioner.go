// Package provision installs the rclone binary on first use.
// It downloads a release archive into the scratch store and writes the
// executable entry atomically in place; nothing else in the archive is
// extracted. Concurrent first calls are coalesced so only one download
// happens.
package provision

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sagarc03/rcindex"
	"github.com/sagarc03/rcindex/filesystem"
)

const (
	// DefaultDownloadURL is the current rclone release for linux/amd64.
	DefaultDownloadURL = "https://downloads.rclone.org/rclone-current-linux-amd64.zip"

	// DefaultBinaryName is the executable looked up inside the archive.
	DefaultBinaryName = "rclone"

	// DefaultFetchTimeout bounds the archive download.
	DefaultFetchTimeout = 2 * time.Minute
)

// Config holds provisioner settings. Zero values fall back to the defaults.
type Config struct {
	ScratchDir  string
	DownloadURL string
	BinaryName  string
}

// Provisioner owns the on-disk lifecycle of the rclone binary.
type Provisioner struct {
	dir         string
	downloadURL string
	binaryName  string
	httpClient  *resty.Client

	group singleflight.Group
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithHTTPClient sets a custom HTTP client for the archive download.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provisioner) {
		p.httpClient = resty.NewWithClient(client)
	}
}

// New creates a Provisioner installing into cfg.ScratchDir.
func New(cfg Config, opts ...Option) (*Provisioner, error) {
	if cfg.ScratchDir == "" {
		return nil, fmt.Errorf("new provisioner: %w: scratch dir cannot be empty", rcindex.ErrInvalidInput)
	}

	p := &Provisioner{
		dir:         cfg.ScratchDir,
		downloadURL: cfg.DownloadURL,
		binaryName:  cfg.BinaryName,
		httpClient:  resty.New().SetTimeout(DefaultFetchTimeout),
	}
	if p.downloadURL == "" {
		p.downloadURL = DefaultDownloadURL
	}
	if p.binaryName == "" {
		p.binaryName = DefaultBinaryName
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Path returns the canonical location of the binary.
func (p *Provisioner) Path() string {
	return filepath.Join(p.dir, p.binaryName)
}

// Ensure returns the installed binary, downloading it first if needed.
// An existing file at the canonical path is returned as-is without any
// network access or integrity check.
func (p *Provisioner) Ensure(ctx context.Context) (rcindex.Binary, error) {
	binPath := p.Path()
	if _, err := os.Stat(binPath); err == nil {
		return rcindex.Binary{Path: binPath}, nil
	}

	_, err, shared := p.group.Do(binPath, func() (any, error) {
		// A previous flight may have finished between Stat and Do.
		if _, statErr := os.Stat(binPath); statErr == nil {
			return nil, nil
		}
		return nil, p.install(context.WithoutCancel(ctx))
	})
	if err != nil {
		return rcindex.Binary{}, fmt.Errorf("ensure binary: %w", err)
	}
	if shared {
		slog.Debug("joined in-flight binary install", "path", binPath)
	}

	return rcindex.Binary{Path: binPath}, nil
}

func (p *Provisioner) install(ctx context.Context) error {
	store, err := filesystem.Open(p.dir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	archiveName := ".a" + uuid.New().String() + ".zip"
	defer func() {
		if err := store.Delete(context.WithoutCancel(ctx), archiveName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove archive", "name", archiveName, "err", err)
		}
	}()

	slog.Info("downloading rclone", "url", p.downloadURL)
	start := time.Now()

	archive, err := p.fetch(ctx, store, archiveName)
	if err != nil {
		return err
	}
	slog.Debug("archive downloaded", "bytes", archive.BytesWritten, "sha256", archive.Checksum)

	// Only the binary entry is written, under a fixed name, so entries with
	// non-local paths are harmless.
	zr, err := zip.OpenReader(store.Path(archiveName))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("%w: open archive: %w", rcindex.ErrFetch, err)
	}
	defer func() { _ = zr.Close() }()

	entry, err := findBinary(&zr.Reader, p.binaryName)
	if err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", rcindex.ErrFetch, entry.Name, err)
	}
	defer func() { _ = src.Close() }()

	bin, err := store.Write(ctx, p.binaryName, src, 0o755)
	if err != nil {
		return fmt.Errorf("install binary: %w", err)
	}

	slog.Info("rclone installed", "path", p.Path(), "entry", entry.Name,
		"bytes", bin.BytesWritten, "sha256", bin.Checksum, "took", time.Since(start))
	return nil
}

// fetch streams the archive into name.
func (p *Provisioner) fetch(ctx context.Context, store *filesystem.Store, name string) (filesystem.SaveResult, error) {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(p.downloadURL)
	if err != nil {
		return filesystem.SaveResult{}, fmt.Errorf("%w: %w", rcindex.ErrFetch, err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if !resp.IsSuccess() {
		return filesystem.SaveResult{}, fmt.Errorf("%w: %s returned %s", rcindex.ErrFetch, p.downloadURL, resp.Status())
	}

	res, err := store.Write(ctx, name, body, 0o600)
	if err != nil {
		return filesystem.SaveResult{}, fmt.Errorf("%w: download interrupted: %w", rcindex.ErrFetch, err)
	}
	return res, nil
}

// findBinary returns the archive entry whose base name is binaryName.
// Releases nest the executable under a versioned directory, so the match
// ignores the directory part.
func findBinary(zr *zip.Reader, binaryName string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(entryPath(f.Name)) == binaryName {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no entry named %q", rcindex.ErrBinaryNotFound, binaryName)
}

// entryPath cleans an archive entry name into a relative slash path.
func entryPath(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
