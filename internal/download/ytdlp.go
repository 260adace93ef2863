package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Runner fetches one remote audio source into a local file.
type Runner interface {
	Fetch(ctx context.Context, sourceID, dest string) error
}

// Option configures the yt-dlp runner.
type Option func(*Ytdlp)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(y *Ytdlp) {
		if strings.TrimSpace(binary) != "" {
			y.binary = binary
		}
	}
}

// Ytdlp wraps the yt-dlp command-line downloader.
type Ytdlp struct {
	binary string
}

var _ Runner = (*Ytdlp)(nil)

// NewYtdlp constructs a runner using defaults.
func NewYtdlp(opts ...Option) *Ytdlp {
	runner := &Ytdlp{binary: "yt-dlp"}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// WatchURL resolves a source id to the canonical page url yt-dlp fetches.
func WatchURL(sourceID string) string {
	return "https://www.youtube.com/watch?v=" + sourceID
}

// Fetch extracts the best audio stream to an mp3 at dest with the thumbnail
// embedded. Subprocess output stays on the null device; only the exit code
// is consulted.
func (y *Ytdlp) Fetch(ctx context.Context, sourceID, dest string) error {
	if strings.TrimSpace(sourceID) == "" {
		return errors.New("source id required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure download directory: %w", err)
	}

	cmd := commandContext(ctx, y.binary,
		"-x",
		"--audio-format", "mp3",
		"-f", "bestaudio",
		"--output", dest,
		"--embed-thumbnail",
		WatchURL(sourceID),
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", y.binary, sourceID, err)
	}
	return nil
}
