package player

import (
	"context"
	"time"
)

// Sink is the audio backend the orchestrator plays through. Implementations
// are synchronous and safe for concurrent use; calls block only for the
// backend round-trip, never for the length of the audio.
type Sink interface {
	// Play replaces whatever is loaded with the file at path and starts
	// playing it from the beginning.
	Play(ctx context.Context, path string) error
	// Stop unloads the current file. The backend stays available for the
	// next Play.
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	// SeekTo jumps to an absolute position in the current file.
	SeekTo(ctx context.Context, position time.Duration) error
	// SeekBy jumps relative to the current position; the backend clamps to
	// the file bounds.
	SeekBy(ctx context.Context, delta time.Duration) error
	// Progress reports the current playback position. Returns zero without
	// error while no file is loaded.
	Progress(ctx context.Context) (time.Duration, error)
	// Duration reports the length of the loaded file. Returns zero without
	// error until the backend has demuxed the file.
	Duration(ctx context.Context) (time.Duration, error)
	// SetVolume sets the output volume in percent (100 = unattenuated).
	SetVolume(ctx context.Context, percent int) error
	Close() error
}
