package preflight

import (
	"context"

	"vinyl/internal/config"
	"vinyl/internal/deps"
	"vinyl/internal/store"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory, disk, and store checks for the given
// config. A nil store skips the ping.
func RunAll(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir),
		CheckFreeSpace("Free space", cfg.Paths.DownloadDir),
	}
	if st != nil {
		results = append(results, CheckStore(ctx, st))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries vinyl shells out to. The
// doctor command and the TUI startup warning both consume this list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Downloads.YtdlpBinary,
			VersionArgs: []string{"--version"},
			Description: "Required for downloading tracks",
		},
		{
			Name:        "mpv",
			Command:     cfg.Playback.MpvBinary,
			VersionArgs: []string{"--version"},
			Description: "Required for audio playback",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			VersionArgs: []string{"-version"},
			Description: "Used by yt-dlp for mp3 extraction",
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}
