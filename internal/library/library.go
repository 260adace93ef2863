// Package library builds playlists from local music directories and computes
// the download destinations remote tracks are fetched to.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"vinyl/internal/store"
	"vinyl/internal/textutil"
)

// ScanDir reads the .mp3 files of dir (sorted by filename) into the tracks of
// an unsaved playlist. Titles come from the ID3v2 title frame when present and
// otherwise from the bare filename. SourceID carries the absolute file path
// and Local is set, so such tracks play without ever touching the downloader.
func ScanDir(dir string) ([]store.Track, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", abs, err)
	}

	var tracks []store.Track
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		title := readTitle(path)
		if title == "" {
			title = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		tracks = append(tracks, store.Track{
			Position: len(tracks),
			Title:    title,
			SourceID: path,
			Local:    true,
		})
	}
	return tracks, nil
}

// readTitle returns the ID3v2 title frame of the file, or "" when the file
// has no readable tag.
func readTitle(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return ""
	}
	defer tag.Close()
	return strings.TrimSpace(tag.Title())
}

// TrackFile is the canonical download destination for a track title inside
// dir. The scheduler writes here and the player reads from here, so both
// sides must agree on it.
func TrackFile(dir, title string) string {
	name := textutil.SanitizeFileName(title)
	if name == "" {
		name = "track"
	}
	return filepath.Join(dir, name+".mp3")
}

// HasTrackFile reports whether the canonical file for the title already
// exists in dir.
func HasTrackFile(dir, title string) bool {
	info, err := os.Stat(TrackFile(dir, title))
	return err == nil && !info.IsDir()
}
