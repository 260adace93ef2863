package testsupport

import (
	"context"
	"testing"

	"vinyl/internal/config"
	"vinyl/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SavePlaylist creates a playlist with tracks for tests using the provided
// store. Track source ids are derived from the titles.
func SavePlaylist(t testing.TB, st *store.Store, title, sourceID string, trackTitles ...string) *store.Playlist {
	t.Helper()

	ctx := context.Background()
	playlist, err := st.SavePlaylist(ctx, title, sourceID)
	if err != nil {
		t.Fatalf("store.SavePlaylist: %v", err)
	}
	if len(trackTitles) == 0 {
		return playlist
	}
	tracks := make([]*store.Track, 0, len(trackTitles))
	for i, trackTitle := range trackTitles {
		tracks = append(tracks, &store.Track{
			Title:    trackTitle,
			SourceID: "src-" + trackTitle,
			Position: i,
		})
	}
	if err := st.ReplaceTracks(ctx, playlist.ID, tracks); err != nil {
		t.Fatalf("store.ReplaceTracks: %v", err)
	}
	return playlist
}
