package store_test

import (
	"context"
	"errors"
	"testing"

	"vinyl/internal/store"
	"vinyl/internal/testsupport"
)

func TestSavePlaylistAssignsID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	playlist, err := st.SavePlaylist(ctx, "Synth Classics", "PL123")
	if err != nil {
		t.Fatalf("SavePlaylist failed: %v", err)
	}
	if playlist.ID == 0 {
		t.Fatal("expected playlist ID to be assigned")
	}
	if playlist.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	fetched, err := st.Playlist(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("Playlist failed: %v", err)
	}
	if fetched.Title != "Synth Classics" || fetched.SourceID != "PL123" {
		t.Fatalf("unexpected fetched playlist: %#v", fetched)
	}
}

func TestSavePlaylistUpsertsBySourceID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := st.SavePlaylist(ctx, "Old Title", "PL123")
	if err != nil {
		t.Fatalf("SavePlaylist failed: %v", err)
	}
	second, err := st.SavePlaylist(ctx, "New Title", "PL123")
	if err != nil {
		t.Fatalf("second SavePlaylist failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Title != "New Title" {
		t.Fatalf("expected updated title, got %q", second.Title)
	}

	all, err := st.Playlists(ctx)
	if err != nil {
		t.Fatalf("Playlists failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one playlist, got %d", len(all))
	}
}

func TestReplaceTracksKeepsOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	playlist := testsupport.SavePlaylist(t, st, "Mix", "PL9", "alpha", "beta", "gamma")

	tracks, err := st.Tracks(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if tracks[i].Title != want {
			t.Fatalf("track %d = %q, want %q", i, tracks[i].Title, want)
		}
		if tracks[i].Position != i {
			t.Fatalf("track %d position = %d", i, tracks[i].Position)
		}
	}

	replacement := []*store.Track{
		{Title: "delta", SourceID: "src-delta"},
		{Title: "alpha", SourceID: "src-alpha"},
	}
	if err := st.ReplaceTracks(ctx, playlist.ID, replacement); err != nil {
		t.Fatalf("ReplaceTracks failed: %v", err)
	}

	tracks, err = st.Tracks(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("Tracks after replace failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks after replace, got %d", len(tracks))
	}
	if tracks[0].Title != "delta" || tracks[1].Title != "alpha" {
		t.Fatalf("unexpected order after replace: %q, %q", tracks[0].Title, tracks[1].Title)
	}

	count, err := st.TrackCount(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("TrackCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("TrackCount = %d, want 2", count)
	}
}

func TestDeletePlaylistCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	playlist := testsupport.SavePlaylist(t, st, "Doomed", "PL66", "one", "two")

	if err := st.DeletePlaylist(ctx, playlist.ID); err != nil {
		t.Fatalf("DeletePlaylist failed: %v", err)
	}

	if _, err := st.Playlist(ctx, playlist.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	tracks, err := st.Tracks(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("Tracks failed: %v", err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected cascade delete, found %d tracks", len(tracks))
	}

	if err := st.DeletePlaylist(ctx, playlist.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestPlaylistBySourceIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.PlaylistBySourceID(context.Background(), "PL-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	playlist, err := first.SavePlaylist(context.Background(), "Persistent", "PL77")
	if err != nil {
		t.Fatalf("SavePlaylist failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer second.Close()

	fetched, err := second.Playlist(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("Playlist after reopen failed: %v", err)
	}
	if fetched.Title != "Persistent" {
		t.Fatalf("unexpected title after reopen: %q", fetched.Title)
	}
}
