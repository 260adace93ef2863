package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Playlists returns all saved playlists ordered by title.
func (s *Store) Playlists(ctx context.Context) ([]*Playlist, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists ORDER BY title COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// Playlist returns the playlist with the given id.
func (s *Store) Playlist(ctx context.Context, id int64) (*Playlist, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id = ?", id)
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	return playlist, nil
}

// PlaylistBySourceID returns the playlist with the given remote source id.
func (s *Store) PlaylistBySourceID(ctx context.Context, sourceID string) (*Playlist, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE source_id = ?", sourceID)
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	return playlist, nil
}

// SavePlaylist inserts the playlist or, when its source id already exists,
// updates the stored title. The returned playlist carries the database id.
func (s *Store) SavePlaylist(ctx context.Context, title, sourceID string) (*Playlist, error) {
	ctx = ensureContext(ctx)
	now := nowTimestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (title, source_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		title, sourceID, now, now)
	if err != nil {
		return nil, fmt.Errorf("save playlist: %w", err)
	}
	return s.PlaylistBySourceID(ctx, sourceID)
}

// DeletePlaylist removes a playlist and, via the foreign key cascade, its
// tracks.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	result, err := s.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete playlist rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TrackCount returns the number of tracks stored for a playlist.
func (s *Store) TrackCount(ctx context.Context, playlistID int64) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM tracks WHERE playlist_id = ?", playlistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return count, nil
}
