package store

import (
	"context"
	"fmt"
)

// Tracks returns a playlist's tracks ordered by position.
func (s *Store) Tracks(ctx context.Context, playlistID int64) ([]*Track, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE playlist_id = ? ORDER BY position", playlistID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// ReplaceTracks swaps a playlist's tracks for the given list in one
// transaction. Positions are assigned from slice order.
func (s *Store) ReplaceTracks(ctx context.Context, playlistID int64, tracks []*Track) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tracks tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("clear tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO tracks (playlist_id, position, title, source_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare track insert: %w", err)
	}
	defer stmt.Close()

	for position, track := range tracks {
		if _, err := stmt.ExecContext(ctx, playlistID, position, track.Title, track.SourceID); err != nil {
			return fmt.Errorf("insert track %d: %w", position, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE playlists SET updated_at = ? WHERE id = ?", nowTimestamp(), playlistID); err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}

	return tx.Commit()
}
