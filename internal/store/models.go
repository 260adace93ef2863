package store

import (
	"database/sql"
	"time"
)

// Playlist is a saved remote playlist.
type Playlist struct {
	ID        int64
	Title     string
	SourceID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Track is one entry of a playlist. SourceID identifies the remote audio
// source; for local-directory playlists it holds the absolute file path and
// Local is true.
type Track struct {
	ID         int64
	PlaylistID int64
	Position   int
	Title      string
	SourceID   string
	Local      bool
}

const playlistColumns = "id, title, source_id, created_at, updated_at"

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*Playlist, error) {
	var (
		id         int64
		title      string
		sourceID   string
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &sourceID, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	return &Playlist{
		ID:        id,
		Title:     title,
		SourceID:  sourceID,
		CreatedAt: parseTimeString(createdRaw.String),
		UpdatedAt: parseTimeString(updatedRaw.String),
	}, nil
}

const trackColumns = "id, playlist_id, position, title, source_id"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*Track, error) {
	var track Track
	if err := scanner.Scan(&track.ID, &track.PlaylistID, &track.Position, &track.Title, &track.SourceID); err != nil {
		return nil, err
	}
	return &track, nil
}
