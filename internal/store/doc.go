// Package store persists playlists and their tracks in SQLite.
//
// The database lives under the configured data directory and is opened with
// WAL journaling, foreign keys, and a busy timeout. Schema changes bump
// schemaVersion; an existing database with a different version is rejected
// rather than silently migrated, since the store is a cheap cache of remote
// playlist state that can be refetched.
package store
