// Package player turns download results and user commands into audio.
//
// The Orchestrator owns the playback state machine: Idle, AwaitingDownload,
// Playing, Paused. It consumes scheduler results on a background goroutine,
// discards the ones the user has since navigated away from, and forwards
// end-of-track signals to the control loop through a small bounded event
// channel. The end-of-track timer is the fallback completion signal: it is
// armed with the remaining playback time whenever a track starts or resumes,
// and hard-cancelled on every seek, pause, or track change so a stale firing
// can never advance past the wrong track.
//
// Audio output goes through the Sink interface. The production Sink is MPV,
// which runs one idle mpv process per session and drives it over its JSON
// IPC socket.
package player
