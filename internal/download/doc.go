// Package download schedules yt-dlp fetches of remote audio tracks.
//
// The scheduler bounds concurrency with a weighted semaphore (default three
// permits) and always favors the most recently requested track: every request
// overwrites a single priority token, and a task that has just acquired a
// free permit only proceeds when the token is empty or its own. A task that
// loses the check returns its permit and retries after a short pause, so a
// running download is never interrupted and a losing contender wastes at most
// one spawn attempt per free permit.
//
// Duplicate requests coalesce on a registry of in-flight source ids. An id
// stays registered until its terminal result is consumed through Collect,
// not until the subprocess exits; that window is what lets a completed file
// whose track the user has skipped past be recognized and discarded instead
// of silently re-downloaded. Results carry the destination path on success
// and the subprocess error on failure; neither outcome is retried here, a
// retry is a fresh user request.
package download
