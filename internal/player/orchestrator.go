package player

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"vinyl/internal/download"
	"vinyl/internal/library"
	"vinyl/internal/logging"
	"vinyl/internal/store"
)

// State is the orchestrator's playback state.
type State int

const (
	StateIdle State = iota
	StateAwaitingDownload
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDownload:
		return "awaiting download"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Event is a message from the orchestrator to the control loop.
type Event int

const (
	// EventSongFinished means the current track ended (timer fired, the
	// pending download failed, or the loaded file would not play) and the
	// control loop should advance to the next track.
	EventSongFinished Event = iota
)

// eventBufferSize bounds the control-loop inbox. Producers block on a full
// inbox instead of dropping; the control loop drains one event per tick.
const eventBufferSize = 5

// maxVolume matches mpv's soft-volume ceiling.
const maxVolume = 130

// Downloader is the scheduler surface the orchestrator consumes.
type Downloader interface {
	Enqueue(ctx context.Context, req download.Request) bool
	InFlight(sourceID string) bool
	Collect(ctx context.Context) (download.Result, error)
}

// Options configures a new orchestrator.
type Options struct {
	// DownloadDir is where remote tracks are fetched to and played from.
	DownloadDir string
	// Volume is the initial output volume in percent.
	Volume int
}

// Snapshot is a point-in-time view of playback for rendering.
type Snapshot struct {
	State    State
	Track    *store.Track
	Progress time.Duration
	Duration time.Duration
	Volume   int
}

// Orchestrator owns the playback state machine. All exported methods are
// safe for concurrent use; the state lock is held only across bookkeeping,
// never across sink or scheduler calls.
type Orchestrator struct {
	scheduler   Downloader
	sink        Sink
	logger      *slog.Logger
	downloadDir string

	events chan Event
	ctx    context.Context
	wg     sync.WaitGroup

	// loadMu serializes load/stop sequences against the sink so the last
	// user intent is also the last loadfile mpv sees.
	loadMu sync.Mutex

	mu       sync.Mutex
	state    State
	current  *store.Track
	pending  string
	volume   int
	epoch    uint64
	timer    *time.Timer
	timerGen uint64
}

// New builds an orchestrator around a scheduler and an audio sink.
func New(scheduler Downloader, sink Sink, opts Options, logger *slog.Logger) *Orchestrator {
	volume := opts.Volume
	if volume < 0 {
		volume = 0
	}
	if volume > maxVolume {
		volume = maxVolume
	}
	return &Orchestrator{
		scheduler:   scheduler,
		sink:        sink,
		logger:      logging.NewComponentLogger(logger, "player"),
		downloadDir: opts.DownloadDir,
		events:      make(chan Event, eventBufferSize),
		ctx:         context.Background(),
		volume:      volume,
	}
}

// Start applies the initial volume and begins consuming download results.
// ctx bounds the consume loop and all background work; cancel it before
// Close.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ctx = ctx
	if err := o.sink.SetVolume(ctx, o.volume); err != nil {
		o.logger.Debug("initial volume not applied", logging.Error(err))
	}
	o.wg.Add(1)
	go o.consumeLoop(ctx)
}

// Close waits for background work to drain. The context passed to Start
// must already be cancelled.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.epoch++
	o.cancelTimerLocked()
	o.state = StateIdle
	o.current = nil
	o.pending = ""
	o.mu.Unlock()
	o.wg.Wait()
}

// Events is the control-loop inbox. Receive non-blocking, once per tick.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Play makes track the current track. A local or already-downloaded file
// starts immediately; selecting the track that is already playing restarts
// it from the beginning; anything else enters AwaitingDownload and requests
// a fetch (a duplicate request only repoints the download priority at this
// track).
func (o *Orchestrator) Play(ctx context.Context, track store.Track) error {
	o.mu.Lock()
	replay := o.current != nil && o.current.SourceID == track.SourceID &&
		(o.state == StatePlaying || o.state == StatePaused)
	o.mu.Unlock()
	if replay {
		return o.restart(ctx, track.SourceID)
	}

	if track.Local {
		return o.load(ctx, track, track.SourceID, nil)
	}
	path := library.TrackFile(o.downloadDir, track.Title)
	if _, err := os.Stat(path); err == nil {
		return o.load(ctx, track, path, nil)
	}

	o.mu.Lock()
	o.epoch++
	o.cancelTimerLocked()
	pendingTrack := track
	o.current = &pendingTrack
	o.pending = track.SourceID
	o.state = StateAwaitingDownload
	o.mu.Unlock()

	log := o.logger.With(logging.String(logging.FieldSourceID, track.SourceID))
	if o.scheduler.InFlight(track.SourceID) {
		log.Debug("track already downloading, pending request repointed")
	}
	o.scheduler.Enqueue(o.ctx, download.Request{SourceID: track.SourceID, Dest: path})
	log.Info("awaiting download", logging.String(logging.FieldTrackID, track.Title))
	return nil
}

// TogglePause flips between Playing and Paused. Pausing cancels the
// end-of-track timer; resuming re-arms it from the current position.
func (o *Orchestrator) TogglePause(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case StatePlaying:
		o.cancelTimerLocked()
		o.state = StatePaused
		o.mu.Unlock()
		return o.sink.Pause(ctx)
	case StatePaused:
		o.state = StatePlaying
		o.mu.Unlock()
		if err := o.sink.Resume(ctx); err != nil {
			return err
		}
		o.rearmFromSink(ctx)
		return nil
	default:
		o.mu.Unlock()
		return nil
	}
}

// Stop abandons the current track and returns to Idle. A download already
// in flight keeps running; only its result is ignored.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	o.epoch++
	o.cancelTimerLocked()
	o.state = StateIdle
	o.current = nil
	o.pending = ""
	o.mu.Unlock()

	o.loadMu.Lock()
	defer o.loadMu.Unlock()
	return o.sink.Stop(ctx)
}

// SeekBy seeks relative to the current position and re-arms the timer.
func (o *Orchestrator) SeekBy(ctx context.Context, delta time.Duration) error {
	playing, active := o.beginSeek()
	if !active {
		return nil
	}
	if err := o.sink.SeekBy(ctx, delta); err != nil {
		return err
	}
	if playing {
		o.rearmFromSink(ctx)
	}
	return nil
}

// SeekToFraction seeks to tenths/10 of the track (0 through 9).
func (o *Orchestrator) SeekToFraction(ctx context.Context, tenths int) error {
	if tenths < 0 || tenths > 9 {
		return nil
	}
	playing, active := o.beginSeek()
	if !active {
		return nil
	}
	duration, err := o.sink.Duration(ctx)
	if err != nil || duration <= 0 {
		return err
	}
	if err := o.sink.SeekTo(ctx, duration*time.Duration(tenths)/10); err != nil {
		return err
	}
	if playing {
		o.rearmFromSink(ctx)
	}
	return nil
}

// beginSeek cancels the timer ahead of a seek. active is false when nothing
// is loaded.
func (o *Orchestrator) beginSeek() (playing, active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePlaying && o.state != StatePaused {
		return false, false
	}
	o.cancelTimerLocked()
	return o.state == StatePlaying, true
}

// VolumeBy adjusts the volume by delta percent, clamped to 0..130, and
// returns the new value.
func (o *Orchestrator) VolumeBy(ctx context.Context, delta int) (int, error) {
	o.mu.Lock()
	volume := o.volume + delta
	if volume < 0 {
		volume = 0
	}
	if volume > maxVolume {
		volume = maxVolume
	}
	o.volume = volume
	o.mu.Unlock()
	return volume, o.sink.SetVolume(ctx, volume)
}

// Status snapshots playback for rendering. Progress and duration come from
// the sink and are zero when nothing is loaded.
func (o *Orchestrator) Status(ctx context.Context) Snapshot {
	o.mu.Lock()
	snap := Snapshot{State: o.state, Volume: o.volume}
	if o.current != nil {
		track := *o.current
		snap.Track = &track
	}
	o.mu.Unlock()

	if snap.State == StatePlaying || snap.State == StatePaused {
		if progress, err := o.sink.Progress(ctx); err == nil {
			snap.Progress = progress
		}
		if duration, err := o.sink.Duration(ctx); err == nil {
			snap.Duration = duration
		}
	}
	return snap
}

func (o *Orchestrator) consumeLoop(ctx context.Context) {
	defer o.wg.Done()
	for {
		result, err := o.scheduler.Collect(ctx)
		if err != nil {
			return
		}
		o.handleResult(result)
	}
}

// handleResult applies one download result. Results for anything other than
// the currently pending track are discarded; Collect has already cleared
// their registry entries.
func (o *Orchestrator) handleResult(result download.Result) {
	o.mu.Lock()
	matches := o.state == StateAwaitingDownload && o.pending == result.SourceID
	var track store.Track
	if matches {
		track = *o.current
	}
	o.mu.Unlock()

	log := o.logger.With(logging.String(logging.FieldSourceID, result.SourceID))
	if !matches {
		log.Debug("stale download result discarded")
		return
	}

	if !result.Completed() {
		log.Warn("download failed, skipping track", logging.Error(result.Err))
		o.mu.Lock()
		if o.state == StateAwaitingDownload && o.pending == result.SourceID {
			o.epoch++
			o.state = StateIdle
			o.current = nil
			o.pending = ""
		}
		o.mu.Unlock()
		o.emit(EventSongFinished)
		return
	}

	err := o.load(o.ctx, track, result.Path, func() bool {
		return o.state == StateAwaitingDownload && o.pending == result.SourceID
	})
	if err == nil {
		log.Info("playback started", logging.String(logging.FieldPath, result.Path))
	}
}

// load points the sink at path and commits the Playing state. check, when
// set, runs under the state lock immediately before the transition and
// abandons the load if it reports false (the user moved on meanwhile).
func (o *Orchestrator) load(ctx context.Context, track store.Track, path string, check func() bool) error {
	o.loadMu.Lock()
	defer o.loadMu.Unlock()

	o.mu.Lock()
	if check != nil && !check() {
		o.mu.Unlock()
		return nil
	}
	o.epoch++
	epoch := o.epoch
	o.cancelTimerLocked()
	loading := track
	o.current = &loading
	o.pending = ""
	o.state = StatePlaying
	o.mu.Unlock()

	if err := o.sink.Play(ctx, path); err != nil {
		o.logger.Warn("track would not play, skipping",
			logging.String(logging.FieldPath, path), logging.Error(err))
		o.mu.Lock()
		if o.epoch == epoch {
			o.state = StateIdle
			o.current = nil
		}
		o.mu.Unlock()
		o.emit(EventSongFinished)
		return nil
	}

	duration := o.awaitDuration(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch {
		return nil
	}
	if duration > 0 {
		o.armTimerLocked(duration)
	} else {
		o.logger.Debug("duration unknown, end-of-track timer not armed",
			logging.String(logging.FieldPath, path))
	}
	return nil
}

// restart replays the current track from position zero.
func (o *Orchestrator) restart(ctx context.Context, sourceID string) error {
	o.loadMu.Lock()
	defer o.loadMu.Unlock()

	o.mu.Lock()
	if o.current == nil || o.current.SourceID != sourceID ||
		(o.state != StatePlaying && o.state != StatePaused) {
		o.mu.Unlock()
		return nil
	}
	wasPaused := o.state == StatePaused
	o.cancelTimerLocked()
	o.state = StatePlaying
	o.mu.Unlock()

	if err := o.sink.SeekTo(ctx, 0); err != nil {
		return err
	}
	if wasPaused {
		if err := o.sink.Resume(ctx); err != nil {
			return err
		}
	}
	o.rearmFromSink(ctx)
	return nil
}

// rearmFromSink reschedules the end-of-track timer from the sink's live
// position after a resume or seek moved it.
func (o *Orchestrator) rearmFromSink(ctx context.Context) {
	o.mu.Lock()
	epoch := o.epoch
	o.mu.Unlock()

	progress, err := o.sink.Progress(ctx)
	if err != nil {
		return
	}
	duration, err := o.sink.Duration(ctx)
	if err != nil || duration <= 0 {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePlaying || o.epoch != epoch {
		return
	}
	o.armTimerLocked(duration - progress)
}

// awaitDuration polls the sink until the loaded file reports its length;
// the backend only knows it once the file is demuxed.
func (o *Orchestrator) awaitDuration(ctx context.Context) time.Duration {
	deadline := time.Now().Add(2 * time.Second)
	for {
		if duration, err := o.sink.Duration(ctx); err == nil && duration > 0 {
			return duration
		}
		if time.Now().After(deadline) {
			return 0
		}
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// emit delivers an event to the control loop, waiting for inbox capacity.
func (o *Orchestrator) emit(event Event) {
	select {
	case o.events <- event:
	case <-o.ctx.Done():
	}
}
