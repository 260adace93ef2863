package player

import "time"

// endOfTrackGrace pads the timer so the sink's own end of stream wins when
// it arrives on time; the timer is the fallback, not the primary signal.
const endOfTrackGrace = time.Second

// armTimerLocked replaces any live end-of-track timer with one firing after
// the remaining playback time plus grace. Callers hold o.mu.
func (o *Orchestrator) armTimerLocked(remaining time.Duration) {
	o.cancelTimerLocked()
	if remaining < 0 {
		remaining = 0
	}
	gen := o.timerGen
	o.timer = time.AfterFunc(remaining+endOfTrackGrace, func() {
		o.timerFired(gen)
	})
}

// cancelTimerLocked stops the live timer and invalidates any firing already
// in flight. Callers hold o.mu.
func (o *Orchestrator) cancelTimerLocked() {
	o.timerGen++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// timerFired runs off the timer goroutine. A generation mismatch means the
// timer was superseded after this firing was scheduled; it must do nothing.
func (o *Orchestrator) timerFired(gen uint64) {
	o.mu.Lock()
	if gen != o.timerGen || o.state != StatePlaying {
		o.mu.Unlock()
		return
	}
	o.epoch++
	o.timer = nil
	o.timerGen++
	o.state = StateIdle
	o.current = nil
	o.mu.Unlock()

	o.logger.Debug("end of track timer fired")
	o.emit(EventSongFinished)
}
