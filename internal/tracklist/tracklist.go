package tracklist

import (
	"math/rand/v2"

	"vinyl/internal/store"
	"vinyl/internal/textutil"
)

// Row is one rendered line of the track list.
type Row struct {
	Pos     int // view position in the active order
	Track   store.Track
	Current bool
	Cursor  bool
}

// List tracks which order an open playlist is traversed in and where the
// cursor and the playing track sit within it. It is not safe for concurrent
// use; the UI loop owns it.
type List struct {
	tracks   []store.Track
	order    []int
	shuffled bool

	cursor  int
	current int
	follow  bool

	searching bool
	query     string
	matches   []int
	fcursor   int
}

func New(tracks []store.Track) *List {
	l := &List{}
	l.SetTracks(tracks)
	return l
}

// SetTracks replaces the track set, resetting order, cursor, playing mark,
// and any active search. The follow flag survives a refetch.
func (l *List) SetTracks(tracks []store.Track) {
	l.tracks = tracks
	l.order = identity(len(tracks))
	l.shuffled = false
	l.cursor = firstPos(len(tracks))
	l.current = -1
	l.clearSearch()
}

func (l *List) Len() int        { return len(l.tracks) }
func (l *List) Shuffled() bool  { return l.shuffled }
func (l *List) Following() bool { return l.follow }
func (l *List) Searching() bool { return l.searching }
func (l *List) Query() string   { return l.query }

// Track resolves a view position through the active order.
func (l *List) Track(pos int) (store.Track, bool) {
	if pos < 0 || pos >= len(l.order) {
		return store.Track{}, false
	}
	return l.tracks[l.order[pos]], true
}

// CursorPos returns the view position under the cursor, resolved through
// the search filter when one is active. -1 when nothing is selectable.
func (l *List) CursorPos() int {
	if l.searching {
		if l.fcursor < 0 || l.fcursor >= len(l.matches) {
			return -1
		}
		return l.matches[l.fcursor]
	}
	return l.cursor
}

func (l *List) CursorTrack() (store.Track, bool) {
	return l.Track(l.CursorPos())
}

// CurrentPos returns the view position of the playing track, -1 when none.
func (l *List) CurrentPos() int { return l.current }

func (l *List) CurrentTrack() (store.Track, bool) {
	return l.Track(l.current)
}

// MoveDown advances the cursor one row, wrapping at the end. Manual cursor
// movement leaves follow mode.
func (l *List) MoveDown() {
	l.follow = false
	if l.searching {
		l.fcursor = step(l.fcursor, +1, len(l.matches))
		return
	}
	l.cursor = step(l.cursor, +1, len(l.order))
}

// MoveUp moves the cursor one row back, wrapping at the start.
func (l *List) MoveUp() {
	l.follow = false
	if l.searching {
		l.fcursor = step(l.fcursor, -1, len(l.matches))
		return
	}
	l.cursor = step(l.cursor, -1, len(l.order))
}

// Activate marks the view position as playing, snaps the cursor to it when
// follow mode is on, and returns the track there.
func (l *List) Activate(pos int) (store.Track, bool) {
	track, ok := l.Track(pos)
	if !ok {
		return store.Track{}, false
	}
	l.current = pos
	if l.follow && !l.searching {
		l.cursor = pos
	}
	return track, true
}

// Next activates the view position after the playing one, wrapping past the
// end. With nothing playing it activates the first position. The search
// filter does not narrow traversal; playback walks the full active order.
func (l *List) Next() (store.Track, bool) {
	return l.Activate(step(l.current, +1, len(l.order)))
}

// Prev activates the view position before the playing one, wrapping past
// the start.
func (l *List) Prev() (store.Track, bool) {
	return l.Activate(step(l.current, -1, len(l.order)))
}

// ClearCurrent drops the playing mark after playback stops.
func (l *List) ClearCurrent() { l.current = -1 }

// ToggleShuffle regenerates a random traversal order, or restores the
// sequential one when already shuffled. The cursor returns to the top and
// the playing mark is dropped; callers stop playback alongside.
func (l *List) ToggleShuffle() {
	if l.shuffled {
		l.order = identity(len(l.tracks))
		l.shuffled = false
	} else {
		rand.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
		l.shuffled = true
	}
	l.cursor = firstPos(len(l.order))
	l.current = -1
	if l.searching {
		l.refilter()
	}
}

// EnableFollow turns follow mode on and snaps the cursor to the playing
// track. It takes effect only with a track playing and no active search.
func (l *List) EnableFollow() {
	if l.searching || l.current < 0 {
		return
	}
	l.follow = true
	l.cursor = l.current
}

// ToggleFollow leaves follow mode, or enters it when a track is playing.
func (l *List) ToggleFollow() {
	if l.follow {
		l.follow = false
		return
	}
	l.EnableFollow()
}

// Search filters the visible rows to titles containing query under case
// folding. The filtered view has its own cursor; the match set is
// recomputed only when the query changes.
func (l *List) Search(query string) {
	if l.searching && query == l.query {
		return
	}
	l.query = query
	l.searching = true
	l.refilter()
}

// ClearSearch drops the filter; the main cursor stays where it last was.
func (l *List) ClearSearch() { l.clearSearch() }

// Rows returns the lines to render in display order, honoring the search
// filter.
func (l *List) Rows() []Row {
	if l.searching {
		rows := make([]Row, 0, len(l.matches))
		for i, pos := range l.matches {
			rows = append(rows, Row{
				Pos:     pos,
				Track:   l.tracks[l.order[pos]],
				Current: pos == l.current,
				Cursor:  i == l.fcursor,
			})
		}
		return rows
	}
	rows := make([]Row, 0, len(l.order))
	for pos := range l.order {
		rows = append(rows, Row{
			Pos:     pos,
			Track:   l.tracks[l.order[pos]],
			Current: pos == l.current,
			Cursor:  pos == l.cursor,
		})
	}
	return rows
}

func (l *List) refilter() {
	l.matches = l.matches[:0]
	for pos := range l.order {
		if textutil.ContainsFold(l.tracks[l.order[pos]].Title, l.query) {
			l.matches = append(l.matches, pos)
		}
	}
	l.fcursor = firstPos(len(l.matches))
}

func (l *List) clearSearch() {
	l.searching = false
	l.query = ""
	l.matches = nil
	l.fcursor = -1
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func firstPos(n int) int {
	if n == 0 {
		return -1
	}
	return 0
}

func step(pos, delta, n int) int {
	if n == 0 {
		return -1
	}
	if pos < 0 {
		return 0
	}
	return ((pos+delta)%n + n) % n
}
