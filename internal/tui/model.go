// Package tui is the Bubble Tea terminal interface: a playlist browser, the
// track list with playback controls, and the loading, error, and help
// screens around them. A fixed tick drains one orchestrator event and
// refreshes the playback snapshot; fetches run as background commands.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vinyl/internal/api"
	"vinyl/internal/config"
	"vinyl/internal/library"
	"vinyl/internal/logging"
	"vinyl/internal/player"
	"vinyl/internal/store"
	"vinyl/internal/tracklist"
)

type screen int

const (
	screenBrowser screen = iota
	screenTracks
	screenLoading
	screenError
	screenHelp
)

// noticeTTL is how long a transient status-line notice stays visible.
const noticeTTL = 5 * time.Second

// Deps carries the wired components the UI drives.
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Player *player.Orchestrator
	Client *api.Client
	Logger *slog.Logger

	// Warning is an optional preflight warning shown in the status bar.
	Warning string

	// StartURL makes the UI fetch this playlist URL before anything else.
	StartURL string
	// StartDir opens the UI straight into a local directory playlist.
	StartDir string
}

// Model is the Bubble Tea model for vinyl.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	store  *store.Store
	player *player.Orchestrator
	client *api.Client
	logger *slog.Logger

	keys keyMap

	screen screen
	prev   screen
	width  int
	height int

	playlists []*store.Playlist
	cursor    int
	adding    bool
	input     textinput.Model
	selectID  int64

	playlist  *store.Playlist
	localName string
	localOnly bool
	list      *tracklist.List

	snapshot player.Snapshot
	gauge    progress.Model
	spin     spinner.Model
	loading  string

	warning  string
	errMsg   string
	notice   string
	noticeAt time.Time

	startURL string
	startDir string

	quitting bool
}

type (
	tickMsg time.Time

	playlistsLoadedMsg struct {
		playlists []*store.Playlist
		err       error
	}

	playlistOpenedMsg struct {
		playlist *store.Playlist
		tracks   []store.Track
		err      error
	}

	localOpenedMsg struct {
		title  string
		tracks []store.Track
		err    error
	}

	fetchDoneMsg struct {
		playlist *store.Playlist
		err      error
	}

	updateDoneMsg struct {
		playlist *store.Playlist
		reopen   bool
		err      error
	}
)

// New builds the model. ctx bounds every store, fetch, and player call the
// UI makes.
func New(ctx context.Context, deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "https://www.youtube.com/playlist?list=PL..."
	input.CharLimit = 300
	input.Width = 48

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = statusStyle

	gauge := progress.New(progress.WithDefaultGradient())
	gauge.Width = 40

	m := Model{
		ctx:      ctx,
		cfg:      deps.Config,
		store:    deps.Store,
		player:   deps.Player,
		client:   deps.Client,
		logger:   logging.NewComponentLogger(deps.Logger, "tui"),
		keys:     newKeyMap(),
		input:    input,
		spin:     spin,
		gauge:    gauge,
		warning:  deps.Warning,
		startURL: deps.StartURL,
		startDir: deps.StartDir,
	}
	m.snapshot = player.Snapshot{Volume: deps.Config.Playback.Volume}

	switch {
	case m.startURL != "":
		m.screen = screenLoading
		m.loading = "Fetching playlist..."
	case m.startDir != "":
		m.screen = screenLoading
		m.loading = "Reading directory..."
		m.localOnly = true
	default:
		m.screen = screenBrowser
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	switch {
	case m.startURL != "":
		cmds = append(cmds, m.fetchNewCmd(m.startURL), m.spin.Tick)
	case m.startDir != "":
		cmds = append(cmds, m.scanDirCmd(m.startDir), m.spin.Tick)
	default:
		cmds = append(cmds, m.loadPlaylistsCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gauge.Width = clampWidth(msg.Width-16, 20, 60)
		m.input.Width = clampWidth(msg.Width-12, 24, 64)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		if m.screen != screenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case playlistsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.playlists = msg.playlists
		m.cursor = clampCursor(m.cursor, len(m.playlists))
		if m.selectID != 0 {
			for i, p := range m.playlists {
				if p.ID == m.selectID {
					m.cursor = i
					break
				}
			}
			m.selectID = 0
		}
		if m.screen == screenLoading {
			m.screen = screenBrowser
		}
		return m, nil

	case playlistOpenedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.playlist = msg.playlist
		m.localName = ""
		m.openTracks(msg.tracks)
		return m, nil

	case localOpenedMsg:
		if msg.err != nil {
			m.localOnly = false
			return m.fail(msg.err), nil
		}
		m.playlist = nil
		m.localName = msg.title
		m.openTracks(msg.tracks)
		return m, nil

	case fetchDoneMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.selectID = msg.playlist.ID
		m.notify(fmt.Sprintf("Added %q", msg.playlist.Title))
		return m, m.loadPlaylistsCmd()

	case updateDoneMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.notify("Playlist updated")
		if msg.reopen {
			return m, m.openPlaylistCmd(msg.playlist)
		}
		m.selectID = msg.playlist.ID
		return m, m.loadPlaylistsCmd()
	}

	// Remaining message types belong to the URL input (cursor blink).
	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick drains at most one orchestrator event, refreshes the playback
// snapshot, and re-arms the tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	select {
	case ev := <-m.player.Events():
		if ev == player.EventSongFinished && m.list != nil && m.list.Len() > 0 {
			m.playNext()
		}
	default:
	}
	m.snapshot = m.player.Status(m.ctx)
	if m.notice != "" && time.Since(m.noticeAt) > noticeTTL {
		m.notice = ""
	}
	return m, m.tick()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case screenHelp:
		m.screen = m.prev
		return m, nil
	case screenError:
		return m.leaveError()
	case screenLoading:
		return m, nil
	case screenBrowser:
		return m.handleBrowserKey(msg)
	case screenTracks:
		return m.handleTracksKey(msg)
	}
	return m, nil
}

func (m Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		switch {
		case key.Matches(msg, m.keys.Enter):
			raw := strings.TrimSpace(m.input.Value())
			m.adding = false
			m.input.Blur()
			m.input.SetValue("")
			if raw == "" {
				return m, nil
			}
			m.screen = screenLoading
			m.loading = "Fetching playlist..."
			return m, tea.Batch(m.fetchNewCmd(raw), m.spin.Tick)
		case msg.Type == tea.KeyEsc:
			m.adding = false
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.playlists))
	case key.Matches(msg, m.keys.Down):
		m.cursor = moveCursor(m.cursor, +1, len(m.playlists))
	case key.Matches(msg, m.keys.Enter):
		if p := m.selectedPlaylist(); p != nil {
			return m, m.openPlaylistCmd(p)
		}
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		if p := m.selectedPlaylist(); p != nil {
			return m, m.deletePlaylistCmd(p)
		}
	case key.Matches(msg, m.keys.Update):
		if p := m.selectedPlaylist(); p != nil {
			m.screen = screenLoading
			m.loading = "Updating playlist..."
			return m, tea.Batch(m.updateCmd(p, false), m.spin.Tick)
		}
	case key.Matches(msg, m.keys.Help):
		m.prev = m.screen
		m.screen = screenHelp
	case key.Matches(msg, m.keys.Back):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleTracksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list == nil {
		return m, nil
	}

	// While a search is active every printable rune extends the query;
	// only non-character keys keep their usual meaning.
	if m.list.Searching() {
		switch msg.Type {
		case tea.KeyUp:
			m.list.MoveUp()
		case tea.KeyDown:
			m.list.MoveDown()
		case tea.KeyLeft:
			m.seekBy(-m.cfg.SeekStep())
		case tea.KeyRight:
			m.seekBy(m.cfg.SeekStep())
		case tea.KeyEnter:
			return m.playSelected()
		case tea.KeyEsc:
			m.list.ClearSearch()
		case tea.KeyBackspace:
			m.list.Search(trimLastRune(m.list.Query()))
		case tea.KeySpace:
			m.list.Search(m.list.Query() + " ")
		case tea.KeyRunes:
			m.list.Search(m.list.Query() + string(msg.Runes))
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
	case key.Matches(msg, m.keys.Enter):
		return m.playSelected()
	case key.Matches(msg, m.keys.SeekBack):
		m.seekBy(-m.cfg.SeekStep())
	case key.Matches(msg, m.keys.SeekForward):
		m.seekBy(m.cfg.SeekStep())
	case key.Matches(msg, m.keys.Pause):
		if err := m.player.TogglePause(m.ctx); err != nil {
			m.notify(fmt.Sprintf("Pause failed: %v", err))
		}
	case key.Matches(msg, m.keys.Follow):
		m.list.ToggleFollow()
	case key.Matches(msg, m.keys.Search):
		m.list.Search("")
	case key.Matches(msg, m.keys.Next):
		m.playNext()
	case key.Matches(msg, m.keys.Prev):
		m.playPrev()
	case key.Matches(msg, m.keys.Shuffle):
		m.stopPlayback()
		m.list.ToggleShuffle()
	case key.Matches(msg, m.keys.VolumeUp):
		m.volumeBy(m.cfg.Playback.VolumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.volumeBy(-m.cfg.Playback.VolumeStep)
	case key.Matches(msg, m.keys.Update):
		if m.playlist != nil {
			m.screen = screenLoading
			m.loading = "Updating playlist..."
			return m, tea.Batch(m.updateCmd(m.playlist, true), m.spin.Tick)
		}
	case key.Matches(msg, m.keys.Help):
		m.prev = m.screen
		m.screen = screenHelp
	case key.Matches(msg, m.keys.Back):
		return m.closePlaylist()
	default:
		if tenth, ok := digitKey(msg); ok {
			if err := m.player.SeekToFraction(m.ctx, tenth); err != nil {
				m.notify(fmt.Sprintf("Seek failed: %v", err))
			}
		}
	}
	return m, nil
}

func (m Model) playSelected() (tea.Model, tea.Cmd) {
	pos := m.list.CursorPos()
	if pos < 0 {
		return m, nil
	}
	track, ok := m.list.Activate(pos)
	if !ok {
		return m, nil
	}
	if err := m.player.Play(m.ctx, track); err != nil {
		m.notify(fmt.Sprintf("Playback failed: %v", err))
	}
	m.list.ClearSearch()
	m.list.EnableFollow()
	m.snapshot = m.player.Status(m.ctx)
	return m, nil
}

func (m *Model) playNext() {
	track, ok := m.list.Next()
	if !ok {
		return
	}
	if err := m.player.Play(m.ctx, track); err != nil {
		m.notify(fmt.Sprintf("Playback failed: %v", err))
	}
}

func (m *Model) playPrev() {
	track, ok := m.list.Prev()
	if !ok {
		return
	}
	if err := m.player.Play(m.ctx, track); err != nil {
		m.notify(fmt.Sprintf("Playback failed: %v", err))
	}
}

func (m *Model) stopPlayback() {
	if err := m.player.Stop(m.ctx); err != nil {
		m.logger.Debug("stop failed", logging.Error(err))
	}
	m.list.ClearCurrent()
}

func (m *Model) seekBy(delta time.Duration) {
	if err := m.player.SeekBy(m.ctx, delta); err != nil {
		m.notify(fmt.Sprintf("Seek failed: %v", err))
	}
}

func (m *Model) volumeBy(delta int) {
	volume, err := m.player.VolumeBy(m.ctx, delta)
	if err != nil {
		m.notify(fmt.Sprintf("Volume change failed: %v", err))
		return
	}
	m.snapshot.Volume = volume
}

func (m *Model) notify(text string) {
	m.notice = text
	m.noticeAt = time.Now()
}

func (m *Model) openTracks(tracks []store.Track) {
	if m.list == nil {
		m.list = tracklist.New(tracks)
	} else {
		m.list.SetTracks(tracks)
	}
	m.screen = screenTracks
}

func (m Model) closePlaylist() (tea.Model, tea.Cmd) {
	m.stopPlayback()
	if m.localOnly {
		m.quitting = true
		return m, tea.Quit
	}
	m.playlist = nil
	m.localName = ""
	m.list = nil
	m.screen = screenBrowser
	if m.playlists == nil {
		return m, m.loadPlaylistsCmd()
	}
	return m, nil
}

// fail routes an error to the error screen. Errors raised while loading
// return to the browser afterwards; an error already on screen stays.
func (m Model) fail(err error) Model {
	m.logger.Error("ui operation failed", logging.Error(err))
	switch m.screen {
	case screenError:
	case screenLoading:
		m.errMsg = err.Error()
		m.prev = screenBrowser
		m.screen = screenError
	default:
		m.errMsg = err.Error()
		m.prev = m.screen
		m.screen = screenError
	}
	return m
}

func (m Model) leaveError() (tea.Model, tea.Cmd) {
	m.errMsg = ""
	m.screen = m.prev
	if m.screen == screenBrowser && m.playlists == nil {
		return m, m.loadPlaylistsCmd()
	}
	return m, nil
}

func (m Model) selectedPlaylist() *store.Playlist {
	if m.cursor < 0 || m.cursor >= len(m.playlists) {
		return nil
	}
	return m.playlists[m.cursor]
}

func (m Model) loadPlaylistsCmd() tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		playlists, err := st.Playlists(ctx)
		return playlistsLoadedMsg{playlists: playlists, err: err}
	}
}

func (m Model) openPlaylistCmd(p *store.Playlist) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		tracks, err := st.Tracks(ctx, p.ID)
		if err != nil {
			return playlistOpenedMsg{err: err}
		}
		return playlistOpenedMsg{playlist: p, tracks: flatten(tracks)}
	}
}

func (m Model) scanDirCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := library.ScanDir(dir)
		if err != nil {
			return localOpenedMsg{err: err}
		}
		return localOpenedMsg{title: filepath.Base(dir), tracks: tracks}
	}
}

func (m Model) fetchNewCmd(raw string) tea.Cmd {
	client, st, ctx := m.client, m.store, m.ctx
	return func() tea.Msg {
		sourceID, err := api.ParsePlaylistURL(raw)
		if err != nil {
			return fetchDoneMsg{err: err}
		}
		fetched, tracks, err := client.FetchPlaylist(ctx, sourceID)
		if err != nil {
			return fetchDoneMsg{err: err}
		}
		saved, err := st.SavePlaylist(ctx, fetched.Title, fetched.SourceID)
		if err != nil {
			return fetchDoneMsg{err: err}
		}
		if err := st.ReplaceTracks(ctx, saved.ID, tracks); err != nil {
			return fetchDoneMsg{err: err}
		}
		return fetchDoneMsg{playlist: saved}
	}
}

func (m Model) updateCmd(p *store.Playlist, reopen bool) tea.Cmd {
	client, st, ctx := m.client, m.store, m.ctx
	return func() tea.Msg {
		_, tracks, err := client.FetchPlaylist(ctx, p.SourceID)
		if err != nil {
			return updateDoneMsg{err: err}
		}
		if err := st.ReplaceTracks(ctx, p.ID, tracks); err != nil {
			return updateDoneMsg{err: err}
		}
		return updateDoneMsg{playlist: p, reopen: reopen}
	}
}

func (m Model) deletePlaylistCmd(p *store.Playlist) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		if err := st.DeletePlaylist(ctx, p.ID); err != nil {
			return playlistsLoadedMsg{err: err}
		}
		playlists, err := st.Playlists(ctx)
		return playlistsLoadedMsg{playlists: playlists, err: err}
	}
}

func flatten(tracks []*store.Track) []store.Track {
	out := make([]store.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, *t)
	}
	return out
}

func digitKey(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return int(s[0] - '0'), true
	}
	return 0, false
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func moveCursor(pos, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((pos+delta)%n + n) % n
}

func clampCursor(pos, n int) int {
	if n == 0 {
		return 0
	}
	if pos >= n {
		return n - 1
	}
	if pos < 0 {
		return 0
	}
	return pos
}

func clampWidth(w, min, max int) int {
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}

// Run drives the UI on the alternate screen until the user quits.
func Run(ctx context.Context, deps Deps) error {
	program := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
