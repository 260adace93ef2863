package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vinyl/internal/api"
	"vinyl/internal/config"
	"vinyl/internal/download"
	"vinyl/internal/logging"
	"vinyl/internal/player"
	"vinyl/internal/store"
	"vinyl/internal/testsupport"
)

type uiSink struct {
	loaded string
	paused bool
	volume int
	pos    time.Duration
	length time.Duration
}

func (s *uiSink) Play(_ context.Context, path string) error {
	s.loaded = path
	s.paused = false
	s.pos = 0
	return nil
}
func (s *uiSink) Stop(context.Context) error  { s.loaded = ""; return nil }
func (s *uiSink) Pause(context.Context) error { s.paused = true; return nil }
func (s *uiSink) Resume(context.Context) error {
	s.paused = false
	return nil
}
func (s *uiSink) SeekTo(_ context.Context, pos time.Duration) error {
	s.pos = pos
	return nil
}
func (s *uiSink) SeekBy(_ context.Context, delta time.Duration) error {
	s.pos += delta
	return nil
}
func (s *uiSink) Progress(context.Context) (time.Duration, error) { return s.pos, nil }
func (s *uiSink) Duration(context.Context) (time.Duration, error) { return s.length, nil }
func (s *uiSink) SetVolume(_ context.Context, percent int) error {
	s.volume = percent
	return nil
}
func (s *uiSink) Close() error { return nil }

type uiScheduler struct{}

func (uiScheduler) Enqueue(context.Context, download.Request) bool { return true }
func (uiScheduler) InFlight(string) bool                           { return false }
func (uiScheduler) Collect(ctx context.Context) (download.Result, error) {
	<-ctx.Done()
	return download.Result{}, ctx.Err()
}

type fixture struct {
	cfg   *config.Config
	sink  *uiSink
	store *store.Store
	model Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("test-key"))
	st := testsupport.MustOpenStore(t, cfg)
	sink := &uiSink{length: 3 * time.Minute}
	orch := player.New(uiScheduler{}, sink, player.Options{
		DownloadDir: cfg.Paths.DownloadDir,
		Volume:      cfg.Playback.Volume,
	}, logging.NewNop())
	model := New(context.Background(), Deps{
		Config: cfg,
		Store:  st,
		Player: orch,
		Client: api.New(cfg.YouTube.APIKey),
		Logger: logging.NewNop(),
	})
	return &fixture{cfg: cfg, sink: sink, store: st, model: model}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return apply(t, m, cmd())
}

// openLocal puts the model on the tracks screen with local files whose
// paths land under dir.
func openLocal(t *testing.T, m Model, dir string, titles ...string) Model {
	t.Helper()
	tracks := make([]store.Track, len(titles))
	for i, title := range titles {
		tracks[i] = store.Track{
			Position: i,
			Title:    title,
			SourceID: filepath.Join(dir, title+".mp3"),
			Local:    true,
		}
	}
	m = apply(t, m, localOpenedMsg{title: "Local", tracks: tracks})
	if m.screen != screenTracks {
		t.Fatalf("screen = %d, want tracks", m.screen)
	}
	return m
}

func seedPlaylists(t *testing.T, f *fixture, titles ...string) []*store.Playlist {
	t.Helper()
	ctx := context.Background()
	saved := make([]*store.Playlist, 0, len(titles))
	for i, title := range titles {
		p, err := f.store.SavePlaylist(ctx, title, "PL"+strings.Repeat("x", i+2))
		if err != nil {
			t.Fatalf("save playlist: %v", err)
		}
		saved = append(saved, p)
	}
	return saved
}

func TestBrowserNavigationOpensPlaylist(t *testing.T) {
	f := newFixture(t)
	// Playlists come back sorted by title, so Evening sits at index 1.
	saved := seedPlaylists(t, f, "Ambient", "Evening")
	tracks := []*store.Track{
		{Position: 0, Title: "One", SourceID: "v1"},
		{Position: 1, Title: "Two", SourceID: "v2"},
	}
	if err := f.store.ReplaceTracks(context.Background(), saved[1].ID, tracks); err != nil {
		t.Fatalf("replace tracks: %v", err)
	}

	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())
	if len(m.playlists) != 2 {
		t.Fatalf("playlists loaded = %d, want 2", len(m.playlists))
	}

	m = press(t, m, "down")
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m = press(t, m, "down")
	if m.cursor != 0 {
		t.Fatalf("cursor should wrap to 0, got %d", m.cursor)
	}
	m = press(t, m, "up")
	if m.cursor != 1 {
		t.Fatalf("cursor should wrap back to 1, got %d", m.cursor)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, updated.(Model), cmd)
	if m.screen != screenTracks {
		t.Fatalf("screen = %d, want tracks", m.screen)
	}
	if m.list.Len() != 2 {
		t.Fatalf("track list len = %d, want 2", m.list.Len())
	}
	if m.playlist == nil || m.playlist.Title != "Evening" {
		t.Fatalf("open playlist = %+v, want Evening", m.playlist)
	}
}

func TestAddInputCapturesKeysUntilCancelled(t *testing.T) {
	f := newFixture(t)
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())

	m = press(t, m, "a")
	if !m.adding {
		t.Fatal("a should focus the URL input")
	}
	m = press(t, m, "q")
	if m.quitting {
		t.Fatal("q while typing must not quit")
	}
	if got := m.input.Value(); got != "q" {
		t.Fatalf("input value = %q, want %q", got, "q")
	}
	m = press(t, m, "esc")
	if m.adding || m.input.Value() != "" {
		t.Fatalf("esc should cancel the input, adding=%v value=%q", m.adding, m.input.Value())
	}
	if m.screen != screenBrowser {
		t.Fatalf("screen = %d, want browser", m.screen)
	}
}

func TestPlaySelectedStartsSinkAndFollows(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	m := openLocal(t, f.model, dir, "alpha", "beta", "gamma")

	m = press(t, m, "down", "enter")
	want := filepath.Join(dir, "beta.mp3")
	if f.sink.loaded != want {
		t.Fatalf("sink loaded %q, want %q", f.sink.loaded, want)
	}
	if !m.list.Following() {
		t.Fatal("enter should turn follow mode on")
	}
	if m.list.CurrentPos() != 1 {
		t.Fatalf("current = %d, want 1", m.list.CurrentPos())
	}
	if m.snapshot.State != player.StatePlaying {
		t.Fatalf("snapshot state = %v, want playing", m.snapshot.State)
	}

	view := m.View()
	if !strings.Contains(view, "beta") || !strings.Contains(view, "volume") {
		t.Fatalf("view missing playback pane:\n%s", view)
	}
}

func TestPauseKeyTogglesSink(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "alpha")
	m = press(t, m, "enter")

	m = press(t, m, "p")
	if !f.sink.paused {
		t.Fatal("p should pause the sink")
	}
	m = press(t, m, "p")
	if f.sink.paused {
		t.Fatal("second p should resume")
	}
	_ = m
}

func TestShuffleKeyStopsPlayback(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "a", "b", "c")
	m = press(t, m, "enter")
	if f.sink.loaded == "" {
		t.Fatal("expected a loaded track")
	}

	m = press(t, m, "r")
	if f.sink.loaded != "" {
		t.Fatal("r should stop the sink")
	}
	if m.list.CurrentPos() != -1 {
		t.Fatal("r should drop the playing mark")
	}
	if !m.list.Shuffled() {
		t.Fatal("r should toggle shuffle on")
	}
}

func TestSearchRoutesRunesToQuery(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	m := openLocal(t, f.model, dir, "Blue Sky", "Red Sun", "blue moon")

	m = press(t, m, "s")
	if !m.list.Searching() {
		t.Fatal("s should start a search")
	}
	m = press(t, m, "b", "l", "u", "e")
	if got := m.list.Query(); got != "blue" {
		t.Fatalf("query = %q, want %q", got, "blue")
	}
	if got := len(m.list.Rows()); got != 2 {
		t.Fatalf("filtered rows = %d, want 2", got)
	}

	// Playback keys are plain runes while searching.
	m = press(t, m, "n")
	if got := m.list.Query(); got != "bluen" {
		t.Fatalf("query = %q, want %q", got, "bluen")
	}
	if f.sink.loaded != "" {
		t.Fatal("n while searching must not skip tracks")
	}
	m = press(t, m, "backspace")
	if got := m.list.Query(); got != "blue" {
		t.Fatalf("query after backspace = %q, want %q", got, "blue")
	}

	m = press(t, m, "esc")
	if m.list.Searching() {
		t.Fatal("esc should clear the search")
	}
	if m.screen != screenTracks {
		t.Fatal("esc with a search active should stay on the tracks screen")
	}

	m = press(t, m, "s", "r", "e", "d", "enter")
	want := filepath.Join(dir, "Red Sun.mp3")
	if f.sink.loaded != want {
		t.Fatalf("sink loaded %q, want %q", f.sink.loaded, want)
	}
	if m.list.Searching() {
		t.Fatal("enter should clear the search after playing")
	}
	if !m.list.Following() {
		t.Fatal("enter should enable follow after playing")
	}
}

func TestDigitSeeksToTenth(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "alpha")
	m = press(t, m, "enter", "5")
	if want := 90 * time.Second; f.sink.pos != want {
		t.Fatalf("sink position = %v, want %v", f.sink.pos, want)
	}
	_ = m
}

func TestArrowKeysSeekByConfiguredStep(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "alpha")
	m = press(t, m, "enter", "right")
	if want := f.cfg.SeekStep(); f.sink.pos != want {
		t.Fatalf("position after right = %v, want %v", f.sink.pos, want)
	}
	m = press(t, m, "left")
	if f.sink.pos != 0 {
		t.Fatalf("position after left = %v, want 0", f.sink.pos)
	}
	_ = m
}

func TestVolumeKeysUseConfiguredStep(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "alpha")

	start := f.cfg.Playback.Volume
	step := f.cfg.Playback.VolumeStep
	m = press(t, m, "+")
	if m.snapshot.Volume != start+step {
		t.Fatalf("volume = %d, want %d", m.snapshot.Volume, start+step)
	}
	if f.sink.volume != start+step {
		t.Fatalf("sink volume = %d, want %d", f.sink.volume, start+step)
	}
	m = press(t, m, "-")
	if m.snapshot.Volume != start {
		t.Fatalf("volume = %d, want %d", m.snapshot.Volume, start)
	}
}

func TestTickRefreshesSnapshot(t *testing.T) {
	f := newFixture(t)
	m := openLocal(t, f.model, t.TempDir(), "alpha")
	m = press(t, m, "enter")

	f.sink.pos = 42 * time.Second
	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("tick should re-arm itself")
	}
	if m.snapshot.Progress != 42*time.Second {
		t.Fatalf("snapshot progress = %v, want 42s", m.snapshot.Progress)
	}
	if m.snapshot.Duration != 3*time.Minute {
		t.Fatalf("snapshot duration = %v, want 3m", m.snapshot.Duration)
	}
}

func TestBackClosesPlaylistAndStops(t *testing.T) {
	f := newFixture(t)
	seedPlaylists(t, f, "Solo")
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())
	m = openLocal(t, m, t.TempDir(), "alpha")
	m = press(t, m, "enter")

	m = press(t, m, "q")
	if m.screen != screenBrowser {
		t.Fatalf("screen = %d, want browser", m.screen)
	}
	if f.sink.loaded != "" {
		t.Fatal("closing the playlist should stop playback")
	}

	m = press(t, m, "q")
	if !m.quitting {
		t.Fatal("q on the browser should quit")
	}
}

func TestStartDirQuitsOnBack(t *testing.T) {
	f := newFixture(t)
	m := New(context.Background(), Deps{
		Config:   f.cfg,
		Store:    f.store,
		Player:   f.model.player,
		Client:   api.New(""),
		Logger:   logging.NewNop(),
		StartDir: t.TempDir(),
	})
	if m.screen != screenLoading {
		t.Fatalf("screen = %d, want loading", m.screen)
	}
	m = openLocal(t, m, t.TempDir(), "alpha")
	m = press(t, m, "q")
	if !m.quitting {
		t.Fatal("back in directory mode should quit the app")
	}
}

func TestErrorScreenReturnsToPreviousScreen(t *testing.T) {
	f := newFixture(t)
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())

	m = apply(t, m, playlistOpenedMsg{err: errors.New("db went away")})
	if m.screen != screenError {
		t.Fatalf("screen = %d, want error", m.screen)
	}
	if !strings.Contains(m.View(), "db went away") {
		t.Fatal("error view should show the message")
	}
	m = press(t, m, "x")
	if m.screen != screenBrowser {
		t.Fatalf("screen = %d, want browser after dismissing", m.screen)
	}
}

func TestHelpScreenReturnsOnAnyKey(t *testing.T) {
	f := newFixture(t)
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())
	m = press(t, m, "h")
	if m.screen != screenHelp {
		t.Fatalf("screen = %d, want help", m.screen)
	}
	if !strings.Contains(m.View(), "seek to that tenth") {
		t.Fatal("help should list the digit binding")
	}
	m = press(t, m, "z")
	if m.screen != screenBrowser {
		t.Fatalf("screen = %d, want browser", m.screen)
	}
}

func TestFetchDonePlacesCursorOnNewPlaylist(t *testing.T) {
	f := newFixture(t)
	seedPlaylists(t, f, "First", "Second")
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())

	added, err := f.store.SavePlaylist(context.Background(), "Third", "PLthird")
	if err != nil {
		t.Fatalf("save playlist: %v", err)
	}
	updated, cmd := m.Update(fetchDoneMsg{playlist: added})
	m = runCmd(t, updated.(Model), cmd)

	if m.screen != screenBrowser {
		t.Fatalf("screen = %d, want browser", m.screen)
	}
	if got := m.selectedPlaylist(); got == nil || got.ID != added.ID {
		t.Fatalf("cursor should sit on the new playlist, got %+v", got)
	}
}

func TestDeleteKeyRemovesSelectedPlaylist(t *testing.T) {
	f := newFixture(t)
	seedPlaylists(t, f, "Alpha", "Beta")
	m := runCmd(t, f.model, f.model.loadPlaylistsCmd())
	m = press(t, m, "down")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = runCmd(t, updated.(Model), cmd)
	if len(m.playlists) != 1 || m.playlists[0].Title != "Alpha" {
		t.Fatalf("playlists after delete = %+v", m.playlists)
	}
}

func TestUpdateDoneReopensTrackList(t *testing.T) {
	f := newFixture(t)
	saved := seedPlaylists(t, f, "Mix")
	tracks := []*store.Track{{Position: 0, Title: "Fresh", SourceID: "v9"}}
	if err := f.store.ReplaceTracks(context.Background(), saved[0].ID, tracks); err != nil {
		t.Fatalf("replace tracks: %v", err)
	}

	m := f.model
	updated, cmd := m.Update(updateDoneMsg{playlist: saved[0], reopen: true})
	m = runCmd(t, updated.(Model), cmd)
	if m.screen != screenTracks {
		t.Fatalf("screen = %d, want tracks", m.screen)
	}
	if m.list.Len() != 1 {
		t.Fatalf("list len = %d, want 1", m.list.Len())
	}
}
