package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vinyl/internal/player"
)

// trackRowsReserve is the vertical space the tracks screen needs around the
// row list: header, optional search line, player pane, and footer.
const trackRowsReserve = 12

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenTracks:
		return m.viewTracks()
	case screenLoading:
		return m.viewLoading()
	case screenError:
		return m.viewError()
	case screenHelp:
		return m.viewHelp()
	default:
		return m.viewBrowser()
	}
}

func (m Model) viewBrowser() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(logoStyle.Render("vinyl"))
	b.WriteString(dimStyle.Render("  terminal playlist player"))
	b.WriteString("\n\n")

	if len(m.playlists) == 0 {
		b.WriteString(dimStyle.Render("  No playlists yet. Press a to add one by URL."))
		b.WriteString("\n")
	}
	for i, playlist := range m.playlists {
		line := playlist.Title
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("  > " + line))
		} else {
			b.WriteString("    " + line)
		}
		if !playlist.UpdatedAt.IsZero() {
			b.WriteString(dimStyle.Render("  " + playlist.UpdatedAt.Format("2006-01-02")))
		}
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString("\n  ")
		b.WriteString(searchStyle.Render("Add playlist: "))
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	m.writeStatusLines(&b)
	if m.adding {
		b.WriteString(dimStyle.Render("  enter: fetch  esc: cancel"))
	} else {
		b.WriteString(dimStyle.Render("  enter: open  a: add  u: update  d: delete  h: help  q: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewTracks() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render(m.openTitle()))
	if m.list.Shuffled() {
		b.WriteString(statusStyle.Render("  shuffle"))
	}
	if m.list.Following() {
		b.WriteString(statusStyle.Render("  follow"))
	}
	b.WriteString("\n\n")

	if m.list.Searching() {
		b.WriteString("  ")
		b.WriteString(searchStyle.Render("/" + m.list.Query()))
		b.WriteString("\n")
	}

	rows := m.list.Rows()
	if len(rows) == 0 {
		if m.list.Searching() {
			b.WriteString(dimStyle.Render("  no matching titles"))
		} else {
			b.WriteString(dimStyle.Render("  this playlist is empty"))
		}
		b.WriteString("\n")
	}

	focus := 0
	for i, row := range rows {
		if row.Cursor {
			focus = i
			break
		}
	}
	visible := len(rows)
	if m.height > 0 && m.height-trackRowsReserve < visible {
		visible = m.height - trackRowsReserve
		if visible < 5 {
			visible = 5
		}
	}
	start, end := window(len(rows), focus, visible)
	for _, row := range rows[start:end] {
		marker := "  "
		if row.Current {
			marker = playingStyle.Render("♪ ")
		}
		line := fmt.Sprintf("%3d %s%s", row.Pos+1, marker, row.Track.Title)
		if row.Cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(line)
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	m.writePlayerPane(&b)
	m.writeStatusLines(&b)
	if m.list.Searching() {
		b.WriteString(dimStyle.Render("  type to filter  enter: play  esc: clear"))
	} else {
		b.WriteString(dimStyle.Render("  enter: play  p: pause  n/b: skip  r: shuffle  s: search  h: help  q: back"))
	}
	b.WriteString("\n")
	return b.String()
}

// writePlayerPane renders the now-playing block under the track rows.
func (m Model) writePlayerPane(b *strings.Builder) {
	snapshot := m.snapshot
	switch snapshot.State {
	case player.StateIdle:
		b.WriteString(dimStyle.Render("  nothing playing"))
		b.WriteString("\n")
	case player.StateAwaitingDownload:
		b.WriteString("  ")
		b.WriteString(statusStyle.Render("downloading " + snapshotTitle(snapshot)))
		b.WriteString("\n")
	default:
		icon := "▶"
		if snapshot.State == player.StatePaused {
			icon = "❚❚"
		}
		b.WriteString("  ")
		b.WriteString(playingStyle.Render(icon + " " + snapshotTitle(snapshot)))
		b.WriteString("\n  ")

		var percent float64
		if snapshot.Duration > 0 {
			percent = float64(snapshot.Progress) / float64(snapshot.Duration)
			if percent > 1 {
				percent = 1
			}
		}
		b.WriteString(dimStyle.Render(formatDuration(snapshot.Progress)))
		b.WriteString(" ")
		b.WriteString(m.gauge.ViewAs(percent))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(formatDuration(snapshot.Duration)))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("volume %d%%", snapshot.Volume)))
	b.WriteString("\n\n")
}

// writeStatusLines renders the preflight warning and transient notice.
func (m Model) writeStatusLines(b *strings.Builder) {
	if m.warning != "" {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render(m.warning))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("  ")
		b.WriteString(statusStyle.Render(m.notice))
		b.WriteString("\n")
	}
}

func (m Model) viewLoading() string {
	var b strings.Builder
	b.WriteString("\n\n  ")
	b.WriteString(m.spin.View())
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(m.loading))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(errorStyle.Render("Something went wrong"))
	b.WriteString("\n\n  ")
	b.WriteString(m.errMsg)
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  press any key to continue"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, section := range m.keys.helpSections() {
		b.WriteString("  ")
		b.WriteString(titleStyle.Render(section.title))
		b.WriteString("\n")
		for _, entry := range section.entries {
			b.WriteString("    ")
			b.WriteString(helpKeyStyle.Render(padKey(entry.keys, 8)))
			b.WriteString(helpDescStyle.Render(entry.desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  press any key to go back"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) openTitle() string {
	if m.playlist != nil {
		return m.playlist.Title
	}
	if m.localName != "" {
		return m.localName
	}
	return "Tracks"
}

func snapshotTitle(s player.Snapshot) string {
	if s.Track != nil {
		return s.Track.Title
	}
	return "..."
}

// window clips a list of total rows to size, keeping focus in view.
func window(total, focus, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := focus - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func padKey(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap < 1 {
		gap = 1
	}
	return s + strings.Repeat(" ", gap)
}
