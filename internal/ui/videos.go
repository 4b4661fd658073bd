package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/videoapi"
)

// Lines per video card, including the blank separator.
const cardHeight = 4

// handleVideosKey processes keys on the Videos tab.
func (m Model) handleVideosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Refresh) {
		if m.library == nil {
			return m, nil
		}
		m.setStatus("Refreshing...")
		return m, refreshCmd(m.ctx, m.library)
	}

	count := len(m.snapshot.Videos)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < count-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = count - 1
	case key.Matches(msg, m.keys.Delete):
		rec, ok := m.selectedVideo()
		if !ok || m.library == nil {
			return m, nil
		}
		lib, ctx := m.library, m.ctx
		m.modal = confirmDeleteModal{
			video: rec,
			onYes: func(string) tea.Cmd { return deleteCmd(ctx, lib, rec) },
		}
	}
	return m, nil
}

func (m Model) selectedVideo() (videoapi.VideoRecord, bool) {
	if m.selected < 0 || m.selected >= len(m.snapshot.Videos) {
		return videoapi.VideoRecord{}, false
	}
	return m.snapshot.Videos[m.selected], true
}

// clampSelection keeps the cursor on a row after the list changes size.
func (m *Model) clampSelection() {
	if n := len(m.snapshot.Videos); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// formatUploadDate renders an upload date in local time. Unparseable values
// are shown as received.
func formatUploadDate(rec videoapi.VideoRecord) string {
	t := rec.ParsedUploadDate()
	if t.IsZero() {
		if raw := strings.TrimSpace(rec.UploadDate); raw != "" {
			return raw
		}
		return "unknown date"
	}
	return t.In(time.Local).Format("2006-01-02 15:04")
}

// renderVideos renders the Videos tab as a list of cards.
func (m Model) renderVideos() string {
	height := m.contentHeight()
	title := fmt.Sprintf("Videos (%d)", len(m.snapshot.Videos))

	bgColor := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if len(m.snapshot.Videos) == 0 {
		msg := "No videos uploaded yet"
		if !m.snapshot.HasList {
			msg = "Loading videos..."
		}
		empty := lipgloss.Place(maxInt(m.width-2, 1), maxInt(height-2, 1), lipgloss.Center, lipgloss.Center,
			bg.Render(msg, styles.MutedText),
			lipgloss.WithWhitespaceBackground(lipgloss.Color(bgColor)))
		return m.renderTitledBox(title, empty, m.width, height, true)
	}

	visible := maxInt((height-2)/cardHeight, 1)
	offset := 0
	if m.selected >= visible {
		offset = m.selected - visible + 1
	}
	end := offset + visible
	if end > len(m.snapshot.Videos) {
		end = len(m.snapshot.Videos)
	}

	inner := maxInt(m.width-4, 10)
	var lines []string
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderVideoCard(m.snapshot.Videos[i], i == m.selected, inner)...)
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

func (m Model) renderVideoCard(rec videoapi.VideoRecord, selected bool, width int) []string {
	bgColor := m.theme.FocusBg
	if selected {
		bgColor = m.theme.SelectionBg
	}
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	marker := "  "
	nameStyle := styles.Text
	if selected {
		marker = "▸ "
		nameStyle = styles.Text.Bold(true)
	}

	name := bg.Render(marker, styles.AccentText) + bg.Render(truncate(rec.DisplayName(), width-2), nameStyle)
	meta := bg.Spaces(2) +
		bg.Render(formatUploadDate(rec), styles.MutedText) +
		bg.Render("  ·  ", styles.FaintText) +
		bg.Render(library.FormatSize(rec.Size), styles.InfoText)

	url := ""
	if m.library != nil && (selected || m.width >= LayoutURLWidth) {
		url = bg.Spaces(2) + bg.Render(truncateMiddle(m.library.PlaybackURL(rec), width-2), styles.FaintText)
	}

	return []string{
		bg.FillLine(name, width),
		bg.FillLine(meta, width),
		bg.FillLine(url, width),
		"",
	}
}
