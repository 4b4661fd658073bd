package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/videoapi"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal closes.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmDeleteModal asks before a video is deleted. Only a yes answer
// produces a command.
type confirmDeleteModal struct {
	video videoapi.VideoRecord
	onYes func(id string) tea.Cmd
}

func (c confirmDeleteModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Yes):
		return c, c.onYes(c.video.ID), true
	case key.Matches(k, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmDeleteModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := []string{
		styles.Text.Bold(true).Render(library.DeletePrompt),
		"",
		styles.MutedText.Render(truncate(c.video.DisplayName(), 48)),
		"",
		styles.WarningText.Render("y") + styles.FaintText.Render(" delete   ") +
			styles.WarningText.Render("n") + styles.FaintText.Render(" cancel"),
	}
	return placeModal(theme, theme.Danger, strings.Join(body, "\n"), width, height)
}

// noticeModal shows a blocking message. Any key closes it.
type noticeModal struct {
	title   string
	message string
}

func (n noticeModal) Update(msg tea.Msg, _ keyMap) (Modal, tea.Cmd, bool) {
	_, ok := msg.(tea.KeyMsg)
	return n, nil, ok
}

func (n noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.DangerText.Render(n.title) + "\n\n" +
		styles.Text.Render(n.message) + "\n\n" +
		styles.FaintText.Render("press any key")
	return placeModal(theme, theme.Danger, body, width, height)
}

func placeModal(theme Theme, border, body string, width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(56).
		Render(body)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
