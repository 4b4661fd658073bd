package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the header drops details.
	LayoutCompactWidth = 100

	// LayoutURLWidth is the minimum width to show playback URLs on every card.
	LayoutURLWidth = 140
)

// Log display limits.
const (
	// LogTailLines is how many lines of the log file the Logs view shows.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is how often the model polls controller snapshots.
	DefaultUIInterval = time.Second

	// StatusTTL is how long an action message stays on the status line.
	StatusTTL = 8 * time.Second
)

// Rows taken by the header, the command bar and the status line.
const chromeHeight = 3

// contentHeight is the height left for the active tab.
func (m Model) contentHeight() int {
	h := m.height - chromeHeight
	if h < 3 {
		return 3
	}
	return h
}

// renderTitledBox draws a bordered box with the title centered in the top
// border. Content lines are padded or cut to fill the box.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	title = truncate(title, innerWidth-2)
	titleLen := lipgloss.Width(title) + 2
	leftPad := (innerWidth - titleLen) / 2
	if leftPad < 0 {
		leftPad = 0
	}
	rightPad := innerWidth - titleLen - leftPad
	if rightPad < 0 {
		rightPad = 0
	}

	top := bg.Render("┌"+strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad)+"┐", borderStyle)
	bottom := bg.Render("└"+strings.Repeat("─", innerWidth)+"┘", borderStyle)

	lineStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	rows := make([]string, 0, height)
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+lineStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}
