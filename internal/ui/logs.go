package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vidlift/internal/logtail"
)

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// handleLogsKey processes keys on the Logs tab. Keys not bound here scroll
// the viewport and pause follow mode.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleFollow) {
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logPath)
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.logViewport.YOffset
	m.logViewport, cmd = m.logViewport.Update(msg)
	if m.logViewport.YOffset < before {
		m.follow = false
	}
	return m, cmd
}

// refreshLogViewport re-renders the log lines into the viewport.
func (m *Model) refreshLogViewport() {
	if m.logViewport.Width == 0 {
		return
	}
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.FocusBg)
	if m.logErr != nil {
		return bg.Render("Could not read log: "+m.logErr.Error(), styles.DangerText)
	}
	if len(m.logLines) == 0 {
		return bg.Render("No log output yet", styles.MutedText)
	}
	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		out = append(out, m.colorizeLogLine(line, styles, bg))
	}
	return strings.Join(out, "\n")
}

// colorizeLogLine styles one slog text line: time, level, message, then the
// attributes. Lines that do not parse are shown as plain text.
func (m Model) colorizeLogLine(line string, styles Styles, bg BgStyle) string {
	entry, ok := logtail.Parse(line)
	if !ok {
		return bg.Render(line, styles.Text)
	}

	var b strings.Builder
	if !entry.Time.IsZero() {
		b.WriteString(bg.Render(entry.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(padRight(entry.Level, 5), levelStyle(entry.Level, styles).Bold(true)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(entry.Msg, styles.Text))
	for _, attr := range entry.Attrs {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(attr.Key+"=", styles.FaintText))
		b.WriteString(bg.Render(attr.Value, styles.MutedText))
	}
	return b.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}

// renderLogs renders the Logs tab.
func (m Model) renderLogs() string {
	title := "Log"
	if m.logPath != "" {
		title = "Log " + truncateMiddle(m.logPath, maxInt(m.width/2, 10))
	}
	if !m.follow {
		title += " (paused)"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}
