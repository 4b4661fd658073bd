package ui

import (
	"fmt"
	"strings"

	"github.com/five82/vidlift/internal/capture"
	"github.com/five82/vidlift/internal/transfer"
)

// renderHeader renders the top bar: logo, API state, video count, and the
// recorder and upload indicators.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("vidlift", styles.Logo)}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts,
			bg.Render("● "+classifyConnectionError(m.snapshot.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)))
	case !m.snapshot.HasList && m.snapshot.LastError == nil:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	case !m.snapshot.HasList:
		parts = append(parts, bg.Render("● "+classifyConnectionError(m.snapshot.LastError), styles.DangerText))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render("Videos:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Videos)), styles.Text))

	switch m.capture.State {
	case capture.StateRecording:
		parts = append(parts, styles.StatusStyle(statusRecording).Render(
			fmt.Sprintf("REC %ds", m.capture.ElapsedSeconds)))
	case capture.StateRequesting, capture.StateFinalizing:
		parts = append(parts, styles.StatusStyle(m.capture.State.String()).Render(
			strings.ToUpper(m.capture.State.String())))
	}

	if m.transfer.State == transfer.StateInProgress {
		parts = append(parts, styles.StatusStyle(statusUploading).Render(
			fmt.Sprintf("UPLOAD %d%%", m.transfer.Percent)))
	}

	if !compact && !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts,
			bg.Render("Updated", styles.FaintText)+bg.Space()+
				bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// classifyConnectionError returns a short description of a fetch error.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "API ERROR"
	}
}

// renderCommandBar renders the tab strip and the key hints for the active tab.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	segments := make([]string, 0, 12)
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			segments = append(segments, styles.Selected.Bold(true).Padding(0, 1).Render(label))
		} else {
			segments = append(segments, bg.Render(label, styles.MutedText))
		}
	}

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.tab {
	case TabVideos:
		commands = []cmd{{"j/k", "Navigate"}, {"d", "Delete"}, {"r", "Refresh"}}
	case TabLogs:
		follow := "Pause"
		if !m.follow {
			follow = "Follow"
		}
		commands = []cmd{{"f", follow}, {"j/k", "Scroll"}}
	default:
		record := "Record"
		if m.capture.State == capture.StateRecording {
			record = "Stop"
		}
		commands = []cmd{{"o", "Choose file"}, {"r", record}}
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.Render(":", styles.FaintText)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderStatusLine shows the outcome of the last action, or the last API
// error, or where the log file is.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	width := maxInt(m.width-1, 1)

	var line string
	switch {
	case m.status != "" && m.statusError:
		line = bg.Render(truncate(m.status, width), styles.DangerText)
	case m.status != "":
		line = bg.Render(truncate(m.status, width), styles.Text)
	case m.snapshot.LastError != nil:
		line = bg.Render(truncate("Error: "+m.snapshot.LastError.Error(), width), styles.DangerText)
	case m.logPath != "":
		line = bg.Render("logs", styles.FaintText) + bg.Space() +
			bg.Render(truncateMiddle(m.logPath, width-5), styles.MutedText)
	}
	return bg.FillLine(line, m.width)
}
