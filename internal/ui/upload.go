package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vidlift/internal/capture"
	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/transfer"
)

// handleUploadKey processes keys on the Upload tab.
func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.EditPath):
		cmd := m.pathInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()
	}
	return m, nil
}

// handlePathInputKey feeds keys to the path input. Enter submits the file,
// esc leaves the input untouched.
func (m Model) handlePathInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.pathInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitUpload()
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) submitUpload() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		m.setError("Enter the path of a video file")
		return m, nil
	}
	if m.uploads == nil {
		return m, nil
	}
	m.pathInput.Blur()
	m.pathInput.SetValue("")
	m.setStatus("Uploading " + path)
	return m, uploadFileCmd(m.ctx, m.uploads, path)
}

func (m *Model) handleUploadDone(msg uploadDoneMsg) {
	var uerr *transfer.UploadError
	switch {
	case msg.err == nil:
		m.setStatus("Uploaded " + msg.name)
	case errors.Is(msg.err, transfer.ErrTransferInProgress):
		m.setError("An upload is already in progress")
	case errors.As(msg.err, &uerr):
		// The failure notice arrives separately as a noticeMsg.
		m.setError(fmt.Sprintf("Upload of %s failed: %v", uerr.Name, uerr.Err))
	default:
		m.setError(msg.err.Error())
	}
}

// toggleRecording starts a recording when idle and stops it while recording.
// Requests made while the device is being opened or the file finalized are
// ignored.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.recorder == nil {
		return m, nil
	}
	snap := m.recorder.Snapshot()
	m.capture = snap
	switch snap.State {
	case capture.StateIdle:
		m.capture.State = capture.StateRequesting
		m.setStatus("Requesting camera and microphone...")
		return m, startRecordCmd(m.ctx, m.recorder)
	case capture.StateRecording:
		m.capture.State = capture.StateFinalizing
		m.setStatus("Finalizing recording...")
		return m, stopRecordCmd(m.ctx, m.recorder)
	}
	return m, nil
}

func (m *Model) handleRecordStarted(msg recordStartedMsg) {
	var derr *capture.DeviceAccessError
	switch {
	case msg.err == nil:
		m.setStatus("Recording started")
	case errors.As(msg.err, &derr):
		m.setError(derr.Error())
		m.modal = noticeModal{title: "Recording", message: capture.DeniedNotice}
	case errors.Is(msg.err, capture.ErrAlreadyRecording):
		m.setError("Already recording")
	default:
		m.setError(fmt.Sprintf("Could not start recording: %v", msg.err))
	}
}

// recordingLine describes the capture state for the Upload tab.
func recordingLine(s capture.Snapshot) string {
	switch s.State {
	case capture.StateRequesting:
		return "Requesting camera and microphone..."
	case capture.StateRecording:
		return fmt.Sprintf("Recording: %d sec", s.ElapsedSeconds)
	case capture.StateFinalizing:
		return "Finalizing recording..."
	default:
		return "Not recording"
	}
}

// progressLine describes the current or last upload.
func progressLine(t transfer.Transfer) string {
	switch t.State {
	case transfer.StateInProgress:
		return fmt.Sprintf("Uploading... %d%% (%s / %s)",
			t.Percent, library.FormatSize(t.BytesSent), library.FormatSize(t.TotalBytes))
	case transfer.StateSucceeded:
		return fmt.Sprintf("Upload complete (%s)", library.FormatSize(t.TotalBytes))
	case transfer.StateFailed:
		return transfer.FailedNotice
	default:
		return "No uploads yet"
	}
}

// renderUpload renders the Upload tab: file picker, recorder, and progress.
func (m Model) renderUpload() string {
	bgColor := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var lines []string
	section := func(title string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, bg.Render(title, styles.AccentText.Bold(true)))
	}

	section("File")
	if m.pathInput.Focused() {
		lines = append(lines, m.pathInput.View())
		lines = append(lines, bg.Render("enter upload  esc cancel", styles.FaintText))
	} else {
		lines = append(lines, bg.Render("Press o to choose a video file to upload", styles.MutedText))
	}

	section("Camera")
	recState := m.capture.State.String()
	badge := styles.StatusStyle(recState).Render(strings.ToUpper(recState))
	line := badge + bg.Space() + bg.Render(recordingLine(m.capture), styles.Text)
	if m.capture.State == capture.StateRecording {
		line = m.spinner.View() + bg.Space() + line
		line += bg.Spaces(2) + bg.Render("r stop", styles.FaintText)
	} else if m.capture.State == capture.StateIdle {
		line += bg.Spaces(2) + bg.Render("r record", styles.FaintText)
	}
	lines = append(lines, line)

	section("Transfer")
	switch m.transfer.State {
	case transfer.StateIdle:
		lines = append(lines, bg.Render(progressLine(m.transfer), styles.MutedText))
	default:
		lines = append(lines, bg.Render(truncateMiddle(m.transfer.Name, maxInt(m.width-6, 10)), styles.Text))
		lines = append(lines, m.progress.ViewAs(float64(m.transfer.Percent)/100))
		lines = append(lines, bg.Render(progressLine(m.transfer), m.transferStyle(styles)))
	}

	return m.renderTitledBox("Upload", strings.Join(lines, "\n"), m.width, m.contentHeight(), true)
}

func (m Model) transferStyle(styles Styles) lipgloss.Style {
	switch m.transfer.State {
	case transfer.StateSucceeded:
		return styles.SuccessText
	case transfer.StateFailed:
		return styles.DangerText
	default:
		return styles.Text
	}
}
