package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/vidlift/internal/capture"
	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/media"
	"github.com/five82/vidlift/internal/prefs"
	"github.com/five82/vidlift/internal/state"
	"github.com/five82/vidlift/internal/transfer"
	"github.com/five82/vidlift/internal/videoapi"
)

// Tab is the active top-level view.
type Tab int

const (
	TabUpload Tab = iota
	TabVideos
	TabLogs
)

var tabNames = [...]string{"Upload", "Videos", "Logs"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabNames[t]
}

// tabFromPref maps a prefs start_tab value to a Tab.
func tabFromPref(name string) Tab {
	if strings.EqualFold(strings.TrimSpace(name), prefs.TabVideos) {
		return TabVideos
	}
	return TabUpload
}

// Library is the video list the Videos tab shows.
type Library interface {
	Refresh(ctx context.Context) error
	Delete(ctx context.Context, id string, confirm library.Confirmer) error
	Snapshot() state.Snapshot
	PlaybackURL(rec videoapi.VideoRecord) string
}

// Uploads runs file uploads and reports their progress.
type Uploads interface {
	Upload(ctx context.Context, file media.File) error
	Snapshot() transfer.Transfer
	Subscribe(fn func(transfer.Transfer))
}

// Recorder drives camera recording.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Snapshot() capture.Snapshot
}

// Notices delivers blocking user notices such as a failed upload.
type Notices interface {
	Attach(fn func(string))
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Library   Library
	Uploads   Uploads
	Recorder  Recorder
	Notices   Notices
	LogPath   string
	ThemeName string
	StartTab  string
	PrefsPath string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	library   Library
	uploads   Uploads
	recorder  Recorder
	logPath   string
	prefsPath string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme    Theme
	tab      Tab
	startTab Tab
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Data state
	snapshot state.Snapshot
	transfer transfer.Transfer
	capture  capture.Snapshot

	// Last action outcome, shown on the status line
	status      string
	statusError bool
	statusAt    time.Time

	// Upload tab
	pathInput textinput.Model
	progress  progress.Model
	spinner   spinner.Model

	// Videos tab
	selected int

	// Logs tab
	logViewport viewport.Model
	logLines    []string
	logErr      error
	follow      bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "path/to/video.mp4"
	ti.Prompt = "> "
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	start := tabFromPref(opts.StartTab)
	m := Model{
		ctx:       ctx,
		library:   opts.Library,
		uploads:   opts.Uploads,
		recorder:  opts.Recorder,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		tab:       start,
		startTab:  start,
		pathInput: ti,
		progress:  progress.New(progress.WithoutPercentage()),
		spinner:   sp,
		follow:    true,
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		m.fetchSnapshotCmd(),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		if m.status != "" && time.Time(msg).Sub(m.statusAt) > StatusTTL {
			m.status = ""
		}
		cmds := []tea.Cmd{m.fetchSnapshotCmd(), tickCmd(m.tick)}
		if m.tab == TabLogs && m.follow {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = msg.library
		m.transfer = msg.transfer
		m.capture = msg.capture
		m.clampSelection()
		return m, nil

	case transferMsg:
		m.transfer = transfer.Transfer(msg)
		return m, nil

	case noticeMsg:
		m.modal = noticeModal{title: "vidlift", message: string(msg)}
		return m, nil

	case uploadDoneMsg:
		m.handleUploadDone(msg)
		return m, m.fetchSnapshotCmd()

	case recordStartedMsg:
		m.handleRecordStarted(msg)
		return m, m.fetchSnapshotCmd()

	case recordStoppedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Recording not saved: %v", msg.err))
		} else {
			m.setStatus("Recording uploaded")
		}
		return m, m.fetchSnapshotCmd()

	case deleteDoneMsg:
		switch {
		case errors.Is(msg.err, library.ErrNotConfirmed):
			m.setStatus("Delete cancelled")
		case msg.err != nil:
			m.setError(fmt.Sprintf("Could not delete %s: %v", msg.name, msg.err))
		default:
			m.setStatus("Deleted " + msg.name)
		}
		return m, m.fetchSnapshotCmd()

	case refreshDoneMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
		} else {
			m.setStatus("Video list refreshed")
		}
		return m, m.fetchSnapshotCmd()

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		m.refreshLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// handleKey routes keyboard input: modal first, then help, then the path
// input while it has focus, then global keys, then the active tab.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.pathInput.Focused() {
		return m.handlePathInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.refreshLogViewport()
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % Tab(len(tabNames)))
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case key.Matches(msg, m.keys.TabUpload):
		return m.switchTab(TabUpload)
	case key.Matches(msg, m.keys.TabVideos):
		return m.switchTab(TabVideos)
	case key.Matches(msg, m.keys.TabLogs):
		return m.switchTab(TabLogs)
	}

	switch m.tab {
	case TabUpload:
		return m.handleUploadKey(msg)
	case TabVideos:
		return m.handleVideosKey(msg)
	case TabLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// switchTab activates t. Upload and Videos are remembered as the start tab.
func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.tab = t
	if t != TabLogs && t != m.startTab {
		m.startTab = t
		m.savePrefs()
	}
	if t == TabLogs {
		return m, readLogsCmd(m.logPath)
	}
	return m, nil
}

// renderContent renders the active tab.
func (m Model) renderContent() string {
	switch m.tab {
	case TabVideos:
		return m.renderVideos()
	case TabLogs:
		return m.renderLogs()
	default:
		return m.renderUpload()
	}
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusError = false
	m.statusAt = time.Now()
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusError = true
	m.statusAt = time.Now()
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, StartTab: prefs.TabUpload}
	if m.startTab == TabVideos {
		p.StartTab = prefs.TabVideos
	}
	_ = prefs.Save(m.prefsPath, p)
}

func (m *Model) applyTheme() {
	m.progress.FullColor = m.theme.Accent
	m.progress.EmptyColor = m.theme.Border
	m.spinner.Style = m.theme.Styles().DangerText
}

func (m *Model) resize() {
	m.progress.Width = maxInt(m.width-8, 10)
	m.pathInput.Width = maxInt(m.width-10, 10)
	m.logViewport.Width = maxInt(m.width-2, 1)
	m.logViewport.Height = maxInt(m.contentHeight()-2, 1)
	m.refreshLogViewport()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	library  state.Snapshot
	transfer transfer.Transfer
	capture  capture.Snapshot
}

type transferMsg transfer.Transfer

type noticeMsg string

type uploadDoneMsg struct {
	name string
	err  error
}

type recordStartedMsg struct{ err error }

type recordStoppedMsg struct{ err error }

type deleteDoneMsg struct {
	name string
	err  error
}

type refreshDoneMsg struct{ err error }

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshotCmd() tea.Cmd {
	lib, up, rec := m.library, m.uploads, m.recorder
	return func() tea.Msg {
		var msg snapshotMsg
		if lib != nil {
			msg.library = lib.Snapshot()
		}
		if up != nil {
			msg.transfer = up.Snapshot()
		}
		if rec != nil {
			msg.capture = rec.Snapshot()
		}
		return msg
	}
}

func refreshCmd(ctx context.Context, lib Library) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: lib.Refresh(ctx)}
	}
}

func deleteCmd(ctx context.Context, lib Library, rec videoapi.VideoRecord) tea.Cmd {
	return func() tea.Msg {
		// The modal already asked.
		err := lib.Delete(ctx, rec.ID, library.Confirmed)
		return deleteDoneMsg{name: rec.DisplayName(), err: err}
	}
}

func uploadFileCmd(ctx context.Context, up Uploads, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := media.Open(path)
		if err != nil {
			return uploadDoneMsg{name: path, err: err}
		}
		return uploadDoneMsg{name: file.Name(), err: up.Upload(ctx, file)}
	}
}

func startRecordCmd(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		return recordStartedMsg{err: rec.Start(ctx)}
	}
}

func stopRecordCmd(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		return recordStoppedMsg{err: rec.Stop(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	if opts.Uploads != nil {
		opts.Uploads.Subscribe(func(t transfer.Transfer) { p.Send(transferMsg(t)) })
	}
	if opts.Notices != nil {
		opts.Notices.Attach(func(msg string) { p.Send(noticeMsg(msg)) })
		defer opts.Notices.Attach(nil)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return m.ctx.Err()
	}
	return err
}
