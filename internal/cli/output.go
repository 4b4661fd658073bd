package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/transfer"
	"github.com/five82/vidlift/internal/videoapi"
)

// formatter writes human-readable command output.
type formatter struct {
	w io.Writer
}

func newFormatter(w io.Writer) *formatter {
	return &formatter{w: w}
}

func (f *formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *formatter) Check(name string, ok bool, detail string) {
	mark := "✅"
	if !ok {
		mark = "❌"
	}
	fmt.Fprintf(f.w, "  %s %s: %s\n", mark, name, detail)
}

// VideoTable prints one row per video.
func (f *formatter) VideoTable(videos []videoapi.VideoRecord, playback func(videoapi.VideoRecord) string) {
	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPLOADED\tURL")
	for _, v := range videos {
		uploaded := v.UploadDate
		if t := v.ParsedUploadDate(); !t.IsZero() {
			uploaded = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.DisplayName(), library.FormatSize(v.Size), uploaded, playback(v))
	}
	_ = tw.Flush()
}

// progressPrinter redraws a single upload progress line in place.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	last    int
	started bool
	done    bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: -1}
}

// Update is a transfer subscriber.
func (p *progressPrinter) Update(t transfer.Transfer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	active := t.State == transfer.StateInProgress || t.State == transfer.StateSucceeded
	if p.done || !active || t.Percent == p.last {
		return
	}
	p.last = t.Percent
	p.started = true
	line := fmt.Sprintf("Uploading... %d%% (%s / %s)",
		t.Percent, library.FormatSize(t.BytesSent), library.FormatSize(t.TotalBytes))
	fmt.Fprintf(p.w, "\r%s%s", line, strings.Repeat(" ", 4))
}

// Finish ends the progress line. Later updates are ignored.
func (p *progressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started && !p.done {
		fmt.Fprintln(p.w)
	}
	p.done = true
}
