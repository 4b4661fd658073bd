package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/vidlift/internal/capture"
)

func newRecordCmd(opts *globalOptions) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the camera and upload the result",
		Long: "Record video and audio from the configured capture devices.\n" +
			"Recording stops after --duration, or on Ctrl+C when no duration is set, " +
			"and the file is then uploaded.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration < 0 {
				return fmt.Errorf("--duration must not be negative")
			}

			svc, err := opts.build()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			errOut := newFormatter(cmd.ErrOrStderr())
			svc.Notifier.Attach(errOut.Error)
			defer svc.Notifier.Attach(nil)

			ctx := cmd.Context()
			if err := svc.Capture.Start(ctx); err != nil {
				var derr *capture.DeviceAccessError
				if errors.As(err, &derr) {
					errOut.Error(capture.DeniedNotice)
				}
				return err
			}

			if duration > 0 {
				errOut.Info(fmt.Sprintf("Recording for %s (Ctrl+C stops early)", duration))
			} else {
				errOut.Info("Recording... press Ctrl+C to stop")
			}
			waitForStop(ctx, duration, svc.Capture, cmd.ErrOrStderr())

			// Ctrl+C cancels ctx; the upload still has to run.
			stopCtx := context.WithoutCancel(ctx)
			progress := newProgressPrinter(cmd.ErrOrStderr())
			svc.Transfer.Subscribe(progress.Update)
			err = svc.Capture.Stop(stopCtx)
			progress.Finish()
			if err != nil {
				return err
			}

			last := svc.Transfer.Snapshot()
			newFormatter(cmd.OutOrStdout()).Success("Uploaded " + last.Name)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long, e.g. 10s (default: until Ctrl+C)")
	return cmd
}

type elapsedSource interface {
	Snapshot() capture.Snapshot
}

// waitForStop blocks until d elapses (when positive) or ctx is cancelled,
// redrawing the elapsed time every second.
func waitForStop(ctx context.Context, d time.Duration, rec elapsedSource, w io.Writer) {
	var deadline <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer fmt.Fprintln(w)

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-ticker.C:
			fmt.Fprintf(w, "\rRecording: %d sec", rec.Snapshot().ElapsedSeconds)
		}
	}
}
