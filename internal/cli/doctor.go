package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/vidlift/internal/capture"
)

func newDoctorCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, capture devices, and API reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.build()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			f := newFormatter(cmd.OutOrStdout())
			cfg := svc.Config
			ok := true

			if path, err := svc.Source.CheckBinary(); err != nil {
				f.Check("ffmpeg", false, fmt.Sprintf("%s not found; install ffmpeg or set capture.ffmpeg_path", cfg.Capture.FFmpegPath))
				ok = false
			} else {
				f.Check("ffmpeg", true, path)
			}

			if err := svc.Source.CheckDevice(); err != nil {
				f.Check("Video device", false, fmt.Sprintf("%s: %v", cfg.Capture.VideoDevice, err))
				ok = false
			} else {
				f.Check("Video device", true, fmt.Sprintf("%s (%s)", cfg.Capture.VideoDevice, cfg.Capture.InputFormat))
			}

			if runtime.GOOS == "linux" {
				devices, err := capture.Devices("")
				switch {
				case err != nil:
					f.Check("Cameras", false, err.Error())
				case len(devices) == 0:
					f.Check("Cameras", false, "no usable /dev/video* devices")
				default:
					f.Check("Cameras", true, strings.Join(devices, ", "))
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := svc.Library.Refresh(ctx); err != nil {
				f.Check("API", false, fmt.Sprintf("%s: %v", cfg.APIBase, err))
				ok = false
			} else {
				f.Check("API", true, fmt.Sprintf("%s (%d videos)", cfg.APIBase, len(svc.Library.Snapshot().Videos)))
			}

			f.Check("Log file", true, cfg.LogPath())

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
