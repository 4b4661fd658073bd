package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/media"
)

func newUploadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := media.Open(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.build()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			errOut := newFormatter(cmd.ErrOrStderr())
			svc.Notifier.Attach(errOut.Error)
			defer svc.Notifier.Attach(nil)

			progress := newProgressPrinter(cmd.ErrOrStderr())
			svc.Transfer.Subscribe(progress.Update)

			err = svc.Transfer.Upload(cmd.Context(), file)
			progress.Finish()
			if err != nil {
				return err
			}

			newFormatter(cmd.OutOrStdout()).Success(
				fmt.Sprintf("Uploaded %s (%s)", file.Name(), library.FormatSize(file.Size())))
			return nil
		},
	}
}
