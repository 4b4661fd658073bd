package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.build()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
			defer cancel()
			if err := svc.Library.Refresh(ctx); err != nil {
				return err
			}

			out := newFormatter(cmd.OutOrStdout())
			videos := svc.Library.Snapshot().Videos
			if len(videos) == 0 {
				out.Info("No videos found")
				return nil
			}
			out.VideoTable(videos, svc.Library.PlaybackURL)
			return nil
		},
	}
}
