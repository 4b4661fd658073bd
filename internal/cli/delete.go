package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/vidlift/internal/library"
)

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.build()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			// Ask before the request clock starts.
			confirm := library.Confirmed
			if !yes && !promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(library.DeletePrompt) {
				confirm = nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
			defer cancel()

			out := newFormatter(cmd.OutOrStdout())
			err = svc.Library.Delete(ctx, args[0], confirm)
			switch {
			case errors.Is(err, library.ErrNotConfirmed):
				out.Info("Delete cancelled")
				return nil
			case err != nil:
				return err
			}
			out.Success("Deleted " + args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// promptConfirmer asks on out and reads the answer from in. Only y or yes
// confirms.
func promptConfirmer(in io.Reader, out io.Writer) library.Confirmer {
	return library.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
