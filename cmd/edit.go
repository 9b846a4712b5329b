package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/ui"
)

func newEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note in your editor",
		Long: `Decrypt a note into a private working copy next to it, open it in the
configured editor ($VISUAL or $EDITOR when unset) and encrypt the result.
The note is left untouched if the editor exits with an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			res, err := m.Edit(id)
			if err != nil {
				return err
			}

			if !res.Changed {
				fmt.Fprintln(opts.stdout, ui.Dim.Sprint("No changes."))
				return nil
			}
			fmt.Fprintf(opts.stdout, "%s %s\n",
				ui.Success.Sprint("Note edited successfully."),
				ui.Dim.Sprintf("(+%d -%d lines)", res.Inserted, res.Deleted))
			return nil
		},
	}
}
