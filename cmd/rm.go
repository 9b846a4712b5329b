package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/ui"
)

func newRmCommand(opts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
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

			if !force {
				record, err := m.Get(id)
				if err != nil {
					if core.KindOf(err) == core.KindNotFound {
						fmt.Fprintln(opts.stdout, ui.Error.Sprint("Note not found."))
						return nil
					}
					return err
				}
				ok, err := core.Confirm(opts.stdin, opts.stdout, fmt.Sprintf("Delete %s %s?", ui.ID.Sprint(record.ID), ui.Title.Sprint(record.Title)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(opts.stdout, "Aborted.")
					return nil
				}
			}

			deleted, err := m.Delete(id)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(opts.stdout, ui.Error.Sprint("Note not found."))
				return nil
			}
			fmt.Fprintln(opts.stdout, ui.Success.Sprint("Note deleted successfully."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}
