package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/ui"
)

func newSearchCommand(opts *RootOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose title or filename contains the query",
		Long:  "Find notes whose title or filename contains the query. Matching is case-sensitive.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			records, err := m.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(records) == 0 && !flags.json {
				fmt.Fprintln(opts.stdout, ui.Warning.Sprint("No matching notes found."))
				return nil
			}
			return printRecords(opts.stdout, records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}
