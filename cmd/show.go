package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/core"
)

func newShowCommand(opts *RootOptions) *cobra.Command {
	var bodyOnly bool
	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"cat"},
		Short:   "Print a decrypted note",
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

			text, err := m.Read(id)
			if err != nil {
				return err
			}

			if bodyOnly {
				note, err := core.ParseNote(text)
				if err != nil {
					return err
				}
				text = note.Body
			}

			fmt.Fprint(opts.stdout, text)
			if text != "" && !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(opts.stdout)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&bodyOnly, "body", false, "Omit the front matter header")
	return cmd
}
