package cmd

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/ui"
)

func newNewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a new encrypted note",
		Long: `Create a new note. Without a title argument the title is read from stdin.
A trailing file extension such as ".md" is dropped from the title.`,
		Example: `  locknote new "Meeting notes"
  locknote new groceries.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			if len(args) == 0 {
				fmt.Fprint(opts.stdout, "Note title: ")
				line, err := bufio.NewReader(opts.stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read title: %w", err)
				}
				title = line
			}
			title = stripExtension(strings.TrimSpace(title))

			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			record, err := m.Create(title)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.stdout, "%s %s %s\n", ui.Success.Sprint("Created note"), ui.ID.Sprint(record.ID), ui.Title.Sprint(record.Title))
			return nil
		},
	}
}

// stripExtension drops a trailing ".ext" from a title, keeping titles like ".md" intact
func stripExtension(title string) string {
	ext := filepath.Ext(title)
	if ext == "" || ext == title || strings.ContainsAny(ext, " \t") {
		return title
	}
	return strings.TrimSuffix(title, ext)
}
