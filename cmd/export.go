package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/git"
	"github.com/illarion/locknote/internal/ui"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write decrypted copies of all notes to a directory",
		Long: `Write a decrypted copy of every note to dir, or to export_dir from the
config when dir is omitted. Files are named after the note title; notes
with the same title overwrite each other. A note that fails to export is
reported and the rest are still written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			}

			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			report, err := m.ExportAll(dir)
			if err != nil {
				return err
			}

			succeeded, total := report.Counts()
			switch {
			case total == 0:
				fmt.Fprintln(opts.stdout, ui.Warning.Sprint("No notes to export."))
				return nil
			case succeeded == total:
				fmt.Fprintln(opts.stdout, ui.Success.Sprintf("Exported all %d notes to %s.", total, report.Dir))
			default:
				fmt.Fprintln(opts.stdout, ui.Warning.Sprintf("Exported %d/%d notes to %s.", succeeded, total, report.Dir))
				for _, f := range report.Failures {
					fmt.Fprintf(opts.stdout, "   %s %s\n", ui.Error.Sprint("failed:"), f)
				}
			}

			warnGit(opts.stdout, report.Dir, report.Files)
			return nil
		},
	}
}

func newExportOneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export-one <id> [path]",
		Short: "Write a decrypted copy of one note",
		Long: `Write a decrypted copy of one note. path may be a file or an existing
directory; when omitted the note goes to export_dir from the config.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var path string
			if len(args) == 2 {
				path = args[1]
			}

			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			written, err := m.ExportOne(id, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.stdout, "%s %s\n", ui.Success.Sprint("Exported to"), ui.Path.Sprint(written))
			warnGit(opts.stdout, "", []string{written})
			return nil
		},
	}
}

// warnGit prints a warning when exported plaintext sits unprotected in a git work tree
func warnGit(w io.Writer, dir string, files []string) {
	if len(files) == 0 {
		return
	}
	if dir == "" {
		dir = filepath.Dir(files[0])
	}
	if out := git.FormatExportStatus(git.CheckExport(dir, files)); out != "" {
		fmt.Fprint(w, out)
	}
}
