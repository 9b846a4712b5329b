package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/ui"
)

func newDoctorCommand(opts *RootOptions) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Find files left behind by interrupted operations",
		Long: `Scan the notes directory for encrypted files without an index entry and
for editor working copies left behind by an interrupted edit. Working copies
contain decrypted text. With --prune the files are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			report, err := m.Orphans()
			if prune {
				report, err = m.Prune()
			}
			if err != nil {
				return err
			}

			if report.Empty() {
				fmt.Fprintln(opts.stdout, ui.Success.Sprint("ok: no orphaned files"))
				return nil
			}

			verb := "found"
			if prune {
				verb = "removed"
			}
			for _, name := range report.Blobs {
				fmt.Fprintf(opts.stdout, "   %s %s %s\n", ui.Warning.Sprint("orphan note file"), verb+":", ui.Path.Sprint(name))
			}
			for _, name := range report.Temps {
				fmt.Fprintf(opts.stdout, "   %s %s %s\n", ui.Warning.Sprint("plaintext working copy"), verb+":", ui.Path.Sprint(name))
			}
			if !prune {
				fmt.Fprintf(opts.stdout, "\nRun %s to remove them\n", ui.Code.Sprint("locknote doctor --prune"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "Remove the files found")
	return cmd
}
