package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/ui"
)

const listTimeLayout = "2006-01-02 15:04:05"

// listFlags are shared by list and search
type listFlags struct {
	long bool
	json bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.long, "long", "l", false, "Show timestamps in a table")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output in JSON format")
}

func newListCommand(opts *RootOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			records, err := m.List()
			if err != nil {
				return err
			}
			if len(records) == 0 && !flags.json {
				fmt.Fprintln(opts.stdout, ui.Warning.Sprint("No notes found."))
				return nil
			}
			return printRecords(opts.stdout, records, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func printRecords(w io.Writer, records []core.Record, flags *listFlags) error {
	switch {
	case flags.json:
		if records == nil {
			records = []core.Record{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case flags.long:
		return writeTable(w, records)
	default:
		for _, r := range records {
			fmt.Fprintf(w, "%s %s %s\n", ui.ID.Sprint(r.ID), ui.Title.Sprint(r.Title), ui.Dim.Sprintf("(%s)", r.Filename))
		}
		return nil
	}
}

// writeTable renders records without colour so columns line up
func writeTable(w io.Writer, records []core.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tUPDATED\tTITLE\tFILE")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.CreatedAt.Format(listTimeLayout),
			r.UpdatedAt.Format(listTimeLayout),
			r.Title,
			r.Filename,
		)
	}
	return tw.Flush()
}
