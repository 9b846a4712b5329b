package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/locknote/internal/storage"
	"github.com/illarion/locknote/internal/ui"
)

func newCompactCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Compact the bolt index to reclaim unused space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := openManager(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			db, ok := m.Index().(*storage.Storage)
			if !ok {
				return errors.New("compact only applies to index_backend = \"bolt\"")
			}

			// Get file size before
			info, err := os.Stat(cfg.DBPath)
			if err != nil {
				return err
			}
			sizeBefore := info.Size()

			if err := db.Compact(); err != nil {
				return err
			}

			info, err = os.Stat(cfg.DBPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.stdout, "%s %s -> %s\n", ui.Success.Sprint("Compacted:"), formatSize(sizeBefore), formatSize(info.Size()))
			return nil
		},
	}
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
