package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand creates the locknote command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "locknote",
		Short: "Encrypted personal notes",
		Long: `locknote keeps personal notes as individually encrypted files
with a small index of titles and timestamps.

Configuration lives in ~/.config/locknote/config.toml and is created on first run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(opts.stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file (default $LOCKNOTE_CONFIG or ~/.config/locknote/config.toml)")

	cmd.AddCommand(
		newNewCommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
		newEditCommand(opts),
		newRmCommand(opts),
		newSearchCommand(opts),
		newExportCommand(opts),
		newExportOneCommand(opts),
		newDoctorCommand(opts),
		newCompactCommand(opts),
		newKeyCommand(opts),
	)
	return cmd
}
