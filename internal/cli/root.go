package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vidgrab",
		Short: "Interactive video downloader assistant",
		Long: "vidgrab sets up yt-dlp and ffmpeg on first run, then walks you\n" +
			"through downloading videos or audio from a URL.",
		RunE:          runSession,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}
