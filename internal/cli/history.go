package cli

import (
	"github.com/spf13/cobra"

	"vidgrab/internal/history"
	"vidgrab/internal/paths"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset the destination folder history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List remembered destination folders, most recent first",
		RunE:  runHistoryList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all remembered destination folders",
		RunE:  runHistoryClear,
	})

	return cmd
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	appPaths, err := paths.Resolve()
	if err != nil {
		return err
	}

	store := &history.Store{Path: appPaths.HistoryFile}
	entries := store.Load()
	if len(entries) == 0 {
		cmd.Println("(no folder history)")
		return nil
	}
	for _, entry := range entries {
		cmd.Println(entry)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	appPaths, err := paths.Resolve()
	if err != nil {
		return err
	}

	store := &history.Store{Path: appPaths.HistoryFile}
	if err := store.Clear(); err != nil {
		return err
	}
	cmd.Println("folder history cleared")
	return nil
}
