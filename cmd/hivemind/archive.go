package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"hivemind/internal/config"
	"hivemind/internal/store"
)

// archiveCmd inspects the SQLite mirror of past conversations.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect the session archive",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive()
		if err != nil {
			return err
		}
		defer archive.Close()

		ids, err := archive.Sessions()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("Archive is empty.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the archived turns of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive()
		if err != nil {
			return err
		}
		defer archive.Close()

		turns, err := archive.SessionTurns(args[0])
		if err != nil {
			return err
		}
		if len(turns) == 0 {
			return fmt.Errorf("no archived turns for session %s", args[0])
		}
		for _, turn := range turns {
			fmt.Printf("%3d  %-12s %s\n", turn.TurnNumber, turn.Speaker, turn.Content)
		}
		return nil
	},
}

func openArchive() (*store.Archive, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	if cfg.ArchivePath == "" {
		return nil, fmt.Errorf("archiving is disabled (empty archive_path in config)")
	}
	path := cfg.ArchivePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	return store.Open(path)
}

func init() {
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	rootCmd.AddCommand(archiveCmd)
}
