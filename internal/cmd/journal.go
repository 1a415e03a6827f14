package cmd

import (
	"fmt"

	"github.com/hargabyte/clsinfo/internal/journal"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/spf13/cobra"
)

// journalCmd represents the journal command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the snippets the executor has run",
	Long: `Show the snippets recorded in .clsinfo/journal.db, newest first. Every
snippet the factory sends to the sandbox executor is journaled with its
result and the session (one per command run) it belongs to.

Examples:
  clsinfo journal              # All snippets
  clsinfo journal --limit 10   # The 10 most recent
  clsinfo journal --session ID # One run, in execution order
  clsinfo journal --stats      # Counts only
  clsinfo journal --clear      # Forget everything`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

var (
	journalLimit   int
	journalStats   bool
	journalClear   bool
	journalSession string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntVar(&journalLimit, "limit", 0, "Maximum number of snippets (0 for all)")
	journalCmd.Flags().BoolVar(&journalStats, "stats", false, "Show counts instead of snippets")
	journalCmd.Flags().BoolVar(&journalClear, "clear", false, "Delete all snippets and source hashes")
	journalCmd.Flags().StringVar(&journalSession, "session", "", "Only the snippets of this session, oldest first")
}

type journalStatsOutput struct {
	Path     string `yaml:"path" json:"path"`
	Snippets int64  `yaml:"snippets" json:"snippets"`
	Sessions int64  `yaml:"sessions" json:"sessions"`
	Sources  int64  `yaml:"sources" json:"sources"`
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, configDir, err := loadConfig()
	if err != nil {
		return err
	}
	if configDir == "" {
		return fmt.Errorf("no %s directory found: run 'clsinfo init' first", ".clsinfo")
	}

	j, err := journal.OpenPath(cfg.JournalPath(configDir))
	if err != nil {
		return err
	}
	defer j.Close()

	switch {
	case journalClear:
		if err := j.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s cleared %s\n", okFmt("✓"), j.Path())
		return nil

	case journalStats:
		stats, err := j.GetStats()
		if err != nil {
			return err
		}
		return writeOutput(cmd, cfg, &journalStatsOutput{
			Path:     j.Path(),
			Snippets: stats.SnippetCount,
			Sessions: stats.SessionCount,
			Sources:  stats.SourceCount,
		})
	}

	var entries []journal.Entry
	if journalSession != "" {
		entries, err = j.SessionEntries(journalSession)
		if err == nil && len(entries) == 0 {
			return fmt.Errorf("no snippets recorded for session %s", nameFmt(journalSession))
		}
		if journalLimit > 0 && len(entries) > journalLimit {
			entries = entries[:journalLimit]
		}
	} else {
		entries, err = j.Recent(journalLimit)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, cfg, output.NewSnippetOutputs(entries))
}
