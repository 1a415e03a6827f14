package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hargabyte/clsinfo/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .clsinfo directory and default config",
	Long: `Initialize the .clsinfo directory in the current directory and write the
default config.yaml into it.

The directory also holds the snippet journal (journal.db), created on the
first command that runs snippets.

Examples:
  clsinfo init          # Initialize in current directory
  clsinfo init --force  # Rewrite config.yaml with defaults`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configFile := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, filepath.Dir(configFile))
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config: %w", err)
	}

	path, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}
	relPath, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", okFmt("✓"), relPath)
	return nil
}
