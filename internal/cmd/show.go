package cmd

import (
	"fmt"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <name> [paths...]",
	Short: "Show reflection properties of a class, namespace or enum",
	Long: `Show what reflection reports for one entity: kind and class property
bits, size, tag number, title, template name, whether it can be default
constructed, and, for records, every base with its offset and the declared
methods.

The name is looked up the way a C++ qualified name would be. Typedefs
resolve to their target; template-ids like std::pair<int,float> are
instantiated on demand.

Examples:
  clsinfo show geo::Circle include/
  clsinfo show --brief 'std::pair<int,double>' include/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

var showBrief bool

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showBrief, "brief", false, "Omit bases and methods")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[1:], false)
	if err != nil {
		return err
	}
	defer s.Close()

	ci := classinfo.ForName(s.res, s.box, s.rep, args[0])
	entity := output.NewEntityOutput(ci, !showBrief)
	if entity == nil {
		return fmt.Errorf("no class, namespace or enum named %s", nameFmt(args[0]))
	}
	return writeOutput(cmd, s.cfg, entity)
}
