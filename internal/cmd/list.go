package cmd

import (
	"strings"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "Enumerate class-like entities in declaration order",
	Long: `Enumerate every namespace, class, struct, union and enum of the loaded
headers. Nested scopes follow their parent; a namespace reopened in several
places is listed once per block, and only complete definitions of records
appear.

Examples:
  clsinfo list include/               # Everything under include/
  clsinfo list --scope geo:: include/ # Only entities inside geo
  clsinfo list --limit 20 a.h b.h     # First 20 entities of two headers`,
	RunE: runList,
}

var (
	listScope string
	listLimit int
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listScope, "scope", "", "Only entities whose qualified name starts with this prefix")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of entities (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	list := &output.ListOutput{Entities: []*output.EntityOutput{}}
	ci := classinfo.New(s.res, s.box, s.rep)
	for ci.Next() {
		entity := output.NewEntityOutput(ci, false)
		if entity == nil || !strings.HasPrefix(entity.Name, listScope) {
			continue
		}
		list.Entities = append(list.Entities, entity)
		if listLimit > 0 && len(list.Entities) >= listLimit {
			break
		}
	}
	list.Count = len(list.Entities)

	return writeOutput(cmd, s.cfg, list)
}
