package cmd

import (
	"fmt"
	"strconv"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <class> [paths...]",
	Short: "Construct and destroy objects through the sandbox executor",
	Long: `Construct an object (or an array with --count) of a class with its default
constructor, then destroy it again, reporting every snippet sent to the
executor and its result.

With --at the object is built in caller-provided memory at that address
with placement new and destroyed with an explicit destructor call. Arrays
built in place are left alive: placement delete of an array is not
supported.

Snippets are also appended to the journal when .clsinfo exists.

Examples:
  clsinfo new geo::Point include/
  clsinfo new geo::Point --count 4 include/
  clsinfo new geo::Point --at 0x100000 include/
  clsinfo new geo::Point --keep include/      # leave it alive`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

var (
	newCount int
	newAt    string
	newKeep  bool
)

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().IntVar(&newCount, "count", 1, "Number of elements; more than 1 builds an array")
	newCmd.Flags().StringVar(&newAt, "at", "", "Arena address for placement new (decimal or 0x hex)")
	newCmd.Flags().BoolVar(&newKeep, "keep", false, "Do not destroy the object afterwards")
}

func runNew(cmd *cobra.Command, args []string) error {
	var arena uintptr
	if newAt != "" {
		at, err := strconv.ParseUint(newAt, 0, 64)
		if err != nil || at == 0 {
			return fmt.Errorf("invalid arena address %q", newAt)
		}
		arena = uintptr(at)
	}
	if newCount < 1 {
		return fmt.Errorf("count must be at least 1, got %d", newCount)
	}

	s, err := openSession(cmd, args[1:], true)
	if err != nil {
		return err
	}
	defer s.Close()

	ci := classinfo.ForName(s.res, s.box, s.rep, args[0])
	if !ci.IsLoaded() {
		return fmt.Errorf("no loaded class named %s", nameFmt(args[0]))
	}
	if !ci.HasDefaultConstructor() {
		return fmt.Errorf("%s has no accessible default constructor", nameFmt(ci.FullName()))
	}

	array := newCount > 1
	var addr uintptr
	switch {
	case arena != 0 && array:
		addr = ci.NewArrayAt(newCount, arena)
	case arena != 0:
		addr = ci.NewAt(arena)
	case array:
		addr = ci.NewArray(newCount)
	default:
		addr = ci.New()
	}

	if addr != 0 && !newKeep {
		switch {
		case arena != 0 && array:
			// left alive
		case arena != 0:
			ci.Destruct(addr)
		case array:
			ci.DeleteArray(addr, false)
		default:
			ci.Delete(addr)
		}
	}

	out := &output.FactoryOutput{
		Class:    ci.FullName(),
		Address:  uint64(addr),
		Snippets: s.log.snippets,
		Live:     output.NewObjectOutputs(s.box.Objects()),
	}
	if err := writeOutput(cmd, s.cfg, out); err != nil {
		return err
	}
	if addr == 0 {
		return fmt.Errorf("the executor could not construct %s", nameFmt(ci.FullName()))
	}
	return nil
}
