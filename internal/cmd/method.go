package cmd

import (
	"fmt"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/spf13/cobra"
)

// methodCmd represents the method command
var methodCmd = &cobra.Command{
	Use:   "method <class> <name> [paths...]",
	Short: "Resolve a method by prototype or argument expressions",
	Long: `Resolve a member function (or, for a namespace, a free function) the way
a call would: by a parameter type list, allowing standard conversions unless
--exact is given, or by a list of argument expressions with --args.

For a non-static member declared in a base class the result carries the
offset that converts a pointer to <class> into a pointer to that base.

Examples:
  clsinfo method geo::Circle area include/
  clsinfo method C fb --proto int include/
  clsinfo method C fb --args '(short)1' include/
  clsinfo method Str compare --proto 'const char*' --exact --const include/`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMethod,
}

var (
	methodProto string
	methodArgs  string
	methodExact bool
	methodConst bool
)

func init() {
	rootCmd.AddCommand(methodCmd)
	methodCmd.Flags().StringVar(&methodProto, "proto", "", "Comma separated parameter types")
	methodCmd.Flags().StringVar(&methodArgs, "args", "", "Argument expressions; overrides --proto")
	methodCmd.Flags().BoolVar(&methodExact, "exact", false, "Require exact parameter types")
	methodCmd.Flags().BoolVar(&methodConst, "const", false, "Look up on a const object")
}

func runMethod(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[2:], false)
	if err != nil {
		return err
	}
	defer s.Close()

	ci := classinfo.ForName(s.res, s.box, s.rep, args[0])
	if !ci.IsLoaded() {
		return fmt.Errorf("no loaded class or namespace named %s", nameFmt(args[0]))
	}

	var (
		mi     classinfo.MethodInfo
		offset int64
	)
	switch {
	case cmd.Flags().Changed("args"):
		mi, offset = ci.GetMethodWithArgs(args[1], methodArgs, methodConst)
	case methodExact:
		mi, offset = ci.GetMethod(args[1], methodProto, methodConst, classinfo.ExactMatch)
	default:
		mi, offset = ci.GetMethod(args[1], methodProto, methodConst, classinfo.ConversionMatch)
	}
	return writeOutput(cmd, s.cfg, output.NewMethodOutput(ci.FullName(), args[1], mi, offset))
}
