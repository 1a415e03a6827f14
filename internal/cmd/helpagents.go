package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// helpAgentsCmd represents the help-agents command
var helpAgentsCmd = &cobra.Command{
	Use:   "help-agents",
	Short: "Output agent-optimized command reference",
	Long: `Output a concise, token-efficient command reference for AI agents.

Examples:
  clsinfo help-agents                # Markdown output (default)
  clsinfo help-agents --format json  # JSON output for parsing`,
	Args: cobra.NoArgs,
	RunE: runHelpAgents,
}

func init() {
	rootCmd.AddCommand(helpAgentsCmd)
}

func runHelpAgents(cmd *cobra.Command, args []string) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(agentReference())
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), agentReferenceMarkdown)
	return err
}

const agentReferenceMarkdown = `# clsinfo Command Reference for AI Agents

Answers reflection questions about C++ headers without compiling them.
Every command takes header files or directories as trailing arguments
(default: the current directory).

## Quick Start

` + "```bash" + `
clsinfo list include/                        # What classes exist?
clsinfo show geo::Circle include/            # Kind, size, bases, methods
clsinfo method geo::Circle area include/     # Which overload, which this-offset?
clsinfo new geo::Point include/              # Can it be built and destroyed?
` + "```" + `

## Commands

| Need | Command |
|------|---------|
| Enumerate entities | ` + "`clsinfo list --scope ns:: --limit N`" + ` |
| Entity properties | ` + "`clsinfo show <name> [--brief]`" + ` |
| Resolve by types | ` + "`clsinfo method <class> <name> --proto 'int, const char*' [--exact] [--const]`" + ` |
| Resolve by args | ` + "`clsinfo method <class> <name> --args '1, 2.0f'`" + ` |
| Construct objects | ` + "`clsinfo new <class> [--count N] [--at ADDR] [--keep]`" + ` |
| Executed snippets | ` + "`clsinfo journal [--limit N] [--session ID] [--stats] [--clear]`" + ` |
| MCP integration | ` + "`clsinfo serve [--tools list,show,method]`" + ` |

## Notes

- Names are C++ qualified names; typedefs resolve to their target and
  template-ids such as std::pair<int,float> are instantiated on demand.
- Offsets of inherited methods are the pointer adjustment to the base.
- Output is YAML unless --format json is given.
`

func agentReference() map[string]any {
	return map[string]any{
		"version": Version,
		"purpose": "Reflection queries over C++ headers: entities, properties, layout, method resolution, construction.",
		"commands": map[string]any{
			"list": map[string]any{
				"purpose": "Enumerate namespaces, classes, structs, unions and enums in declaration order",
				"usage":   "clsinfo list [paths...]",
				"flags":   []string{"--scope", "--limit"},
			},
			"show": map[string]any{
				"purpose": "Property bits, size, bases with offsets, and methods of one entity",
				"usage":   "clsinfo show <name> [paths...]",
				"flags":   []string{"--brief"},
			},
			"method": map[string]any{
				"purpose": "Resolve a method by prototype or argument expressions",
				"usage":   "clsinfo method <class> <name> [paths...]",
				"flags":   []string{"--proto", "--args", "--exact", "--const"},
			},
			"new": map[string]any{
				"purpose": "Construct and destroy objects through the sandbox executor",
				"usage":   "clsinfo new <class> [paths...]",
				"flags":   []string{"--count", "--at", "--keep"},
			},
			"journal": map[string]any{
				"purpose": "Snippets run by the executor, newest first",
				"usage":   "clsinfo journal",
				"flags":   []string{"--limit", "--session", "--stats", "--clear"},
			},
			"serve": map[string]any{
				"purpose": "MCP server over stdio",
				"usage":   "clsinfo serve [paths...]",
				"flags":   []string{"--tools", "--timeout", "--status", "--stop", "--list-tools"},
			},
		},
	}
}
