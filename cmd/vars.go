package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"codewizard/config"

	"github.com/spf13/cobra"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Manage variable overrides",
	Long: `Manage the variable overrides in ~/.codewizard/vars.txt.

Values set here take precedence over variable defaults declared in
config files, which keeps API keys out of the config itself.`,
}

var varsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all overrides",
	Run: func(cmd *cobra.Command, args []string) {
		vars := mustReadVars()
		if len(vars) == 0 {
			fmt.Println("No variables set")
			return
		}

		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%s=%s\n", name, displayValue(name, vars[name]))
		}
	},
}

var varsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one override",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value, ok := mustReadVars()[args[0]]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: variable '%s' not found\n", args[0])
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

var varsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set an override",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		vars := mustReadVars()
		vars[args[0]] = args[1]
		mustWriteVars(vars)
		fmt.Printf("Variable '%s' set\n", args[0])
	},
}

var varsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an override",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vars := mustReadVars()
		if _, ok := vars[args[0]]; !ok {
			fmt.Fprintf(os.Stderr, "Error: variable '%s' not found\n", args[0])
			os.Exit(1)
		}
		delete(vars, args[0])
		mustWriteVars(vars)
		fmt.Printf("Variable '%s' deleted\n", args[0])
	},
}

func mustReadVars() map[string]string {
	vars, err := config.ReadVarsFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return vars
}

func mustWriteVars(vars map[string]string) {
	if err := config.WriteVarsFile(vars); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// displayValue masks anything whose name marks it as a secret.
func displayValue(name, value string) string {
	for _, suffix := range []string{"_key", "_token", "_secret", "_password"} {
		if strings.HasSuffix(name, suffix) {
			return "********"
		}
	}
	return value
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.AddCommand(varsListCmd)
	varsCmd.AddCommand(varsGetCmd)
	varsCmd.AddCommand(varsSetCmd)
	varsCmd.AddCommand(varsDeleteCmd)
}
