package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codewizard",
	Short: "Code Wizard is an LLM-powered code analysis chat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to Code Wizard! Use --help to see available commands.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
