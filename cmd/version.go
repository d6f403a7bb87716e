package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Long = fmt.Sprintf(`Code Wizard %s

Chat-based code analysis backed by LLM providers.

Define models and app settings in HCL configuration files, then paste
code for a structured analysis and ask follow-up questions about it.

Get started:
  codewizard verify <path>  Validate your configuration
  codewizard chat           Analyze code and chat about it
  codewizard ask <url>...   Ask questions about web pages
  codewizard serve          Serve the chat over WebSocket`, Version)
}
