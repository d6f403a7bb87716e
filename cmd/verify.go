package cmd

import (
	"fmt"
	"os"

	"codewizard/config"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify that the configuration is valid",
	Long:  `Verify parses and validates the HCL configuration files. Path can be a file or directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath := args[0]
		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Check for unset variables
		var warnings []string
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if resolved == "" && v.Default == "" {
				warnings = append(warnings, fmt.Sprintf("variable '%s' has no default and no value set", v.Name))
			}
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Found %d model(s)\n", len(cfg.Models))
		for _, m := range cfg.Models {
			fmt.Printf("  - %s (provider: %s, models: %v)\n", m.Name, m.Provider, m.AllowedModels)
		}
		fmt.Printf("Found %d variable(s)\n", len(cfg.Variables))
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if v.Secret {
				if resolved != "" {
					fmt.Printf("  - %s (secret, set)\n", v.Name)
				} else {
					fmt.Printf("  - %s (secret, not set)\n", v.Name)
				}
			} else {
				fmt.Printf("  - %s = %q\n", v.Name, resolved)
			}
		}

		if cfg.Wizard != nil {
			fmt.Printf("Wizard: model %s (temperature: %g, max_tokens: %d)\n",
				cfg.Wizard.Model, cfg.Wizard.Temperature, cfg.Wizard.MaxTokens)
		} else {
			warnings = append(warnings, "no wizard block; 'chat', 'ask' and 'serve' need one")
		}

		if cfg.Storage != nil {
			fmt.Printf("Storage: %s backend\n", cfg.Storage.Backend)
		}
		if cfg.Logging != nil {
			fmt.Printf("Logging: %s in %s (level: %s)\n", cfg.Logging.AppName, cfg.Logging.Dir, cfg.Logging.Level)
		}
		if cfg.Scraper != nil {
			fmt.Printf("Scraper: chunks of %d bytes, overlap %d, render: %v\n",
				cfg.Scraper.ChunkSize, cfg.Scraper.ChunkOverlap, cfg.Scraper.Render)
		}

		if len(warnings) > 0 {
			fmt.Printf("\nWarnings:\n")
			for _, w := range warnings {
				fmt.Printf("  - %s\n", w)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
