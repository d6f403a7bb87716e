package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"codewizard/store"
	"codewizard/webchat"
)

var serveConfigPath string
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over WebSocket",
	Long: `Start a long-running server that exposes the code analysis chat over
a WebSocket endpoint at /ws. Each connection gets its own session:
clients log in with a name, submit code for analysis, and ask follow-up
questions with streamed answers.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := hclog.New(&hclog.LoggerOptions{
			Name:  "codewizard",
			Level: hclog.Info,
		})

		cfg, err := loadConfig(serveConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, modelName, err := buildProvider(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		events := newEventLogger(cfg.Logging, os.Stderr)
		defer events.Close()

		stores, err := store.NewBundle(cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer stores.Close()

		srv, err := webchat.NewServer(webchat.Options{
			Provider:    provider,
			Model:       modelName,
			Temperature: cfg.Wizard.Temperature,
			MaxTokens:   cfg.Wizard.MaxTokens,
			Events:      events,
			Store:       stores,
			Logger:      log,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
		fmt.Println("\nShutting down...")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", ".", "Path to config file or directory")
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "Address to listen on")
}
