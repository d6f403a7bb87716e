package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codewizard/store"
	"codewizard/streamers/cli"
	"codewizard/wizard"
)

var configPath string
var codeFile string
var generalMode bool
var debugMode bool
var userName string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Analyze code and chat about it",
	Long: `Start an interactive session: paste code (or load it with --file)
for a structured analysis, then ask follow-up questions about it.

In-chat commands: 'clear' drops the conversation, 'stats' shows session
counters, 'exit' or 'quit' ends the session.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		provider, modelName, err := buildProvider(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		events := newEventLogger(cfg.Logging, io.Discard)
		defer events.Close()

		stores, err := store.NewBundle(cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer stores.Close()

		streamer := cli.NewChatHandler()

		name := strings.TrimSpace(userName)
		for name == "" {
			streamer.Notice("What's your name?")
			input, err := streamer.AwaitClientAnswer()
			if err != nil {
				streamer.Error(err)
				os.Exit(1)
			}
			name = strings.TrimSpace(input)
		}

		w, err := wizard.New(wizard.Options{
			Provider:    provider,
			Model:       modelName,
			Temperature: cfg.Wizard.Temperature,
			MaxTokens:   cfg.Wizard.MaxTokens,
			UserName:    name,
			Events:      events,
			Store:       stores,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		if generalMode {
			w.SetCodeContext(false)
		}
		if debugMode {
			if err := w.EnableDebug("debug.txt"); err != nil {
				fmt.Fprintf(os.Stderr, "Error enabling debug log: %v\n", err)
				os.Exit(1)
			}
		}

		streamer.Welcome(name, cfg.Wizard.Model)

		// Code submission: --file wins, otherwise prompt for a paste.
		// Skipped in general mode, where there is nothing to analyze.
		code := ""
		if codeFile != "" {
			data, err := os.ReadFile(codeFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", codeFile, err)
				os.Exit(1)
			}
			code = string(data)
		} else if !generalMode {
			code, err = streamer.AwaitCode()
			if err != nil {
				streamer.Error(err)
				os.Exit(1)
			}
		}

		if strings.TrimSpace(code) != "" {
			streamer.Thinking()
			analysis, err := w.AnalyzeCode(ctx, code)
			if err != nil {
				streamer.FinishAnswer()
				streamer.Error(err)
			} else {
				streamer.PublishAnswerChunk(analysis)
				streamer.FinishAnswer()
			}
		}

		for {
			input, err := streamer.AwaitClientAnswer()
			if err != nil {
				if err == io.EOF {
					streamer.Goodbye()
					break
				}
				streamer.Error(err)
				break
			}

			switch input {
			case "":
				continue
			case "exit", "quit":
				streamer.Goodbye()
				return
			case "clear":
				w.ClearChat()
				streamer.Notice("Conversation cleared.")
				continue
			case "stats":
				stats := w.Stats()
				streamer.Notice(fmt.Sprintf("Session %s: %d analyses, %d questions, %d messages",
					stats.SessionID, stats.CodeAnalyses, stats.QuestionsAsked, stats.Messages))
				continue
			}

			streamer.Thinking()
			_, err = w.AskStream(ctx, input, streamer.PublishAnswerChunk)
			streamer.FinishAnswer()
			if err != nil {
				streamer.Error(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&configPath, "config", "c", ".", "Path to config file or directory")
	chatCmd.Flags().StringVarP(&codeFile, "file", "f", "", "Read the code to analyze from a file")
	chatCmd.Flags().BoolVarP(&generalMode, "general", "g", false, "Answer questions without code context")
	chatCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "Log full LLM messages to debug.txt")
	chatCmd.Flags().StringVarP(&userName, "name", "n", "", "Your name (prompted if not set)")
}
