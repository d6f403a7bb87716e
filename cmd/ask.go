package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codewizard/rag"
	"codewizard/streamers/cli"
)

var askConfigPath string
var askRender bool

var askCmd = &cobra.Command{
	Use:   "ask <url> [url...]",
	Short: "Ask questions about web pages",
	Long: `Fetch and index the given URLs, then answer questions about their
content. Answers are grounded in the most relevant passages of the
indexed pages.

Use --render for JavaScript-heavy pages; it loads them in a headless
browser before extracting text (requires Playwright browsers installed).`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(askConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		provider, modelName, err := buildProvider(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		embedKey, err := findOpenAIKey(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		events := newEventLogger(cfg.Logging, io.Discard)
		defer events.Close()

		timeout := time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second
		var fetcher rag.Fetcher
		if askRender || cfg.Scraper.Render {
			rendered := rag.NewRenderedFetcher(timeout, cfg.Scraper.UserAgent)
			defer rendered.Close()
			fetcher = rendered
		} else {
			fetcher = rag.NewHTTPFetcher(timeout, cfg.Scraper.UserAgent)
		}

		assistant, err := rag.NewAssistant(rag.AssistantOptions{
			Provider:     provider,
			Model:        modelName,
			Fetcher:      fetcher,
			Embedder:     rag.NewOpenAIEmbedder(embedKey, cfg.Scraper.EmbeddingModel),
			Events:       events,
			ChunkSize:    cfg.Scraper.ChunkSize,
			ChunkOverlap: cfg.Scraper.ChunkOverlap,
			TopK:         cfg.Scraper.TopK,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		streamer := cli.NewChatHandler()

		for _, url := range args {
			streamer.Notice(fmt.Sprintf("Indexing %s ...", url))
			n, err := assistant.IndexURL(ctx, url)
			if err != nil {
				streamer.Error(err)
				continue
			}
			streamer.Notice(fmt.Sprintf("Indexed %d passages from %s", n, url))
		}
		if assistant.Indexed() == 0 {
			fmt.Fprintln(os.Stderr, "Error: nothing indexed")
			os.Exit(1)
		}

		streamer.Notice("Ask away. Type 'exit' or 'quit' to leave.")
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

			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				streamer.Goodbye()
				break
			}

			streamer.Thinking()
			_, err = assistant.AnswerStream(ctx, input, streamer.PublishAnswerChunk)
			streamer.FinishAnswer()
			if err != nil {
				streamer.Error(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askConfigPath, "config", "c", ".", "Path to config file or directory")
	askCmd.Flags().BoolVarP(&askRender, "render", "r", false, "Render pages in a headless browser before extracting")
}
