package cmd

import (
	"context"
	"fmt"
	"io"

	"codewizard/config"
	"codewizard/eventlog"
	"codewizard/llm"
)

// loadConfig loads and validates the config, then applies defaults to
// the optional app blocks so callers never see nil.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadAndValidate(path)
	if err != nil {
		return nil, err
	}

	if cfg.Logging == nil {
		cfg.Logging = &config.LoggingConfig{}
	}
	cfg.Logging.Defaults()

	if cfg.Storage == nil {
		cfg.Storage = &config.StorageConfig{}
	}
	cfg.Storage.Defaults()

	if cfg.Scraper == nil {
		cfg.Scraper = &config.ScraperConfig{}
	}
	cfg.Scraper.Defaults()

	if cfg.Wizard != nil {
		cfg.Wizard.Defaults()
	}

	return cfg, nil
}

// newEventLogger builds the event log from config. Console mirroring
// goes to the given writer; interactive commands pass io.Discard so the
// terminal stays clean.
func newEventLogger(lc *config.LoggingConfig, console io.Writer) *eventlog.Logger {
	return eventlog.New(eventlog.Options{
		AppName:     lc.AppName,
		Dir:         lc.Dir,
		MaxBytes:    lc.MaxBytes,
		BackupCount: lc.BackupCount,
		MinLevel:    eventlog.ParseLevel(lc.Level),
		Console:     console,
	})
}

// buildProvider resolves the wizard's configured model to a provider
// client and the provider's wire-format model name.
func buildProvider(ctx context.Context, cfg *config.Config) (llm.Provider, string, error) {
	if cfg.Wizard == nil {
		return nil, "", fmt.Errorf("no wizard block in config. Add a wizard block with a model")
	}

	m, wireName, err := cfg.FindModel(cfg.Wizard.Model)
	if err != nil {
		return nil, "", err
	}

	provider, err := llm.NewProvider(ctx, string(m.Provider), m.APIKey)
	if err != nil {
		return nil, "", err
	}
	return provider, wireName, nil
}

// findOpenAIKey locates an OpenAI API key for the embeddings endpoint.
func findOpenAIKey(cfg *config.Config) (string, error) {
	for _, m := range cfg.Models {
		if m.Provider == config.ProviderOpenAI && m.APIKey != "" {
			return m.APIKey, nil
		}
	}
	return "", fmt.Errorf("no openai model block with an api_key; embeddings require one")
}
