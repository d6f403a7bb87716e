package config

import "fmt"

// WizardConfig selects the model and sampling settings for chat sessions.
type WizardConfig struct {
	Model       string  `hcl:"model"` // model key, e.g. models.openai.gpt_4o
	Temperature float64 `hcl:"temperature,optional"`
	MaxTokens   int     `hcl:"max_tokens,optional"`
}

// Defaults fills in default values for unset fields
func (w *WizardConfig) Defaults() {
	if w.Temperature == 0 {
		w.Temperature = 0.7
	}
}

// Validate checks the configured model against the model blocks.
func (w *WizardConfig) Validate(models []Model) error {
	if w.Model == "" {
		return fmt.Errorf("model is required")
	}
	for _, m := range models {
		for _, allowed := range m.AllowedModels {
			if allowed == w.Model {
				return nil
			}
		}
	}
	return fmt.Errorf("model '%s' is not allowed by any model block", w.Model)
}
