package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all configuration
type Config struct {
	Models    []Model    `hcl:"model,block"`
	Variables []Variable `hcl:"variable,block"`

	Logging *LoggingConfig `hcl:"logging,block"`
	Storage *StorageConfig `hcl:"storage,block"`
	Scraper *ScraperConfig `hcl:"scraper,block"`
	Wizard  *WizardConfig  `hcl:"wizard,block"`

	// ResolvedVars holds the resolved variable values for runtime use
	ResolvedVars map[string]cty.Value `hcl:"-"`
}

func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadAndValidate loads the config and validates all components
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all config components are valid
func (c *Config) Validate() error {
	for _, m := range c.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("model '%s': %w", m.Name, err)
		}
	}

	for _, v := range c.Variables {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variable '%s': %w", v.Name, err)
		}
	}

	if c.Wizard != nil {
		if err := c.Wizard.Validate(c.Models); err != nil {
			return fmt.Errorf("wizard: %w", err)
		}
	}

	if c.Scraper != nil {
		if err := c.Scraper.Validate(); err != nil {
			return fmt.Errorf("scraper: %w", err)
		}
	}

	return nil
}

func LoadFile(filename string) (*Config, error) {
	return loadFromFiles([]string{filename})
}

func LoadDir(dir string) (*Config, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.hcl"))
	if err != nil {
		return nil, err
	}
	return loadFromFiles(files)
}

// parsedBlocks holds all blocks extracted from a file in one pass
type parsedBlocks struct {
	Variables []*hcl.Block
	Models    []*hcl.Block
	Logging   []*hcl.Block
	Storage   []*hcl.Block
	Scraper   []*hcl.Block
	Wizard    []*hcl.Block
}

// loadFromFiles implements staged loading: variables → models → app blocks
func loadFromFiles(files []string) (*Config, error) {
	// Parse all files and extract all block types in a single pass
	parser := hclparse.NewParser()
	var allParsedBlocks []parsedBlocks

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("[1] parse %s: %w", file, diags)
		}

		// Extract all known block types in one PartialContent call
		content, _, diags := hclFile.Body.PartialContent(&hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{
				{Type: "variable", LabelNames: []string{"name"}},
				{Type: "model", LabelNames: []string{"name"}},
				{Type: "logging"},
				{Type: "storage"},
				{Type: "scraper"},
				{Type: "wizard"},
			},
		})
		if diags.HasErrors() {
			return nil, fmt.Errorf("[2] partial content %s: %w", file, diags)
		}

		var pb parsedBlocks
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				pb.Variables = append(pb.Variables, block)
			case "model":
				pb.Models = append(pb.Models, block)
			case "logging":
				pb.Logging = append(pb.Logging, block)
			case "storage":
				pb.Storage = append(pb.Storage, block)
			case "scraper":
				pb.Scraper = append(pb.Scraper, block)
			case "wizard":
				pb.Wizard = append(pb.Wizard, block)
			}
		}
		allParsedBlocks = append(allParsedBlocks, pb)
	}

	// Stage 1: Load variables (no context needed)
	var allVars []Variable
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Variables {
			var v Variable
			v.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, nil, &v)
			if diags.HasErrors() {
				return nil, fmt.Errorf("[3] decode variable %s: %w", v.Name, diags)
			}
			allVars = append(allVars, v)
		}
	}

	// Build vars context
	varsCtx, resolvedVars := buildVarsContext(allVars)

	// Stage 2: Load models (with vars context)
	var allModels []Model
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Models {
			var m Model
			m.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, varsCtx, &m)
			if diags.HasErrors() {
				return nil, diags
			}
			allModels = append(allModels, m)
		}
	}

	// Build models context (add to vars context)
	modelsCtx := buildModelsContext(varsCtx, allModels)

	// Stage 3: Load singleton app blocks (with vars + models context)
	cfg := &Config{
		Variables:    allVars,
		Models:       allModels,
		ResolvedVars: resolvedVars,
	}

	for _, pb := range allParsedBlocks {
		for _, block := range pb.Logging {
			if cfg.Logging != nil {
				return nil, fmt.Errorf("duplicate logging block at %s", block.DefRange)
			}
			var lc LoggingConfig
			diags := gohcl.DecodeBody(block.Body, modelsCtx, &lc)
			if diags.HasErrors() {
				return nil, diags
			}
			cfg.Logging = &lc
		}
		for _, block := range pb.Storage {
			if cfg.Storage != nil {
				return nil, fmt.Errorf("duplicate storage block at %s", block.DefRange)
			}
			var sc StorageConfig
			diags := gohcl.DecodeBody(block.Body, modelsCtx, &sc)
			if diags.HasErrors() {
				return nil, diags
			}
			cfg.Storage = &sc
		}
		for _, block := range pb.Scraper {
			if cfg.Scraper != nil {
				return nil, fmt.Errorf("duplicate scraper block at %s", block.DefRange)
			}
			var sc ScraperConfig
			diags := gohcl.DecodeBody(block.Body, modelsCtx, &sc)
			if diags.HasErrors() {
				return nil, diags
			}
			cfg.Scraper = &sc
		}
		for _, block := range pb.Wizard {
			if cfg.Wizard != nil {
				return nil, fmt.Errorf("duplicate wizard block at %s", block.DefRange)
			}
			var wc WizardConfig
			diags := gohcl.DecodeBody(block.Body, modelsCtx, &wc)
			if diags.HasErrors() {
				return nil, diags
			}
			cfg.Wizard = &wc
		}
	}

	return cfg, nil
}

// buildVarsContext creates context with just vars
func buildVarsContext(vars []Variable) (*hcl.EvalContext, map[string]cty.Value) {
	varsMap := make(map[string]cty.Value)
	fileVars, _ := ReadVarsFile()
	for _, v := range vars {
		if val, ok := fileVars[v.Name]; ok {
			varsMap[v.Name] = cty.StringVal(val)
		} else if v.Default != "" {
			varsMap[v.Name] = cty.StringVal(v.Default)
		} else {
			varsMap[v.Name] = cty.StringVal("")
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"vars": cty.ObjectVal(varsMap),
		},
	}, varsMap
}

// buildModelsContext adds models to existing context
func buildModelsContext(ctx *hcl.EvalContext, models []Model) *hcl.EvalContext {
	modelsMap := make(map[string]cty.Value)
	for _, m := range models {
		providerModels := make(map[string]cty.Value)
		for _, modelKey := range m.AllowedModels {
			providerModels[modelKey] = cty.StringVal(modelKey)
		}
		modelsMap[m.Name] = cty.ObjectVal(providerModels)
	}

	// Copy existing vars and add models
	newVars := make(map[string]cty.Value)
	for k, v := range ctx.Variables {
		newVars[k] = v
	}
	newVars["models"] = cty.ObjectVal(modelsMap)

	return &hcl.EvalContext{
		Variables: newVars,
	}
}

// FindModel returns the model block whose allowed_models contains the
// given model key, along with the provider's wire-format model name.
func (c *Config) FindModel(modelKey string) (*Model, string, error) {
	for i := range c.Models {
		m := &c.Models[i]
		for _, allowed := range m.AllowedModels {
			if allowed == modelKey {
				name, ok := SupportedModels[m.Provider][modelKey]
				if !ok {
					return nil, "", fmt.Errorf("model '%s' not supported for provider '%s'", modelKey, m.Provider)
				}
				return m, name, nil
			}
		}
	}
	return nil, "", fmt.Errorf("no model block allows '%s'", modelKey)
}
