package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// PromptConfig overrides the model instructions. Empty fields keep the built-in text.
type PromptConfig struct {
	Extraction ExtractionPrompt `toml:"extraction"`
	Memo       MemoPrompt       `toml:"memo"`
}

type ExtractionPrompt struct {
	Instruction string `toml:"instruction"`
}

type MemoPrompt struct {
	Instruction         string `toml:"instruction"`
	CitationInstruction string `toml:"citation_instruction"`
}

// Prompt holds the CLI flag of the prompt configuration file
type Prompt struct {
	path string
}

// Flags returns CLI flags for prompt configuration
func (p *Prompt) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt-config",
			Usage:       "TOML file overriding the extraction and memo instructions",
			Sources:     cli.EnvVars("DECKMEMO_PROMPT_CONFIG"),
			Destination: &p.path,
		},
	}
}

// Configure loads the prompt file. Without a path it returns an empty config.
func (p *Prompt) Configure() (*PromptConfig, error) {
	if p.path == "" {
		return &PromptConfig{}, nil
	}
	return LoadPromptConfig(p.path)
}

// LoadPromptConfig parses a TOML prompt file
func LoadPromptConfig(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "prompt config file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read prompt config", goerr.V(ConfigPathKey, path))
	}

	var cfg PromptConfig
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse prompt config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	return &cfg, nil
}
