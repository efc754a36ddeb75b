package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/garyjia/rendicion/internal/domain/receipt"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptConfig holds the prompts and model parameters used by the AI receipt readers
type PromptConfig struct {
	ReceiptReading struct {
		Temperature  float32 `yaml:"temperature"`
		MaxTokens    int     `yaml:"max_tokens"`
		System       string  `yaml:"system"`
		UserTemplate string  `yaml:"user_template"`
	} `yaml:"receipt_reading"`
}

// PromptData is what the user template can reference
type PromptData struct {
	Concepts  []receipt.ConceptEntry
	Countries []string
}

// LoadPrompts loads prompt configuration from a YAML file. An empty path
// returns the bundled prompts.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	data := defaultPrompts
	if promptsPath != "" {
		var err error
		data, err = os.ReadFile(promptsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
	}

	var prompts PromptConfig
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if prompts.ReceiptReading.UserTemplate == "" {
		return nil, fmt.Errorf("receipt_reading.user_template is required")
	}

	return &prompts, nil
}

// DefaultPrompts returns the bundled prompt configuration
func DefaultPrompts() *PromptConfig {
	p, err := LoadPrompts("")
	if err != nil {
		panic(fmt.Sprintf("ai: invalid bundled prompts: %v", err))
	}
	return p
}

// ReceiptPrompt renders the user prompt for a receipt image, listing the
// active concepts of catalog.
func (p *PromptConfig) ReceiptPrompt(catalog *receipt.Catalog) (string, error) {
	countries := make([]string, 0, len(receipt.Countries))
	for _, c := range receipt.Countries {
		countries = append(countries, string(c))
	}
	return renderTemplate(p.ReceiptReading.UserTemplate, PromptData{
		Concepts:  catalog.All(),
		Countries: countries,
	})
}

// renderTemplate renders a template with provided data
func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
