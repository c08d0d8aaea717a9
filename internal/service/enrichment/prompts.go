package enrichment

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"belongings/internal/domain/models/inventory"
)

//go:embed prompts.yaml
var promptsFile []byte

// Prompt is one system/user prompt pair.
type Prompt struct {
	MaxTokens int64  `yaml:"max_tokens"`
	System    string `yaml:"system"`
	User      string `yaml:"user"`
}

// Prompts holds every prompt the enrichers send.
type Prompts struct {
	Recognize Prompt `yaml:"recognize"`
	Price     Prompt `yaml:"price"`

	priceUser *template.Template
}

// priceInput is the data the price prompt template renders.
type priceInput struct {
	inventory.PriceQuery
	Results []SearchResult
}

// LoadPrompts parses the embedded prompt file.
func LoadPrompts() (*Prompts, error) {
	return parsePrompts(promptsFile)
}

func parsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if strings.TrimSpace(p.Recognize.System) == "" || strings.TrimSpace(p.Price.System) == "" {
		return nil, fmt.Errorf("prompts: recognize and price system prompts are required")
	}
	if p.Recognize.MaxTokens <= 0 {
		p.Recognize.MaxTokens = 1024
	}
	if p.Price.MaxTokens <= 0 {
		p.Price.MaxTokens = 1024
	}

	tmpl, err := template.New("price").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(p.Price.User)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price prompt: %w", err)
	}
	p.priceUser = tmpl

	return &p, nil
}

// RenderPrice fills the price prompt with the query and search results.
func (p *Prompts) RenderPrice(query *inventory.PriceQuery, results []SearchResult) (string, error) {
	var b strings.Builder
	if err := p.priceUser.Execute(&b, priceInput{PriceQuery: *query, Results: results}); err != nil {
		return "", fmt.Errorf("render price prompt: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
