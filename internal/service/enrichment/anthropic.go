package enrichment

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"belongings/internal/domain"
	"belongings/internal/domain/models/inventory"
)

// MessageCreator is the slice of the Anthropic client the enrichers use.
// *anthropic.MessageService satisfies it.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// NewMessageCreator builds an Anthropic messages client for apiKey.
func NewMessageCreator(apiKey string) MessageCreator {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &client.Messages
}

// Media types the vision model accepts.
var visionTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AnthropicRecognizer implements Recognizer with a vision-capable Claude model.
type AnthropicRecognizer struct {
	messages MessageCreator
	model    string
	prompts  *Prompts
	logger   *slog.Logger
}

// NewAnthropicRecognizer creates a recognizer.
func NewAnthropicRecognizer(messages MessageCreator, model string, prompts *Prompts, logger *slog.Logger) *AnthropicRecognizer {
	return &AnthropicRecognizer{messages: messages, model: model, prompts: prompts, logger: logger}
}

// Recognize implements Recognizer.
func (r *AnthropicRecognizer) Recognize(ctx context.Context, image []byte, mediaType string) (*inventory.Recognition, error) {
	if !visionTypes[mediaType] {
		return nil, domain.Invalidf("image type %s cannot be recognized; use JPEG, PNG, GIF or WebP", mediaType)
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	text, err := complete(ctx, r.messages, r.model, r.prompts.Recognize,
		anthropic.NewImageBlockBase64(mediaType, encoded),
		anthropic.NewTextBlock(r.prompts.Recognize.User),
	)
	if err != nil {
		return nil, err
	}

	rec, err := parseRecognition(text)
	if err != nil {
		r.logger.Warn("unparseable recognition reply", "error", err, "reply", truncate(text, 300))
		return nil, err
	}
	return rec, nil
}

// AnthropicPriceResearcher implements PriceResearcher: web search results are
// handed to the model, which replies with a JSON estimate.
type AnthropicPriceResearcher struct {
	messages MessageCreator
	search   SearchClient
	model    string
	prompts  *Prompts
	logger   *slog.Logger
}

// NewAnthropicPriceResearcher creates a price researcher. search may be nil,
// in which case the model estimates without web results.
func NewAnthropicPriceResearcher(messages MessageCreator, search SearchClient, model string, prompts *Prompts, logger *slog.Logger) *AnthropicPriceResearcher {
	return &AnthropicPriceResearcher{messages: messages, search: search, model: model, prompts: prompts, logger: logger}
}

// ResearchPrice implements PriceResearcher.
func (p *AnthropicPriceResearcher) ResearchPrice(ctx context.Context, query *inventory.PriceQuery) (*inventory.PriceEstimate, error) {
	var results []SearchResult
	if p.search != nil {
		var err error
		results, err = p.search.Search(ctx, searchQuery(query), 5)
		if err != nil {
			// degrade to an estimate without sources
			p.logger.Warn("price search failed", "error", err, "query", query.Name)
			results = nil
		}
	}

	userPrompt, err := p.prompts.RenderPrice(query, results)
	if err != nil {
		return nil, err
	}

	text, err := complete(ctx, p.messages, p.model, p.prompts.Price, anthropic.NewTextBlock(userPrompt))
	if err != nil {
		return nil, err
	}

	est, err := parsePriceEstimate(text, query.Currency)
	if err != nil {
		p.logger.Warn("unparseable price reply", "error", err, "reply", truncate(text, 300))
		return nil, err
	}
	for _, r := range results {
		est.Sources = append(est.Sources, inventory.PriceSource{Title: r.Title, URL: r.URL})
	}
	return est, nil
}

func searchQuery(q *inventory.PriceQuery) string {
	parts := make([]string, 0, 5)
	for _, s := range []string{q.Brand, q.Model, q.Name} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if q.Condition != "" && q.Condition != inventory.ConditionNew {
		parts = append(parts, "used")
	}
	parts = append(parts, "price")
	return strings.Join(parts, " ")
}

func complete(ctx context.Context, messages MessageCreator, model string, prompt Prompt, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: prompt.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: prompt.System}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	msg, err := messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: anthropic: %v", domain.ErrUpstream, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty model reply", domain.ErrUpstream)
	}
	return b.String(), nil
}
