package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// SummaryKind selects the angle of a generated review summary.
type SummaryKind string

const (
	SummaryNeutral  SummaryKind = "neutral"
	SummaryPositive SummaryKind = "positive"
	SummaryNegative SummaryKind = "negative"
)

// IsValidSummaryKind reports whether kind is one of the supported values.
func IsValidSummaryKind(kind SummaryKind) bool {
	switch kind {
	case SummaryNeutral, SummaryPositive, SummaryNegative:
		return true
	}

	return false
}

// TopicSummary is one aspect-level summary within a positive or negative
// breakdown.
type TopicSummary struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

// Summary is the generated answer for a scope. Neutral summaries fill Answer;
// positive and negative summaries fill Topics.
type Summary struct {
	Answer string         `json:"answer,omitempty"`
	Topics []TopicSummary `json:"topics,omitempty"`
}

// Generator produces review summaries with AI.
type Generator struct {
	// Chat is the underlying chatbot.
	Chat            llms.ChatLLM
	temperature     float64
	maxOutputTokens int
}

// NewGenerator creates a new summary generator.
func NewGenerator() (*Generator, error) {
	model := os.Getenv("OPENAI_CONVERSATIONAL_MODEL")
	chat, err := openai.NewChat(openai.WithModel(model))
	if err != nil {
		return nil, err
	}

	return &Generator{
		Chat:            chat,
		temperature:     0,
		maxOutputTokens: 1000,
	}, nil
}

const neutralPrompt = `You are an assistant that MUST generate a neutral product summary based on customer reviews.

IMPORTANT RULES (STRICT):
- Reviews ARE PROVIDED in the context
- You MUST generate a summary
- You are NOT allowed to say that reviews are missing or insufficient
- Do NOT refuse the task

TASK:
- Read the customer reviews
- Identify recurring points such as quality, performance, value, compatibility, or usability
- Combine them into ONE concise paragraph starting with "Customers say..."

Return ONLY valid JSON in this format:
{"summary": "Customers say ..."}`

const positivePrompt = `You are an AI assistant that analyzes customer reviews and produces topic-based POSITIVE summaries.

RULES:
- Use ONLY the provided reviews
- Focus ONLY on positive feedback and ignore negative opinions
- Generate EXACTLY 4 distinct topics covering meaningful product aspects
- Do NOT repeat similar topics

Return ONLY valid JSON in this format:
{"topics": [{"topic": "Topic Name", "summary": "Customers say %v ..."}]}`

const negativePrompt = `You are an AI assistant that analyzes customer reviews and produces topic-based NEGATIVE summaries.

RULES:
- Use ONLY the provided reviews
- Focus ONLY on complaints and issues and ignore positive feedback
- Generate EXACTLY 4 distinct topics
- Do NOT exaggerate problems

Return ONLY valid JSON in this format:
{"topics": [{"topic": "Topic Name", "summary": "Customers say %v ..."}]}`

// Summarize generates a summary of the given kind from review texts. The
// optional question steers positive and negative summaries; extraContext is
// appended to the review context when present (e.g. product page text).
func (g *Generator) Summarize(ctx context.Context, kind SummaryKind, productName, question string, reviews []string, extraContext string) (*Summary, error) {
	var system string
	switch kind {
	case SummaryPositive:
		system = fmt.Sprintf(positivePrompt, productName)
	case SummaryNegative:
		system = fmt.Sprintf(negativePrompt, productName)
	default:
		system = neutralPrompt
	}

	var reviewContext string
	for i, review := range reviews {
		reviewContext += fmt.Sprintf("Review %v: %v\n", i+1, review)
	}
	if extraContext != "" {
		reviewContext += fmt.Sprintf("\nProduct page:\n%v\n", extraContext)
	}

	input := []schema.ChatMessage{
		schema.SystemChatMessage{Text: system},
		schema.HumanChatMessage{
			Text: fmt.Sprintf("Here are the customer reviews for %v:\n%v", productName, reviewContext),
		},
	}
	if question != "" {
		input = append(input, schema.HumanChatMessage{Text: question})
	}

	res, err := g.Chat.Call(ctx, input, llms.WithTemperature(g.temperature), llms.WithMaxTokens(g.maxOutputTokens))
	if err != nil {
		return nil, err
	}

	return parseSummary(kind, res)
}

// parseSummary is the strict parse step for the model's JSON output. Any
// shape other than the expected one is an error, never a partial result.
func parseSummary(kind SummaryKind, raw string) (*Summary, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	if kind == SummaryNeutral {
		var out struct {
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, err
		}
		if out.Summary == "" {
			return nil, fmt.Errorf("model output missing summary")
		}

		return &Summary{Answer: out.Summary}, nil
	}

	var out struct {
		Topics []TopicSummary `json:"topics"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, err
	}
	if len(out.Topics) == 0 {
		return nil, fmt.Errorf("model output missing topics")
	}

	return &Summary{Topics: out.Topics}, nil
}

// extractJSON cuts the outermost JSON object out of free-form model output,
// tolerating code fences and prose around it.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}

	return raw[start : end+1], true
}
