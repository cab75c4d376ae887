package topics

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

const extractionPrompt = `Extract concise product topics from the review.

Rules:
- Generate 2 or 3 topics ONLY
- Use 2 topics if the review is short or discusses few aspects
- Use 3 topics if the review discusses multiple aspects
- 1-3 words per topic
- Product aspects only
- No sentiment
- No repetition
- No explanation

Return ONLY a JSON array of strings.`

// LLMExtractor extracts candidate topic phrases from review text with AI.
type LLMExtractor struct {
	chat            llms.ChatLLM
	maxOutputTokens int
}

// NewLLMExtractor creates an extractor using the OPENAI_EXTRACTION_MODEL
// environment variable.
func NewLLMExtractor() (*LLMExtractor, error) {
	chat, err := openai.NewChat(openai.WithModel(os.Getenv("OPENAI_EXTRACTION_MODEL")))
	if err != nil {
		return nil, err
	}

	return &LLMExtractor{
		chat:            chat,
		maxOutputTokens: 256,
	}, nil
}

// ExtractTopics returns candidate phrases for one review. A provider failure
// is returned as an error so the caller can retry the review later; output
// that doesn't parse into the expected shape yields an empty list instead.
func (e *LLMExtractor) ExtractTopics(ctx context.Context, reviewText string) ([]string, error) {
	res, err := e.chat.Call(ctx, []schema.ChatMessage{
		schema.SystemChatMessage{Text: extractionPrompt},
		schema.HumanChatMessage{Text: fmt.Sprintf("Review:\n%v", reviewText)},
	}, llms.WithTemperature(0), llms.WithMaxTokens(e.maxOutputTokens))
	if err != nil {
		return nil, err
	}

	phrases, ok := parseTopics(res)
	if !ok {
		return nil, nil
	}

	return phrases, nil
}

// parseTopics is the strict parse of model output. It accepts either a bare
// JSON array of strings or an object with a "topics" array, and only a
// two-or-three item result counts; anything else is malformed.
func parseTopics(raw string) ([]string, bool) {
	if payload, found := cutJSON(raw, "[", "]"); found {
		var phrases []string
		if err := json.Unmarshal([]byte(payload), &phrases); err == nil {
			if len(phrases) >= 2 && len(phrases) <= 3 {
				return phrases, true
			}
		}
	}

	if payload, found := cutJSON(raw, "{", "}"); found {
		var out struct {
			Topics []string `json:"topics"`
		}
		if err := json.Unmarshal([]byte(payload), &out); err == nil {
			if len(out.Topics) >= 2 && len(out.Topics) <= 3 {
				return out.Topics, true
			}
		}
	}

	return nil, false
}

func cutJSON(raw, open, closing string) (string, bool) {
	start := strings.Index(raw, open)
	end := strings.LastIndex(raw, closing)
	if start < 0 || end < start {
		return "", false
	}

	return raw[start : end+1], true
}
