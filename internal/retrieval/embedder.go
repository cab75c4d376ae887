package retrieval

import (
	"github.com/tmc/langchaingo/embeddings"
)

// NewEmbedder initializes the embedding model using the OPENAI_MODEL
// environment variable.
func NewEmbedder() (embeddings.Embedder, error) {
	embedder, err := embeddings.NewOpenAI()
	if err != nil {
		return nil, err
	}
	embedder.BatchSize = 512
	embedder.StripNewLines = false

	return &embedder, nil
}
