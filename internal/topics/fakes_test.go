package topics

import (
	"context"
	"fmt"
	"sync"

	"reviewly/models"

	"github.com/tmc/langchaingo/schema"
)

// fakeEmbedder returns canned vectors keyed by normalized text and counts
// provider calls.
type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}

	vector, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no canned vector for %q", text)
	}

	return vector, nil
}

type memEmbeddingStore struct {
	mu      sync.Mutex
	entries map[string][]float64
}

func newMemEmbeddingStore() *memEmbeddingStore {
	return &memEmbeddingStore{entries: make(map[string][]float64)}
}

func (s *memEmbeddingStore) Lookup(ctx context.Context, text string) ([]float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vector, ok := s.entries[text]
	return vector, ok, nil
}

func (s *memEmbeddingStore) Insert(ctx context.Context, text string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert-if-absent, like the unique key in Postgres.
	if _, ok := s.entries[text]; !ok {
		s.entries[text] = embedding
	}

	return nil
}

type memCatalogueStore struct {
	mu     sync.Mutex
	nextID uint
	topics []models.Topic
}

func newMemCatalogueStore() *memCatalogueStore {
	return &memCatalogueStore{nextID: 1}
}

func (s *memCatalogueStore) List(ctx context.Context, scope Scope) ([]models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Topic
	for _, t := range s.topics {
		if t.WorkspaceID == scope.WorkspaceID && t.ProductID == scope.ProductID {
			out = append(out, t)
		}
	}

	return out, nil
}

func (s *memCatalogueStore) Create(ctx context.Context, scope Scope, topic string, embedding []float64, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.Topic{
		WorkspaceID: scope.WorkspaceID,
		ProductID:   scope.ProductID,
		Topic:       topic,
		Embedding:   embedding,
		Count:       1,
		ReviewIDs:   []string{reviewID},
	}
	t.ID = s.nextID
	s.nextID++
	s.topics = append(s.topics, t)

	return nil
}

func (s *memCatalogueStore) Absorb(ctx context.Context, topicID uint, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.topics {
		if s.topics[i].ID != topicID {
			continue
		}
		for _, id := range s.topics[i].ReviewIDs {
			if id == reviewID {
				return nil
			}
		}
		s.topics[i].Count++
		s.topics[i].ReviewIDs = append(s.topics[i].ReviewIDs, reviewID)
		return nil
	}

	return fmt.Errorf("no topic with ID %v", topicID)
}

func (s *memCatalogueStore) byPhrase(phrase string) (models.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.topics {
		if t.Topic == phrase {
			return t, true
		}
	}

	return models.Topic{}, false
}

type memLedger struct {
	mu        sync.Mutex
	processed map[string]bool
}

func newMemLedger() *memLedger {
	return &memLedger{processed: make(map[string]bool)}
}

func (l *memLedger) IsProcessed(ctx context.Context, reviewID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.processed[reviewID], nil
}

func (l *memLedger) MarkProcessed(ctx context.Context, reviewID string, scope Scope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.processed[reviewID] = true
	return nil
}

// fakeSearcher returns the same documents on every call, truncated to k, as a
// collaborator that doesn't filter out already-seen documents would.
type fakeSearcher struct {
	docs  []schema.Document
	calls int
}

func (s *fakeSearcher) Search(ctx context.Context, scope Scope, text string, k int) ([]schema.Document, error) {
	s.calls++
	if k > len(s.docs) {
		k = len(s.docs)
	}

	return s.docs[:k], nil
}

// fakeExtractor maps review text to canned phrases; texts listed in failing
// return an error on every call.
type fakeExtractor struct {
	phrases map[string][]string
	failing map[string]bool
	calls   int
}

func (e *fakeExtractor) ExtractTopics(ctx context.Context, reviewText string) ([]string, error) {
	e.calls++
	if e.failing[reviewText] {
		return nil, fmt.Errorf("extractor down")
	}

	return e.phrases[reviewText], nil
}

func reviewDoc(reviewID, text string) schema.Document {
	return schema.Document{
		PageContent: text,
		Metadata: map[string]interface{}{
			"review_id": reviewID,
		},
	}
}

// sentence mirrors the embedding template after cache normalization.
func sentence(phrase string) string {
	return fmt.Sprintf("this review discusses the %v of the product.", phrase)
}
