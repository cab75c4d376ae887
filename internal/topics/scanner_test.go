package topics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// scenarioVectors gives "battery"~"battery life" similarity 0.75 and
// "screen quality"~"screen" similarity 0.65, everything else orthogonal.
func scenarioVectors() map[string][]float64 {
	return map[string][]float64{
		sentence("battery life"):   {1, 0, 0, 0, 0},
		sentence("battery"):        {0.75, math.Sqrt(1 - 0.75*0.75), 0, 0, 0},
		sentence("screen"):         {0, 0, 1, 0, 0},
		sentence("screen quality"): {0, 0, 0.65, math.Sqrt(1 - 0.65*0.65), 0},
		sentence("price"):          {0, 0, 0, 0, 1},
	}
}

type scanHarness struct {
	scanner   *Scanner
	store     *memCatalogueStore
	ledger    *memLedger
	searcher  *fakeSearcher
	extractor *fakeExtractor
	embedder  *fakeEmbedder
}

func newScanHarness(docs []schema.Document, phrases map[string][]string) *scanHarness {
	embedder := &fakeEmbedder{vectors: scenarioVectors()}
	store := newMemCatalogueStore()
	ledger := newMemLedger()
	searcher := &fakeSearcher{docs: docs}
	extractor := &fakeExtractor{phrases: phrases, failing: make(map[string]bool)}

	cache := NewEmbeddingCache(embedder, newMemEmbeddingStore())
	merger := NewMerger(cache, store)
	scanner := NewScanner(searcher, extractor, merger, ledger, zap.NewNop().Sugar())

	return &scanHarness{
		scanner:   scanner,
		store:     store,
		ledger:    ledger,
		searcher:  searcher,
		extractor: extractor,
		embedder:  embedder,
	}
}

func TestScanScopeEndToEnd(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{
			reviewDoc("a", "review a"),
			reviewDoc("b", "review b"),
			reviewDoc("c", "review c"),
		},
		map[string][]string{
			"review a": {"battery life", "screen"},
			"review b": {"battery", "screen quality"},
			"review c": {"price"},
		},
	)

	err := h.scanner.ScanScope(context.Background(), testScope, 100)
	require.NoError(t, err)

	entries, err := h.store.List(context.Background(), testScope)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	battery, ok := h.store.byPhrase("battery life")
	require.True(t, ok)
	require.Equal(t, 2, battery.Count)
	require.ElementsMatch(t, []string{"a", "b"}, []string(battery.ReviewIDs))

	screen, ok := h.store.byPhrase("screen")
	require.True(t, ok)
	require.Equal(t, 2, screen.Count)
	require.ElementsMatch(t, []string{"a", "b"}, []string(screen.ReviewIDs))

	price, ok := h.store.byPhrase("price")
	require.True(t, ok)
	require.Equal(t, 1, price.Count)
	require.Equal(t, []string{"c"}, []string(price.ReviewIDs))
}

func TestScanScopeIsIdempotent(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{reviewDoc("a", "review a")},
		map[string][]string{"review a": {"battery life", "screen"}},
	)

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))
	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))

	battery, ok := h.store.byPhrase("battery life")
	require.True(t, ok)
	require.Equal(t, 1, battery.Count)

	// The second scan found the review in the ledger and never re-extracted.
	require.Equal(t, 1, h.extractor.calls)
}

func TestScanScopeSkipsDuplicatesWithinPage(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{
			reviewDoc("a", "review a"),
			reviewDoc("a", "review a"),
		},
		map[string][]string{"review a": {"battery life", "screen"}},
	)

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))

	battery, ok := h.store.byPhrase("battery life")
	require.True(t, ok)
	require.Equal(t, 1, battery.Count)
	require.Equal(t, 1, h.extractor.calls)
}

func TestScanScopeTerminatesAgainstRepeatingPages(t *testing.T) {
	// The searcher returns the same page on every call and the limit is far
	// larger than the corpus; the scan must still finish.
	h := newScanHarness(
		[]schema.Document{reviewDoc("a", "review a")},
		map[string][]string{"review a": {"battery life", "screen"}},
	)

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 1000000))
	require.LessOrEqual(t, h.searcher.calls, 2)
}

func TestScanScopeRespectsTotalLimit(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{
			reviewDoc("a", "review a"),
			reviewDoc("b", "review b"),
			reviewDoc("c", "review c"),
		},
		map[string][]string{
			"review a": {"battery life", "screen"},
			"review b": {"battery", "screen quality"},
			"review c": {"price"},
		},
	)

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 1))

	processed, err := h.ledger.IsProcessed(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, processed)

	processed, err = h.ledger.IsProcessed(context.Background(), "c")
	require.NoError(t, err)
	require.False(t, processed)
}

func TestScanScopeFailedExtractionIsRetriedLater(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{
			reviewDoc("a", "review a"),
			reviewDoc("b", "review b"),
		},
		map[string][]string{
			"review a": {"battery life", "screen"},
			"review b": {"battery", "screen quality"},
		},
	)
	h.extractor.failing["review b"] = true

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))

	processed, err := h.ledger.IsProcessed(context.Background(), "b")
	require.NoError(t, err)
	require.False(t, processed, "failed review must stay unmarked")

	battery, ok := h.store.byPhrase("battery life")
	require.True(t, ok)
	require.Equal(t, 1, battery.Count)

	// Extractor recovers; the next scan picks the review up.
	delete(h.extractor.failing, "review b")
	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))

	battery, _ = h.store.byPhrase("battery life")
	require.Equal(t, 2, battery.Count)
}

func TestScanScopeStopsOnCancelledContext(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{reviewDoc("a", "review a")},
		map[string][]string{"review a": {"battery life", "screen"}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.scanner.ScanScope(ctx, testScope, 100)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, h.extractor.calls)
}

func TestScanScopeSkipsDocumentsWithoutID(t *testing.T) {
	h := newScanHarness(
		[]schema.Document{
			{PageContent: "review a", Metadata: map[string]interface{}{}},
			reviewDoc("c", "review c"),
		},
		map[string][]string{"review c": {"price"}},
	)

	require.NoError(t, h.scanner.ScanScope(context.Background(), testScope, 100))

	price, ok := h.store.byPhrase("price")
	require.True(t, ok)
	require.Equal(t, 1, price.Count)
	require.Equal(t, 1, h.extractor.calls)
}

func TestDocumentReviewIDFallsBackToID(t *testing.T) {
	doc := schema.Document{Metadata: map[string]interface{}{"id": "vec-1"}}
	require.Equal(t, "vec-1", documentReviewID(doc))

	doc = schema.Document{Metadata: map[string]interface{}{"review_id": "r-1", "id": "vec-1"}}
	require.Equal(t, "r-1", documentReviewID(doc))
}
