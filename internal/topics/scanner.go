package topics

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// PageMax is the hard cap on documents per search request, imposed by the
// vector store.
const PageMax = 10000

// scanQuery is the fixed query text for paging over a scope's reviews. The
// scope filter does the real selection; the query only orders results.
const scanQuery = "product reviews"

// Scanner drives a full cataloguing pass over a scope's review corpus.
type Scanner struct {
	searcher  Searcher
	extractor Extractor
	merger    *Merger
	ledger    Ledger
	logger    *zap.SugaredLogger
}

func NewScanner(searcher Searcher, extractor Extractor, merger *Merger, ledger Ledger, logger *zap.SugaredLogger) *Scanner {
	return &Scanner{
		searcher:  searcher,
		extractor: extractor,
		merger:    merger,
		ledger:    ledger,
		logger:    logger,
	}
}

// ScanScope pages over the scope's reviews and merges each unseen review's
// candidate topics into the catalogue, up to totalLimit reviews. The scan
// stops early when a page yields no documents or no new reviews, which keeps
// it finite against a collaborator that returns the same page repeatedly.
//
// Failures on a single review are logged and skipped without marking the
// review processed, so a later scan retries it. A review is only marked once
// all of its candidates merged (at-least-once on crash, never lost).
func (s *Scanner) ScanScope(ctx context.Context, scope Scope, totalLimit int) error {
	remaining := totalLimit
	seen := make(map[string]bool)

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		k := remaining
		if k > PageMax {
			k = PageMax
		}

		docs, err := s.searcher.Search(ctx, scope, scanQuery, k)
		if err != nil {
			return err
		}

		s.logger.Infow("retrieved review page",
			"workspace_id", scope.WorkspaceID,
			"product_id", scope.ProductID,
			"docs", len(docs),
		)

		if len(docs) == 0 {
			break
		}

		newDocs := 0
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}

			reviewID := documentReviewID(doc)
			if reviewID == "" {
				s.logger.Warnw("skipping document without review ID",
					"workspace_id", scope.WorkspaceID,
					"product_id", scope.ProductID,
				)
				continue
			}

			// A single page can contain duplicates.
			if seen[reviewID] {
				continue
			}
			seen[reviewID] = true

			processed, err := s.ledger.IsProcessed(ctx, reviewID)
			if err != nil {
				return err
			}
			if processed {
				continue
			}

			if !s.processReview(ctx, scope, reviewID, strings.TrimSpace(doc.PageContent)) {
				continue
			}

			if err := s.ledger.MarkProcessed(ctx, reviewID, scope); err != nil {
				return err
			}

			newDocs++
		}

		if newDocs == 0 {
			break
		}
		remaining -= newDocs
	}

	return nil
}

// processReview extracts and merges one review's candidate topics. It reports
// whether the review fully contributed; on any failure the review is left
// unmarked for a later retry.
func (s *Scanner) processReview(ctx context.Context, scope Scope, reviewID, reviewText string) bool {
	phrases, err := s.extractor.ExtractTopics(ctx, reviewText)
	if err != nil {
		s.logger.Warnw("topic extraction failed, review will be retried",
			"review_id", reviewID,
			"error", err,
		)
		return false
	}

	s.logger.Debugw("extracted topics", "review_id", reviewID, "topics", phrases)

	for _, phrase := range phrases {
		if err := s.merger.MergeOrCreate(ctx, scope, phrase, reviewID); err != nil {
			s.logger.Warnw("topic merge failed, review will be retried",
				"review_id", reviewID,
				"topic", phrase,
				"error", err,
			)
			return false
		}
	}

	return true
}

// documentReviewID pulls the review's identity out of document metadata. The
// search collaborator owns this field; ingestion writes it as review_id, with
// id accepted as a fallback.
func documentReviewID(doc schema.Document) string {
	if id, ok := doc.Metadata["review_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := doc.Metadata["id"].(string); ok {
		return id
	}

	return ""
}
