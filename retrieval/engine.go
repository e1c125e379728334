package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fabfab/portfolio-agent/knowledge"
)

// Engine runs lexical retrieval over a knowledge base. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	store  knowledge.Store
	opts   Options
	logger *log.Logger
}

func NewEngine(store knowledge.Store, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		store:  store,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective options, defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// Validate rejects queries shorter than the configured minimum. Call it
// before Retrieve.
func (e *Engine) Validate(query string) error {
	return ValidateQuery(query, e.opts.MinQueryLength)
}

// Documents lists the knowledge base without scoring it.
func (e *Engine) Documents(ctx context.Context) ([]knowledge.Document, error) {
	if e.store == nil {
		return nil, fmt.Errorf("knowledge store is not configured")
	}
	return e.store.Documents(ctx)
}

// Retrieve ranks every document against query. An empty Results slice is a
// normal outcome.
func (e *Engine) Retrieve(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	steps := []Stage{StageValidatingQuery, StageLoadingKB}

	docs, err := e.Documents(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load knowledge base: %w", err)
	}

	steps = append(steps, StageScoringDocuments)
	tokens := Tokenize(query)
	ranked := rank(docs, tokens, e.opts.MaxResults)

	steps = append(steps, StageBuildingSnippets)
	matches := make([]Match, 0, len(ranked))
	for _, item := range ranked {
		matches = append(matches, Match{
			DocID:        item.doc.ID,
			Title:        item.doc.Title,
			RelativePath: item.doc.RelativePath,
			Score:        item.score,
			Snippet:      BuildSnippet(item.doc.Content, tokens, e.opts.SnippetRadius),
		})
	}

	steps = append(steps, StageDone)
	e.logger.Printf("retrieval matched %d of %d documents for %q", len(matches), len(docs), query)

	return Result{Steps: steps, Query: query, Results: matches}, nil
}
