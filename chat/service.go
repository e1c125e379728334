// Package chat composes grounded answers from retrieval results.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fabfab/portfolio-agent/llm"
	"github.com/fabfab/portfolio-agent/retrieval"
)

const (
	NoDocumentsAnswer   = "I could not find relevant documents for that question."
	EmptyAnswerFallback = "I could not generate an answer."
)

// Retriever ranks knowledge base documents for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (retrieval.Result, error)
}

type Service struct {
	retriever Retriever
	llm       llm.Generator
	logger    *log.Logger
}

func NewService(retriever Retriever, llmClient llm.Generator, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		retriever: retriever,
		llm:       llmClient,
		logger:    logger,
	}
}

// Answer retrieves context for query and asks the LLM for a grounded answer.
// The query must already be validated. Without matching documents the LLM is
// not called and a fixed answer is returned.
func (s *Service) Answer(ctx context.Context, query string) (Response, error) {
	if s.retriever == nil {
		return Response{}, fmt.Errorf("retriever is not configured")
	}

	found, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve: %w", err)
	}

	if len(found.Results) == 0 {
		s.logger.Printf("no documents matched %q, skipping generation", found.Query)
		return Response{
			Steps:   found.Steps,
			Query:   found.Query,
			Results: found.Results,
			Answer:  NoDocumentsAnswer,
		}, nil
	}

	if s.llm == nil {
		return Response{}, fmt.Errorf("llm client is not configured")
	}

	steps := make([]retrieval.Stage, 0, len(found.Steps)+1)
	for _, step := range found.Steps {
		if step != retrieval.StageDone {
			steps = append(steps, step)
		}
	}
	steps = append(steps, retrieval.StageGeneratingAnswer)

	generated, err := s.llm.Generate(ctx, llm.Params{
		System:   systemPrompt(),
		Messages: []llm.Message{{Role: llm.RoleUser, Content: formatUserPrompt(found.Query, found.Results)}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("llm generate: %w", err)
	}
	steps = append(steps, retrieval.StageDone)

	answer := strings.TrimSpace(generated.Text)
	if answer == "" {
		answer = EmptyAnswerFallback
	}

	return Response{
		Steps:    steps,
		Query:    found.Query,
		Results:  found.Results,
		Answer:   answer,
		Provider: generated.Provider,
		Model:    generated.Model,
	}, nil
}

func buildContextPrompt(matches []retrieval.Match) string {
	blocks := make([]string, 0, len(matches))
	for idx, match := range matches {
		blocks = append(blocks, fmt.Sprintf("Source %d: %s (%s)\n%s", idx+1, match.Title, match.RelativePath, match.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}

func systemPrompt() string {
	return "You answer recruiter questions about the owner of this portfolio. " +
		"Use only the provided context, which comes from their personal knowledge base. " +
		"If the answer is not in the context, say you do not know. " +
		"Be concise, direct and professional."
}

func formatUserPrompt(query string, matches []retrieval.Match) string {
	return fmt.Sprintf("Question: %s\n\nContext:\n%s", query, buildContextPrompt(matches))
}
