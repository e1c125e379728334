package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/retrieval"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing knowledge base search and answer tools",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol.
	rt, err := setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	engine := rt.engine()
	answers := rt.answerer(engine)

	s := mcpserver.NewMCPServer("portfolio-agent", "1.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(searchKnowledgeBaseTool(), makeSearchHandler(engine))
	s.AddTool(askPortfolioTool(), makeAskHandler(engine, answers))
	s.AddTool(listDocumentsTool(), makeListDocumentsHandler(engine))

	return mcpserver.ServeStdio(s)
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchKnowledgeBaseTool() mcp.Tool {
	return mcp.NewTool("search_knowledge_base",
		mcp.WithDescription("Rank portfolio knowledge base documents by keyword occurrences and return snippets around the first match."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keywords or a question about the portfolio owner"),
		),
	)
}

func askPortfolioTool() mcp.Tool {
	return mcp.NewTool("ask_portfolio",
		mcp.WithDescription("Answer a question about the portfolio owner, grounded on the best matching knowledge base documents."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(true),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(false),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		}),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
	)
}

func listDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List every document in the portfolio knowledge base with its title and path."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

type queryRunner interface {
	Validate(query string) error
	Retrieve(ctx context.Context, query string) (retrieval.Result, error)
}

func makeSearchHandler(engine queryRunner) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(req.GetString("query", ""))
		if err := engine.Validate(query); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := engine.Retrieve(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatMatches(result.Query, result.Results)), nil
	}
}

func makeAskHandler(engine queryRunner, answers *chat.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := strings.TrimSpace(req.GetString("question", ""))
		if err := engine.Validate(question); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := answers.Answer(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatAnswer(resp)), nil
	}
}

func makeListDocumentsHandler(engine *retrieval.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := engine.Documents(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list documents failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatDocuments(docs)), nil
	}
}
