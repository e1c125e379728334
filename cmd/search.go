package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank knowledge base documents for a query without calling an LLM",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		query := strings.TrimSpace(strings.Join(args, " "))
		engine := rt.engine()
		if err := engine.Validate(query); err != nil {
			return err
		}

		result, err := engine.Retrieve(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), formatMatches(result.Query, result.Results))
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List the documents in the knowledge base",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		docs, err := rt.engine().Documents(cmd.Context())
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), formatDocuments(docs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(docsCmd)
}
