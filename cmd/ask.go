package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var flagRaw bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the knowledge base using the configured LLM",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagRaw, "raw", false, "print plain markdown instead of rendering it")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resp, err := rt.answerer(engine).Answer(ctx, query)
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}

	out := formatAnswer(resp)
	if !flagRaw {
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		if out, err = renderer.Render(out); err != nil {
			return fmt.Errorf("render answer: %w", err)
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
