package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabfab/portfolio-agent/api"
	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/database"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the studio retrieve and answer endpoints over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides STUDIO_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	addr := rt.cfg.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var queries chat.QueryLog = chat.NopQueryLog{}
	if rt.cfg.PostgresDSN != "" {
		pool, err := database.NewPostgresPool(ctx, rt.cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connection: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureQueryLogSchema(ctx, pool); err != nil {
			return err
		}
		queries = chat.NewPostgresQueryLog(pool)
		rt.logger.Println("recording studio queries in postgres")
	}

	engine := rt.engine()
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(engine, rt.answerer(engine), queries, rt.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Printf("studio listening on %s (knowledge base %s)", addr, rt.cfg.KnowledgeBaseDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Println("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
