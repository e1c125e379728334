package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/config"
	"github.com/fabfab/portfolio-agent/knowledge"
	"github.com/fabfab/portfolio-agent/llm"
	"github.com/fabfab/portfolio-agent/retrieval"
)

var (
	flagEnvFile string
	flagKB      string
)

var rootCmd = &cobra.Command{
	Use:           "portfolio-agent",
	Short:         "Portfolio studio: lexical retrieval and grounded answers over a markdown knowledge base",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&flagKB, "kb", "", "knowledge base directory (overrides KNOWLEDGE_BASE_DIR)")
}

// app bundles what every command needs after configuration is loaded.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	closeLog func() error
}

// setup loads configuration and builds a logger writing to console, teed into
// a rotating file when LOG_FILE is set.
func setup(console io.Writer) (*app, error) {
	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagKB != "" {
		cfg.KnowledgeBaseDir = flagKB
	}

	logger, closeLog := newLogger(cfg.Log, console)
	return &app{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func newLogger(cfg config.LogConfig, console io.Writer) (*log.Logger, func() error) {
	if cfg.File == "" {
		return log.New(console, "", log.LstdFlags), func() error { return nil }
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	return log.New(io.MultiWriter(console, file), "", log.LstdFlags), file.Close
}

func (rt *app) engine() *retrieval.Engine {
	store := knowledge.NewFileStore(rt.cfg.KnowledgeBaseDir, rt.cfg.RootFiles...)
	return retrieval.NewEngine(store, rt.cfg.Studio.RetrievalOptions(), rt.logger)
}

func (rt *app) answerer(engine *retrieval.Engine) *chat.Service {
	return chat.NewService(engine, llm.NewClient(rt.logger), rt.logger)
}

func (rt *app) close() {
	if err := rt.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}
