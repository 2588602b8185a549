package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/examgraph/examgraph"
	"github.com/examgraph/examgraph/database"
	"github.com/examgraph/examgraph/experiment"
	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/llm"
	"github.com/examgraph/examgraph/loader"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examgraph",
		Short: "Compare baseline and graph retrieval for exam question generation",
		Long: `examgraph builds an in-memory knowledge graph from structured textbook
chunks, generates exam questions from flat keyword retrieval and from
multi-hop graph retrieval, and scores both with a weighted rubric.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

func newRunCmd() *cobra.Command {
	var configPath string
	var textbookDir string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full experiment over all configured topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(configPath, textbookDir, outputDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "examgraph.yaml", "experiment config file")
	cmd.Flags().StringVarP(&textbookDir, "textbooks", "t", "", "override the textbook directory")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "override the output directory")

	return cmd
}

func runExperiment(configPath, textbookDir, outputDir string) error {
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: logLevel(),
		},
	}))

	config, err := experiment.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if textbookDir != "" {
		config.TextbookDir = textbookDir
	}
	if outputDir != "" {
		config.OutputDir = outputDir
	}

	client, err := llm.NewClient(llmConfigFromEnv(), logger)
	if err != nil {
		return err
	}

	eg, err := examgraph.NewExamGraph(&examgraph.Options{
		Baseline:  config.Baseline,
		Graph:     config.Graph,
		Weights:   config.Weights,
		Generator: client,
		Judge:     client,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	chunks, err := loader.LoadDirectory(config.TextbookDir, config.MaxTextbooks, logger)
	if err != nil {
		return err
	}
	if err := eg.Build(chunks); err != nil {
		return err
	}

	artifacts, err := experiment.NewArtifactWriter(config.OutputDir)
	if err != nil {
		return err
	}
	sinks := []experiment.RecordSink{artifacts}

	if host := os.Getenv("EXAMGRAPH_DB_HOST"); host != "" {
		db, err := helper.NewDatabase("examgraph", dbConfigFromEnv(host), logger)
		if err != nil {
			return err
		}
		defer db.Instance.Close()

		results, err := database.NewResultsDBHandler(db)
		if err != nil {
			return err
		}
		sinks = append(sinks, results)
	}

	runner, err := eg.NewRunner(sinks...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _, err = runner.Run(ctx, config.Topics)
	return err
}

func llmConfigFromEnv() llm.Config {
	return llm.Config{
		BaseURL:        getEnv("EXAMGRAPH_LLM_URL", "https://api.deepseek.com"),
		Token:          getEnv("EXAMGRAPH_LLM_TOKEN", ""),
		Model:          getEnv("EXAMGRAPH_LLM_MODEL", "deepseek-chat"),
		Temperature:    getEnvFloat("EXAMGRAPH_LLM_TEMPERATURE", 0.6),
		MaxTokens:      getEnvInt("EXAMGRAPH_LLM_MAX_TOKENS", 2000),
		TimeoutSeconds: getEnvInt("EXAMGRAPH_LLM_TIMEOUT_SECONDS", 120),
	}
}

func dbConfigFromEnv(host string) *helper.DatabaseConfiguration {
	return &helper.DatabaseConfiguration{
		Host:     host,
		Port:     getEnv("EXAMGRAPH_DB_PORT", "5432"),
		Database: getEnv("EXAMGRAPH_DB_NAME", "examgraph"),
		Username: getEnv("EXAMGRAPH_DB_USER", "examgraph"),
		Password: getEnv("EXAMGRAPH_DB_PASSWORD", ""),
		Schema:   getEnv("EXAMGRAPH_DB_SCHEMA", "public"),
		SSLMode:  getEnv("EXAMGRAPH_DB_SSLMODE", "disable"),
	}
}

func logLevel() slog.Level {
	if getEnv("EXAMGRAPH_LOG_LEVEL", "info") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
