package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kaanbobac/digital-tester-twin/internal/logger"
	"github.com/kaanbobac/digital-tester-twin/internal/report"
	"github.com/kaanbobac/digital-tester-twin/internal/server"
	"github.com/kaanbobac/digital-tester-twin/internal/session"
	"github.com/kaanbobac/digital-tester-twin/pkg/audit"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Serve flags
	addr string

	// Audit flags
	outputFile string
	compact    bool
	pageBudget int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitetest",
		Short: "sitetest - Website Crawl and Issue Analyzer",
		Long: `sitetest crawls a website breadth-first within its origin, analyzes every
page for functionality, accessibility, performance, SEO, UX and security
issues, and produces an aggregated report.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Run the API server that accepts test requests and serves status, reports, and live progress.",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	auditCmd := &cobra.Command{
		Use:   "audit [target]",
		Short: "Test a single site and print the report",
		Long:  "Run one full test against the target URL and write the aggregated report as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAudit,
	}
	auditCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	auditCmd.Flags().BoolVar(&compact, "compact", false, "Compact JSON output")
	auditCmd.Flags().IntVar(&pageBudget, "pages", 0, "Override the page budget")

	rootCmd.AddCommand(serveCmd, auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig() (*audit.Config, error) {
	cfg := audit.DefaultConfig()
	if configFile != "" {
		loaded, err := audit.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if pageBudget > 0 {
		cfg.PageBudget = pageBudget
	}
	return cfg, cfg.Validate()
}

func buildLogger(cfg *audit.Config) *logger.Logger {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.InfoLevel
	}
	if verbose {
		level = logger.InfoLevel
	}
	if debug {
		level = logger.DebugLevel
	}
	return logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	log := buildLogger(cfg)

	auditor := audit.New(
		audit.WithConfig(cfg),
		audit.WithLogger(log),
	)
	return server.New(auditor, log).ListenAndServe(addr)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	log := buildLogger(cfg)

	st := session.NewStore()
	auditor := audit.New(
		audit.WithConfig(cfg),
		audit.WithLogger(log),
		audit.WithStore(st),
	)

	testID := "test_" + uuid.NewString()
	st.Create(testID, args[0])
	auditor.Run(context.Background(), testID, args[0])

	snap, ok := st.Get(testID)
	if !ok {
		return fmt.Errorf("session %s lost", testID)
	}
	if snap.Status == session.StatusError {
		return fmt.Errorf("test failed: %s", snap.Message)
	}

	rep, err := report.Build(snap)
	if err != nil {
		return err
	}

	var data []byte
	if compact {
		data, err = json.Marshal(rep)
	} else {
		data, err = json.MarshalIndent(rep, "", "  ")
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}
