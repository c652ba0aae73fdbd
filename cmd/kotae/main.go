// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/app"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "config.yaml"
	defaultServerURL  = "http://localhost:3000"
)

// loadConfig loads config from path. A missing file at the default path
// falls back to the built-in defaults so `kotae server` works out of the box.
// Returns the config and the path that was loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultConfigPath {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// loadEnv reads .env files so API keys can live next to the config.
// A missing file is not an error.
func loadEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "server":
		runServer(args)
	case "ask":
		runAsk(args)
	case "ingest":
		runIngest(args)
	case "status":
		runStatus(args)
	case "init":
		runInit(args)
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// setup loads env, config and a logger shared by the in-process commands.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	loadEnv(configPath)
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fatal("Failed to create logger: %v", err)
	}
	if resolved == "" {
		logger.Info("no config file found, using built-in defaults")
	} else {
		logger.Info("config loaded", zap.String("config_path", resolved))
	}
	return cfg, logger
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.String("error_tag", models.ErrorTag(err)), zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Handles, cfg, logger,
		server.WithChunkIndex(components.Chunks),
		server.WithJournal(components.Journal),
		server.WithStaleness(components.Staleness))
	listener, err := srv.Listen()
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.Server.Addr()), zap.Error(err))
	}
	// Requests arriving during startup get ModelsNotReady (500 on /ask).
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := components.Bootstrap(ctx)
	if err != nil {
		logger.Error("startup failed", zap.String("error_tag", models.ErrorTag(err)), zap.Error(err))
		shutdown(srv, logger)
		_ = components.Close()
		os.Exit(1)
	}
	logger.Info("ready",
		zap.String("addr", "http://"+cfg.Server.Addr()),
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Duration("startup", report.Elapsed))

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdown(srv, logger)
}

func shutdown(srv *server.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that appear after the question to the front so
// flag.Parse sees them; the flag package stops at the first positional.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "ask a running server instead of ingesting in-process (e.g. "+defaultServerURL+")")
	topK := fs.Int("top-k", 0, "number of chunks to ground the answer on (0 = config default)")
	maxLength := fs.Int("max-length", 0, "maximum answer length in tokens (0 = config default)")
	sources := fs.Bool("sources", false, "also print the retrieved chunks (in-process only)")
	output := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fatal("%v", err)
	}
	req := &models.AskRequest{Query: buildQuery(fs.Args()), TopK: *topK, MaxLength: *maxLength}
	if req.Query == "" {
		fs.Usage()
		os.Exit(1)
	}

	if *serverURL != "" {
		answer, err := askViaHTTP(*serverURL, req)
		if err != nil {
			fatal("Ask failed: %v", err)
		}
		if err := cli.WriteAnswer(os.Stdout, answer, nil, format); err != nil {
			fatal("%v", err)
		}
		return
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	components, err := app.New(cfg, logger)
	if err != nil {
		fatal("Failed to initialize: %v", err)
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Bootstrap(ctx); err != nil {
		fatal("Startup failed [%s]: %v", models.ErrorTag(err), err)
	}
	answer, err := components.Engine.Ask(ctx, req)
	if err != nil {
		fatal("Ask failed [%s]: %v", models.ErrorTag(err), err)
	}
	var ranked []models.RankedResult
	if *sources {
		resp, err := components.Engine.Retrieve(ctx, req)
		if err != nil {
			fatal("Retrieve failed [%s]: %v", models.ErrorTag(err), err)
		}
		ranked = resp.Results
	}
	if err := cli.WriteAnswer(os.Stdout, answer, ranked, format); err != nil {
		fatal("%v", err)
	}
}

func askViaHTTP(serverURL string, req *models.AskRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fatal("%v", err)
	}
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	components, err := app.New(cfg, logger)
	if err != nil {
		fatal("Failed to initialize: %v", err)
	}
	defer components.Close()

	report, err := components.Bootstrap(context.Background())
	if err != nil {
		fatal("Ingestion failed [%s]: %v", models.ErrorTag(err), err)
	}
	err = cli.WriteIngestReport(os.Stdout, cli.IngestReport{
		Documents:  report.Documents,
		Chunks:     report.Chunks,
		Dimensions: report.Dimensions,
		Elapsed:    report.Elapsed,
	}, format)
	if err != nil {
		fatal("%v", err)
	}
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fatal("%v", err)
	}
	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fatal("Status failed: %v", err)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fatal("%v", err)
	}
}

func statusViaHTTP(serverURL string) (map[string]any, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(args)

	if err := writeDefaultConfig(*configPath, *force); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wrote %s\n", *configPath)
}

// writeDefaultConfig saves the built-in defaults with paths left relative
// to the config file.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return config.Save(path, cfg)
}

func printUsage() {
	fmt.Print(`Kotae - question answering over a folder of documents

Usage:
  kotae <command> [flags]

Commands:
  server    Ingest the corpus and serve the HTTP API and web page
  ask       Answer a question (in-process, or via -server)
  ingest    Ingest the corpus once and print a summary
  status    Show a running server's status
  init      Write a default config.yaml
  version   Print the version
  help      Show this help

Examples:
  kotae init
  kotae server -config config.yaml
  kotae ask what notice period applies to a residential lease
  kotae ask -server http://localhost:3000 "who repairs structural defects?"
  kotae status -output json
`)
}
