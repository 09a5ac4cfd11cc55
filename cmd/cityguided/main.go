// Cityguided is a conversational city-guide daemon.
//
// It receives messages from a messaging gateway (webhook or event
// stream), runs each through a tool-dispatching orchestration loop,
// and replies with text and, for voice messages, synthesized audio.
// Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	cityguided serve             Start the webhook daemon
//	cityguided ask <message>     Run a single turn (for testing)
//	cityguided version           Print version and build information
//	cityguided -o json version   Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cityguide/cityguided/internal/agent"
	"github.com/cityguide/cityguided/internal/bridge"
	"github.com/cityguide/cityguided/internal/buildinfo"
	"github.com/cityguide/cityguided/internal/config"
	"github.com/cityguide/cityguided/internal/docstore"
	"github.com/cityguide/cityguided/internal/llm"
	"github.com/cityguide/cityguided/internal/lookup"
	"github.com/cityguide/cityguided/internal/mood"
	"github.com/cityguide/cityguided/internal/profile"
	"github.com/cityguide/cityguided/internal/session"
	"github.com/cityguide/cityguided/internal/speech"
	"github.com/cityguide/cityguided/internal/tools"
	"github.com/cityguide/cityguided/internal/web"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the cityguided command. Arguments
// are parsed by hand: the flag package relies on package-level globals
// (flag.CommandLine), which makes it impossible to call run()
// concurrently from tests, and the argument surface is small.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	// Secrets may live in a .env file next to the binary during
	// development. Absence is normal in production.
	_ = godotenv.Load()

	var configPath string
	var outputFmt string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: cityguided ask <message>")
		}
		return runAsk(ctx, stdout, configPath, cmdArgs)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "git_branch", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "cityguided - Conversational City Guide Daemon")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: cityguided [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the webhook daemon")
	fmt.Fprintln(w, "  ask          Run a single turn (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./cityguided.yaml, ~/.config/cityguided/config.yaml, /etc/cityguided/config.yaml")
	return nil
}

// runAsk handles the "cityguided ask <message>" subcommand. It boots
// the full turn pipeline against a throwaway sender identity, runs one
// text turn, and prints the reply. Useful for smoke tests without a
// gateway.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	message := strings.Join(args, " ")

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	core, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer core.docs.Close()

	runner := session.NewRunner(session.Config{
		Profiles:  core.profiles,
		Responder: core.orchestrator,
		Mood:      core.mood,
		Logger:    logger,
	})

	answer, err := runner.RunTurn(ctx, "10000000000", message, false)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, answer)
	return nil
}

// runServe handles the "cityguided serve" subcommand. It is the
// primary operating mode: loads config, opens the user store, builds
// the orchestration pipeline, starts the webhook server (and the
// gateway event stream when configured), and blocks until a shutdown
// signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting cityguided",
		"version", buildinfo.Version,
		"commit", buildinfo.GitCommit,
		"built", buildinfo.BuildTime,
	)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known. The
	// initial Info-level logger covers only the startup banner.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}

	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"store", cfg.Store.Path,
		"model", cfg.Engine.Model,
	)

	core, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer core.docs.Close()

	if err := os.MkdirAll(cfg.Media.Dir, 0o755); err != nil {
		return fmt.Errorf("create media directory: %w", err)
	}

	var gateway *bridge.Client
	if cfg.Gateway.Configured() {
		gateway = bridge.NewClient(cfg.Gateway.URL, cfg.Gateway.Account, cfg.Gateway.Token, cfg.Gateway.FromNumber, 15*time.Second, logger)
		logger.Info("gateway configured", "url", cfg.Gateway.URL, "from", cfg.Gateway.FromNumber)
	} else {
		logger.Warn("gateway not configured, replies will be dropped")
	}

	var synthesizer speech.Synthesizer
	if cfg.Speech.APIKey != "" {
		synthesizer = speech.NewElevenLabs(cfg.Speech.APIKey, cfg.Speech.VoiceID, cfg.Speech.ModelID, "")
		logger.Info("speech synthesis configured", "voice", cfg.Speech.VoiceID)
	}

	transcriber := speech.NewGeminiTranscriber(core.engine.Client(), cfg.Engine.Model)

	runnerCfg := session.Config{
		Profiles:    core.profiles,
		Responder:   core.orchestrator,
		Mood:        core.mood,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		MediaDir:    cfg.Media.Dir,
		PublicURL:   strings.TrimRight(cfg.Media.PublicURL, "/"),
		Retention:   cfg.Media.Retention(),
		Logger:      logger,
	}
	if gateway != nil {
		runnerCfg.Gateway = gateway
		runnerCfg.Fetcher = gateway
	}
	runner := session.NewRunner(runnerCfg)

	server := web.NewServer(cfg.Listen.Address, cfg.Listen.Port, runner, cfg.Media.Dir, logger)

	// SIGINT/SIGTERM cancel the context and start graceful shutdown.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional websocket event stream for deployments the gateway
	// cannot reach by webhook.
	if cfg.Gateway.StreamURL != "" {
		stream := bridge.NewStream(cfg.Gateway.StreamURL, cfg.Gateway.Token, logger)
		if err := stream.Connect(ctx); err != nil {
			return fmt.Errorf("connect gateway stream: %w", err)
		}
		defer stream.Close()
		go bridge.Pump(ctx, stream, runner, logger)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(ctx)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	logger.Info("cityguided stopped")
	return nil
}

// core bundles the components shared by serve and ask.
type core struct {
	docs         *docstore.Store
	profiles     *profile.Store
	engine       *llm.GeminiEngine
	mood         *mood.Classifier
	orchestrator *agent.Orchestrator
}

// buildCore opens the user store and builds the engine, tool registry,
// and orchestrator.
func buildCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core, error) {
	docs, err := docstore.NewStore(cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	profiles := profile.NewStore(docs, logger)

	engine, err := llm.NewGeminiEngine(ctx, cfg.Engine.APIKey, cfg.Engine.Model, cfg.Engine.Timeout(), logger)
	if err != nil {
		docs.Close()
		return nil, err
	}

	var lookups *lookup.Client
	if cfg.Lookup.APIKey != "" {
		lookups = lookup.NewClient(cfg.Lookup.APIKey, "", cfg.Lookup.Timeout())
	} else {
		logger.Warn("lookup API key not set, live lookups will fail politely")
		lookups = lookup.NewClient("", "", cfg.Lookup.Timeout())
	}

	registry := tools.NewRegistry(tools.Deps{
		Profiles: profiles,
		Engine:   engine,
		Lookup:   lookups,
		Logger:   logger,
	})

	return &core{
		docs:         docs,
		profiles:     profiles,
		engine:       engine,
		mood:         mood.NewClassifier(engine, logger),
		orchestrator: agent.New(engine, registry, logger),
	}, nil
}

// newLogger builds a text slog logger at the given level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig locates and parses the YAML configuration file. If
// explicit is non-empty, that exact path is used (and must exist).
// Otherwise [config.FindConfig] searches the default locations.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}
