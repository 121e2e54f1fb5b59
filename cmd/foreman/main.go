// Command foreman runs the construction-management assistant. With no
// -query flag it serves the REST API until interrupted; with -query it
// handles a single command and prints the reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tailored-agentic-units/foreman/app"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to config JSON file (optional)")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
		dbPath     = flag.String("db", "", "Directory for the sqlite stores (overrides config)")
		provider   = flag.String("provider", "", "Model provider: openai, gemini, or empty for keyword-only routing (overrides config)")
		query      = flag.String("query", "", "Handle one command and exit instead of serving")
		sessionID  = flag.String("session", "", "Session id for -query (optional)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := app.DefaultConfig()
	if *configFile != "" {
		loaded, err := app.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *provider != "" {
		cfg.Planner.Provider = *provider
	}
	if *dbPath != "" {
		os.Setenv("FOREMAN_DB_PATH", *dbPath)
	}
	cfg.ApplyEnv()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to assemble runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *query != "" {
		defer a.Close()
		response, err := a.Query(ctx, *query, *sessionID)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		fmt.Println(response.Reply)
		if *verbose {
			fmt.Fprintf(os.Stderr, "session=%s agents=%v partial=%v\n",
				response.SessionID, response.Agents, response.Partial)
		}
		return
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
