// Command loglens answers natural-language questions about a CSV log file
// by orchestrating a local LLM through an iterative tool loop.
//
// Usage:
//
//	loglens "how many unique cable modems had ranging failures?"
//
// Configuration comes from the environment (optionally via a .env file):
// LOG_FILE points at the CSV, LLM_BASE_URL at the local model endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/loglens/loglens/internal/agent"
	"github.com/loglens/loglens/internal/config"
	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/llm/openai"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
	"github.com/loglens/loglens/internal/tool/builtin"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Main] %v", err)
	}
}

func run() error {
	config.LoadEnv()

	query := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, `usage: loglens "<question about the logs>"`)
		os.Exit(2)
	}

	settings, err := config.NewSettingsFromEnv()
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if settings.LogFile == "" {
		return fmt.Errorf("LOG_FILE is not set")
	}

	store, err := logstore.Open(settings.LogFile, settings.PayloadColumn)
	if err != nil {
		return err
	}
	log.Printf("[Main] Log file %s, payload column %q", settings.LogFile, store.PayloadColumn())

	var catalog *entity.Catalog
	if settings.EntityConfig != "" {
		catalog, err = entity.Load(settings.EntityConfig)
		if err != nil {
			return err
		}
		log.Printf("[Main] Entity catalog: %d kinds", len(catalog.Kinds()))
	} else {
		catalog = entity.NewCatalog(entity.Config{})
		log.Printf("[Main] No ENTITY_CONFIG set, running without an entity catalog")
	}

	provider, err := openai.NewClientFromEnv()
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	registry := tool.NewRegistry()
	builtin.RegisterAll(registry, store, catalog, provider, settings)
	log.Printf("[Main] Tools registered:\n%s", registry.CatalogCompact())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := agent.NewEngine(settings, registry, catalog, provider)
	outcome, err := engine.Run(ctx, query)
	if err != nil && !outcome.Cancelled {
		return err
	}

	fmt.Println(outcome.Answer)
	if outcome.Forced != "" {
		fmt.Printf("\n(note: %s)\n", outcome.Forced)
	}
	fmt.Printf("\n[%d iterations, tools: %s]\n", outcome.Iterations, strings.Join(outcome.ToolSequence, " -> "))

	if outcome.Cancelled {
		os.Exit(130)
	}
	return nil
}
