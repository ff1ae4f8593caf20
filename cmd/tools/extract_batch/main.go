package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/tender-radar/internal/db"
	"github.com/david/tender-radar/internal/ingest"
)

func main() {
	limit := flag.Int("limit", 100, "Max notices to process")
	force := flag.Bool("force", false, "Reprocess notices that already have a terminal status")
	timeoutMin := flag.Int("timeout-min", 30, "Batch timeout in minutes")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutMin)*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	registry, err := ingest.LoadRegistry("internal/ingest/config/sources.yaml")
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}
	fetchCfg := ingest.FetchConfig{}
	if len(registry.Sources) > 0 {
		fetchCfg = registry.Sources[0].Fetch
	}

	pipeline := ingest.NewPipeline(pool, ingest.NewPoliteFetcher(fetchCfg))
	stats, err := pipeline.ProcessBatch(ctx, *limit, *force, "cli")
	if err != nil {
		log.Printf("Batch ended with error: %v", err)
	}
	if stats == nil {
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Total", "OK", "Empty Text", "Download Failed", "Exceptions"})
	t.AppendRow(table.Row{stats.Total, stats.OK, stats.EmptyText, stats.DownloadFailed, stats.Exceptions})
	t.Render()

	if stats.Failed() > 0 {
		os.Exit(1)
	}
}
