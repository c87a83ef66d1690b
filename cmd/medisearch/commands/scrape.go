package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/pipeline"
	"medisearch-backend/lib/productstore"
	"medisearch-backend/lib/render"
	"medisearch-backend/lib/scrapers"
	"medisearch-backend/lib/scrapers/cruzverde"
	"medisearch-backend/lib/scrapers/salcobrand"
	"medisearch-backend/lib/serviceutil"
)

var scrapeDb *string

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "", "Override the configured results database path.")
	rootCmd.AddCommand(scrapeCmd)
}

func newAPIClients(renderer render.Renderer) (*cruzverde.Client, *salcobrand.Client, error) {
	cruzverdeHTTP, err := render.NewAPIClient(cruzverde.APIBaseURL, "cmd/medisearch:cruzverde")
	if err != nil {
		return nil, nil, err
	}
	cruzverdeClient := cruzverde.NewClient(cruzverde.ClientOptions{
		Http:     cruzverdeHTTP,
		Renderer: renderer,
	})

	salcobrandClient, err := salcobrand.NewClient(salcobrand.ClientOptions{})
	if err != nil {
		return nil, nil, err
	}
	return cruzverdeClient, salcobrandClient, nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <source> <path/to/lists.json> [--db <path/to/results.db>]",
	Short: "Scrapes one source's category lists and writes canonical records to a database.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		source := catalog.SourceID(args[0])

		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		dbPath := cfg.Database
		if *scrapeDb != "" {
			dbPath = *scrapeDb
		}

		dictionaries, err := loadDictionaries(cfg)
		if err != nil {
			serviceutil.Fatal("failed to load dictionaries", err)
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			serviceutil.Fatal("failed to read category lists", err)
		}
		tasks, err := pipeline.ParseCategoryLists(source, data)
		if err != nil {
			serviceutil.Fatal("failed to parse category lists", err)
		}

		// the cruzverde session seed shares one renderer; page
		// renders during extraction use one renderer per worker
		sessionRenderer, err := render.NewHTTPRenderer("cmd/medisearch:session")
		if err != nil {
			serviceutil.Fatal("failed to create renderer", err)
		}
		cruzverdeClient, salcobrandClient, err := newAPIClients(sessionRenderer)
		if err != nil {
			serviceutil.Fatal("failed to create api clients", err)
		}

		normalizer := catalog.Normalizer{Dictionaries: dictionaries}
		factory := func(ctx context.Context) (pipeline.Extractor, error) {
			renderer, err := render.NewHTTPRenderer("cmd/medisearch:worker")
			if err != nil {
				return nil, err
			}
			return scrapers.NewExtractor(scrapers.ExtractorOptions{
				Normalizer: normalizer,
				Renderer:   renderer,
				CruzVerde:  cruzverdeClient,
				Salcobrand: salcobrandClient,
			}), nil
		}

		store, err := productstore.Open(dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer store.Close()

		runID, _ := random.String(8)
		slog.Info("starting scrape",
			"run", runID, "source", source, "tasks", len(tasks), "workers", cfg.Workers)

		t1 := time.Now()
		results := pipeline.NewCoordinator(cfg.Workers, factory).
			Collect(cmd.Context(), tasks)

		type categoryKey struct{ category, subcategory string }
		products := map[categoryKey][]catalog.Product{}
		failed := map[categoryKey]int{}
		for _, result := range results {
			key := categoryKey{result.Task.Category, result.Task.Subcategory}
			if result.Err != nil {
				failed[key]++
				continue
			}
			products[key] = append(products[key], result.Product)
		}

		scrapedAt := time.Now()
		for key, records := range products {
			err := store.Push(cmd.Context(), productstore.PushRequest{
				Time:        scrapedAt,
				Source:      source,
				Category:    key.category,
				Subcategory: key.subcategory,
				Products:    records,
			})
			if err != nil {
				serviceutil.Fatal("failed to push products", err)
			}
		}

		out := newTable()
		out.AppendHeader(table.Row{"category", "subcategory", "scraped", "failed"})
		for key, records := range products {
			out.AppendRow(table.Row{key.category, key.subcategory, len(records), failed[key]})
			delete(failed, key)
		}
		for key, count := range failed {
			out.AppendRow(table.Row{key.category, key.subcategory, 0, count})
		}
		out.Render()

		slog.Info("scraping time", "run", runID, "seconds", time.Since(t1).Seconds())
	},
}
