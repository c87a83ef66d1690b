// Package commands holds the medisearch CLI: scraping category lists
// into a product database, querying per-branch stock and inspecting
// the zone reference tables.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"medisearch-backend/lib/configutil"
	"medisearch-backend/lib/dictionary"
	"medisearch-backend/lib/zones"
)

var rootCmd = &cobra.Command{
	Use:   "medisearch",
	Short: "medisearch scrapes Chilean pharmacy catalogs into canonical product records.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Config is the CLI's medisearch.json5, found by walking up from the
// working directory.
type Config struct {
	// Dictionaries is the directory holding labs.json, forms.json and
	// units.json.
	Dictionaries string `json:"dictionaries"`
	// Zones is the directory holding one <source>.json zone table per
	// source.
	Zones string `json:"zones"`
	// Workers sizes the scrape worker pool.
	Workers int `json:"workers"`
	// Database is the sqlite path scrape results go to.
	Database string `json:"database"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config]("medisearch.json5")
	if err != nil {
		return Config{}, fmt.Errorf("read medisearch.json5: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.Database == "" {
		cfg.Database = "results.db"
	}
	return cfg, nil
}

func loadDictionaries(cfg Config) (dictionary.Set, error) {
	return dictionary.LoadSet(cfg.Dictionaries)
}

func loadZoneTable(cfg Config, source string) (zones.Table, error) {
	return zones.Load(fmt.Sprintf("%s/%s.json", cfg.Zones, source))
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
