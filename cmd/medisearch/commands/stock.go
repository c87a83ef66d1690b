package commands

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/render"
	"medisearch-backend/lib/scrapers/ahumada"
	"medisearch-backend/lib/scrapers/cruzverde"
	"medisearch-backend/lib/scrapers/salcobrand"
	"medisearch-backend/lib/serviceutil"
	"medisearch-backend/lib/stock"
)

var stockLocalID *string

func init() {
	stockLocalID = stockCmd.Flags().String("id", "", "Product id/sku when the URL does not carry it.")
	rootCmd.AddCommand(stockCmd)
}

func newStockRegistry(cfg Config, renderer render.Renderer) (*stock.Registry, error) {
	registry := stock.NewRegistry()

	ahumadaZones, err := loadZoneTable(cfg, string(catalog.SourceAhumada))
	if err != nil {
		return nil, err
	}
	registry.Register(catalog.SourceAhumada, ahumada.NewStockLocator(renderer, ahumadaZones))

	cruzverdeClient, salcobrandClient, err := newAPIClients(renderer)
	if err != nil {
		return nil, err
	}

	cruzverdeZones, err := loadZoneTable(cfg, string(catalog.SourceCruzVerde))
	if err != nil {
		return nil, err
	}
	registry.Register(catalog.SourceCruzVerde, cruzverde.NewStockLocator(cruzverdeClient, cruzverdeZones))

	salcobrandZones, err := loadZoneTable(cfg, string(catalog.SourceSalcobrand))
	if err != nil {
		return nil, err
	}
	registry.Register(catalog.SourceSalcobrand, salcobrand.NewStockLocator(salcobrandClient, salcobrandZones))

	return registry, nil
}

var stockCmd = &cobra.Command{
	Use:   "stock <product url> <commune> [--id <local id>]",
	Short: "Checks per-branch availability of a product near a commune.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		renderer, err := render.NewHTTPRenderer("cmd/medisearch:stock")
		if err != nil {
			serviceutil.Fatal("failed to create renderer", err)
		}
		registry, err := newStockRegistry(cfg, renderer)
		if err != nil {
			serviceutil.Fatal("failed to build stock registry", err)
		}
		locator := stock.NewCachedLocator(registry, time.Minute)

		records, err := locator.Locate(cmd.Context(), stock.ProductRef{
			URL:     args[0],
			LocalID: *stockLocalID,
		}, args[1])
		if err != nil {
			serviceutil.Fatal("failed to locate stock", err)
		}

		out := newTable()
		out.AppendHeader(table.Row{"branch", "quantity", "available"})
		for _, record := range records {
			quantity := ""
			if record.HasQuantity {
				quantity = strconv.Itoa(record.Quantity)
			}
			out.AppendRow(table.Row{record.Branch, quantity, record.Available})
		}
		out.AppendFooter(table.Row{"summary", "", stock.Summarize(records).String()})
		out.Render()
	},
}
