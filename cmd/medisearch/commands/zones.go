package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"medisearch-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(zonesCmd)
}

var zonesCmd = &cobra.Command{
	Use:   "zones <source>",
	Short: "Lists the communes a source's zone table can resolve.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		zoneTable, err := loadZoneTable(cfg, args[0])
		if err != nil {
			serviceutil.Fatal("failed to load zone table", err)
		}

		out := newTable()
		out.AppendHeader(table.Row{"region", "commune", "zone id"})
		for _, zone := range zoneTable.Communes() {
			out.AppendRow(table.Row{zone.Region, zone.Commune, zone.ZoneID})
		}
		out.Render()
	},
}
