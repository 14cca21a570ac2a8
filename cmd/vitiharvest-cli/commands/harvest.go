package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"vitiharvest-backend/lib/serviceutil"
	"vitiharvest-backend/services/harvest"
	"vitiharvest-backend/services/harvest/query"
	"vitiharvest-backend/services/harvest/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	harvestOption    *string
	harvestYear      *string
	harvestSubOption *string
)

func init() {
	harvestOption = harvestCmd.Flags().String("option", "", "Dataset to harvest (producao, processamento, comercializacao, importacao, exportacao).")
	harvestYear = harvestCmd.Flags().String("year", "", "Year to harvest; defaults to the most recent one published.")
	harvestSubOption = harvestCmd.Flags().String("sub-option", "", "Sub-dataset, when the option has them.")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest --option <option> [--year <year>] [--sub-option <sub>]",
	Short: "Harvests one dataset from the live site, falling back to the snapshot store.",
	Run: func(cmd *cobra.Command, args []string) {
		params := map[string]string{"option": *harvestOption}
		if *harvestYear != "" {
			params["year"] = *harvestYear
		}
		if *harvestSubOption != "" {
			params["sub_option"] = *harvestSubOption
		}

		d, err := query.Validate(params)
		if errors.Is(err, query.ErrValidation) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "run `vitiharvest-cli options` to see valid parameters")
			os.Exit(1)
		}
		if err != nil {
			serviceutil.Fatal("failed to validate parameters", err)
		}

		service, cleanup, err := createService()
		if err != nil {
			serviceutil.Fatal("failed to initialize harvest service", err)
		}
		defer cleanup()

		result, err := service.Harvest(cmd.Context(), d)
		if err != nil {
			serviceutil.Fatal("harvest failed", err)
		}
		renderResult(result)
	},
}

func renderResult(result harvest.Result) {
	fmt.Printf(
		"option=%s year=%s sub_option=%s\n",
		result.OriginalOption, result.OriginalYear, orNone(result.OriginalSubOption),
	)

	w := prettytable.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(toRow(result.Headers))

	switch result.Rows.Kind {
	case table.RowKindCategory:
		for _, group := range result.Rows.Categories {
			w.AppendRow(prettytable.Row{text.Bold.Sprint(group.Key)})
			labels := make([]string, 0, len(group.Entries))
			for label := range group.Entries {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				w.AppendRow(prettytable.Row{label, group.Entries[label]})
			}
		}
	case table.RowKindCountry:
		for _, row := range result.Rows.Countries {
			w.AppendRow(prettytable.Row{row.Country, row.Quantity, row.Value})
		}
	}

	w.AppendFooter(toRow(result.Footers))
	w.Render()
}

func toRow(cells []string) prettytable.Row {
	row := make(prettytable.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
