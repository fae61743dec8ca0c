package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/visionqc/inspect-cli/internal/model"
	"github.com/visionqc/inspect-cli/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query and manage recorded verdicts",
}

var listLimit int

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded verdicts, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.Fetch(ctx, listLimit)
		if err != nil {
			return err
		}
		return printRecords(recs)
	},
}

var (
	searchFilter store.Filter
	searchLimit  int
)

var resultsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search recorded verdicts by optional, combinable predicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.Search(ctx, searchFilter, searchLimit)
		if err != nil {
			return err
		}
		return printRecords(recs)
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete recorded verdicts by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return eris.Errorf("invalid id %q", a)
			}
			ids = append(ids, id)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Delete(ctx, ids)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d record(s)\n", n)
		return nil
	},
}

func printRecords(recs []model.Record) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

func init() {
	resultsListCmd.Flags().IntVar(&listLimit, "limit", store.DefaultFetchLimit, "max records to return")

	f := resultsSearchCmd.Flags()
	f.StringVar(&searchFilter.Label, "label", "", "exact defect label")
	f.StringVar(&searchFilter.Tier, "severity", "", "exact severity tier (A, B, C)")
	f.StringVar(&searchFilter.Action, "action", "", "exact action")
	f.StringVar(&searchFilter.Zone, "location", "", "location substring")
	f.StringVar(&searchFilter.Keyword, "keyword", "", "substring across file name, detail, location")
	f.StringVar(&searchFilter.DateFrom, "from", "", "inclusive start date (YYYY-MM-DD)")
	f.StringVar(&searchFilter.DateTo, "to", "", "inclusive end date (YYYY-MM-DD)")
	f.IntVar(&searchLimit, "limit", store.DefaultSearchLimit, "max records to return")

	resultsCmd.AddCommand(resultsListCmd, resultsSearchCmd, resultsDeleteCmd)
	rootCmd.AddCommand(resultsCmd)
}
