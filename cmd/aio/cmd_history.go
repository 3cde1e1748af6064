package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aio-strategy/internal/client"
)

var (
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your recent analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		res, err := api.History(cmd.Context(), token, historyLimit, historyOffset)
		if err != nil {
			return errors.New(client.Message(err))
		}
		if res.Total == 0 {
			fmt.Println("No analyses yet.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tBRAND\tCREATED")
		for _, a := range res.Analyses {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Input.BrandName, a.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of analyses to list (max 100)")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "number of newer analyses to skip")
}
