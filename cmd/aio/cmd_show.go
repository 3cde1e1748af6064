package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aio-strategy/internal/client"
	"github.com/bryanwahyu/aio-strategy/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored analysis by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		rec, err := api.Get(cmd.Context(), args[0])
		if err != nil {
			return errors.New(client.Message(err))
		}
		fmt.Printf("%s  %s  %s\n\n", rec.ID, rec.Input.BrandName, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
		printReport(report.Render(rec.Result))
		return nil
	},
}
