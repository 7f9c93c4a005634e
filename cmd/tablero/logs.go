package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent server activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		text, err := client.Logs().Tail(ctx)
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}
