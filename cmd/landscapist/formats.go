package main

import (
	"github.com/spf13/cobra"

	"github.com/NCSOPHAL/landscapist"
	"github.com/NCSOPHAL/landscapist/loader"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported image formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, format := range loader.SupportedFormats() {
				notes := "static"
				if format == landscapist.FormatGIF {
					notes = "static and animated"
				}
				rows = append(rows, []string{string(format), notes})
			}

			table := newTable(cmd.OutOrStdout(), []string{"Format", "Notes"})
			table.Bulk(rows)
			table.Render()
			return nil
		},
	}
}
