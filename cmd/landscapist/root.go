package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "landscapist [source]",
		Short:         "landscapist fetches and renders images in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A bare source argument behaves like `landscapist view`.
			if len(args) == 1 {
				return runView(cmd, flags, viewOptions{}, args[0])
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newViewCmd(flags))
	cmd.AddCommand(newCacheCmd(flags))
	cmd.AddCommand(newFormatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
