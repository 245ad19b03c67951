package main

import (
	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/tui"
	"github.com/spf13/cobra"
)

func (a *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive Add & Connect form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *cli) runTUI(cmd *cobra.Command) error {
	page := intake.NewPage(a.backend(), a.options())
	return tui.Run(cmd.Context(), page)
}
