package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wslkit/wslkit/pkg/guides"
)

var guideCmd = &cobra.Command{
	Use:       "guide [name]",
	Short:     MsgGuideShort,
	Long:      `Render a built-in guide. Run without arguments to list them.`,
	ValidArgs: []string{"windows", "recovery", "next-steps"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Available guides:")
			for _, name := range guides.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			return nil
		}
		rendered, err := guides.Render(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}
