package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/bordertrade/internal/calculator"
)

func newMembersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "members GROUP_ID",
		Short: "List a group's residents with their eligibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.open()
			if err != nil {
				return err
			}
			defer p.Close()

			asOf, err := root.day()
			if err != nil {
				return err
			}
			pool, err := p.ListResidents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			members := calculator.GroupMembers(pool, args[0], asOf)

			out := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(out, members)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSCORE\tUSAGE\tSTATUS\tELIGIBLE")
			for _, m := range members {
				eligible := "yes"
				if !m.Eligible {
					eligible = string(m.Reason)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					m.ID, m.Name, m.ActiveScore, m.MonthlyUsageCount, m.Status, eligible)
			}
			return tw.Flush()
		},
	}
}
