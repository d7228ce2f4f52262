package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/bordertrade/internal/calculator"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		mode      string
		group     string
		split     string
		fee       string
		members   []string
		grabCount int
	)
	cmd := &cobra.Command{
		Use:   "preview ORDER_ID",
		Short: "Preview how an order would be split among residents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := root.open()
			if err != nil {
				return err
			}
			defer p.Close()

			order, err := p.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			asOf, err := root.day()
			if err != nil {
				return err
			}

			opts := calculator.AllocationOptions{AsOf: &asOf}
			flags := cmd.Flags()
			if flags.Changed("mode") {
				m := calculator.Mode(mode)
				opts.Mode = &m
			}
			if flags.Changed("group") {
				opts.GroupID = &group
			}
			if flags.Changed("split") {
				d, err := decimal.NewFromString(split)
				if err != nil {
					return fmt.Errorf("invalid --split: %w", err)
				}
				opts.SplitValue = &d
			}
			if flags.Changed("fee") {
				d, err := decimal.NewFromString(fee)
				if err != nil {
					return fmt.Errorf("invalid --fee: %w", err)
				}
				opts.ResidentFee = &d
			}
			if flags.Changed("grab-count") {
				opts.GrabCount = &grabCount
			}
			opts.ManualMemberIDs = members

			cfg := opts.Apply(calculator.DefaultAllocationConfig(*order, ""))
			pool, err := p.ListResidents(ctx, cfg.GroupID)
			if err != nil {
				return err
			}
			preview, err := calculator.PreviewAllocation(*order, pool, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(out, preview)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tFEE\tSTATUS")
			for _, l := range preview.Lines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Amount, l.Fee, l.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			s := preview.Summary
			fmt.Fprintf(out, "required=%d count=%d total=%s diff=%s valid=%t\n",
				preview.Required, s.Count, s.Total, s.Diff, s.Valid)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(calculator.ModeAuto), "Allocation mode: auto, manual or grab")
	cmd.Flags().StringVar(&group, "group", "", "Group whose residents are allocated")
	cmd.Flags().StringVar(&split, "split", calculator.DefaultSplitValue.String(), "Quota amount per resident line")
	cmd.Flags().StringVar(&fee, "fee", "", "Service fee shown on each line")
	cmd.Flags().StringSliceVar(&members, "members", nil, "Resident IDs for manual mode, in order")
	cmd.Flags().IntVar(&grabCount, "grab-count", 0, "Number of grab slots (default: enough to cover the order)")
	return cmd
}
