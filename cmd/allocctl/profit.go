package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/bordertrade/internal/calculator"
	"github.com/mmynk/bordertrade/internal/models"
)

func newProfitCmd(root *rootOptions) *cobra.Command {
	var split, total, rateType, residentValue, groupRatio string
	cmd := &cobra.Command{
		Use:   "profit ORDER_ID",
		Short: "Show how an order's service fee is shared out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.open()
			if err != nil {
				return err
			}
			defer p.Close()

			order, err := p.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			values := map[string]string{
				"split": split, "total-fee": total, "resident-value": residentValue, "group-ratio": groupRatio,
			}
			parsed := make(map[string]decimal.Decimal, len(values))
			for name, v := range values {
				d, err := decimal.NewFromString(v)
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", name, err)
				}
				parsed[name] = d
			}

			cfg := models.DefaultProfitConfig()
			cfg.TotalServiceFee = parsed["total-fee"]
			cfg.ResidentRateType = models.ResidentRateType(rateType)
			cfg.ResidentValue = parsed["resident-value"]
			cfg.GroupRatio = parsed["group-ratio"]

			dist, err := calculator.DistributeProfit(*order, cfg, parsed["split"])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOut {
				return writeJSON(out, dist)
			}
			fmt.Fprintf(out, "residents=%d resident_total=%s group_total=%s agent_total=%s\n",
				dist.EstimatedResidents, dist.ResidentTotal, dist.GroupTotal, dist.AgentTotal)
			return nil
		},
	}

	def := models.DefaultProfitConfig()
	cmd.Flags().StringVar(&split, "split", calculator.DefaultSplitValue.String(), "Quota amount per resident line")
	cmd.Flags().StringVar(&total, "total-fee", "0", "Total service fee of the order")
	cmd.Flags().StringVar(&rateType, "rate-type", string(def.ResidentRateType), "Resident share: fixed or ratio")
	cmd.Flags().StringVar(&residentValue, "resident-value", def.ResidentValue.String(), "Amount per resident (fixed) or percentage (ratio)")
	cmd.Flags().StringVar(&groupRatio, "group-ratio", def.GroupRatio.String(), "Group share in percent")
	return cmd
}
