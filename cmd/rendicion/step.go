package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/garyjia/rendicion/internal/domain/receipt"
)

func stepCmd() *cobra.Command {
	var country, amount string

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Print the accounting step of an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			c, ok := receipt.ParseCountry(country)
			if !ok {
				return fmt.Errorf("unknown country %q", country)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), int(receipt.ClassifyStep(c, value)))
			return err
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "country code (ARG, CHL, URY)")
	cmd.Flags().StringVar(&amount, "amount", "", "expense amount")
	_ = cmd.MarkFlagRequired("country")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
