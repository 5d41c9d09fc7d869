package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/rounding"
)

func newDistributeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <total> <count>",
		Short: "Divide a total into count cent-exact shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid total %q: %w", args[0], err)
			}
			count, err := strconv.Atoi(args[1])
			if err != nil || count < 1 {
				return fmt.Errorf("invalid count %q: must be a positive integer", args[1])
			}

			amounts, err := distribute(cmd.Context(), v.GetString("server"), total, count)
			if err != nil {
				return err
			}
			return printAmounts(cmd.OutOrStdout(), amounts)
		},
	}
}

func newRoundCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "round <target> <amount>...",
		Short: "Round amounts to cents so they sum to the target",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", args[0], err)
			}
			amounts := make([]float64, len(args)-1)
			for i, a := range args[1:] {
				if amounts[i], err = strconv.ParseFloat(a, 64); err != nil {
					return fmt.Errorf("invalid amount %q: %w", a, err)
				}
			}

			if server := v.GetString("server"); server != "" {
				client := api.NewReceiptServiceClient(http.DefaultClient, server)
				resp, err := client.RoundToMatch(cmd.Context(), connect.NewRequest(&api.RoundToMatchRequest{Amounts: amounts, Target: target}))
				if err != nil {
					return fmt.Errorf("round to match: %w", err)
				}
				return printAmounts(cmd.OutOrStdout(), resp.Msg.Amounts)
			}
			return printAmounts(cmd.OutOrStdout(), rounding.RoundToMatch(amounts, target))
		},
	}
}

func distribute(ctx context.Context, server string, total float64, count int) ([]float64, error) {
	if server == "" {
		return rounding.Distribute(total, count), nil
	}
	client := api.NewReceiptServiceClient(http.DefaultClient, server)
	resp, err := client.Distribute(ctx, connect.NewRequest(&api.DistributeRequest{Total: total, Count: count}))
	if err != nil {
		return nil, fmt.Errorf("distribute: %w", err)
	}
	return resp.Msg.Amounts, nil
}

func printAmounts(out io.Writer, amounts []float64) error {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = strconv.FormatFloat(a, 'f', 2, 64)
	}
	_, err := fmt.Fprintln(out, strings.Join(parts, " "))
	return err
}
