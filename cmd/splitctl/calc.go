package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/rounding"
)

func newCalcCmd(v *viper.Viper) *cobra.Command {
	var (
		receiptPath string
		peoplePath  string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate each person's share of a receipt",
		Long: `calc reads a receipt (with item assignments) and a list of people as JSON and
prints each person's subtotal, charges and total, followed by a reconciliation summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var receipt models.Receipt
			if err := readJSON(receiptPath, &receipt); err != nil {
				return fmt.Errorf("read receipt: %w", err)
			}
			var people []models.Person
			if err := readJSON(peoplePath, &people); err != nil {
				return fmt.Errorf("read people: %w", err)
			}

			result, err := calculate(cmd.Context(), v.GetString("server"), &receipt, people)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printSplits(out, result)
		},
	}
	cmd.Flags().StringVarP(&receiptPath, "receipt", "r", "", "receipt JSON file")
	cmd.Flags().StringVarP(&peoplePath, "people", "p", "", "people JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("receipt")
	_ = cmd.MarkFlagRequired("people")
	return cmd
}

func calculate(ctx context.Context, server string, receipt *models.Receipt, people []models.Person) (*api.CalculateSplitsResponse, error) {
	if server == "" {
		splits := calculator.CalculateSplits(receipt, people)
		return &api.CalculateSplitsResponse{
			Splits:  splits,
			Summary: calculator.Summarize(receipt, splits),
		}, nil
	}

	slog.Debug("Calculating remotely", "server", server)
	client := api.NewReceiptServiceClient(http.DefaultClient, server)
	resp, err := client.CalculateSplits(ctx, connect.NewRequest(&api.CalculateSplitsRequest{
		Receipt: receipt,
		People:  people,
	}))
	if err != nil {
		return nil, fmt.Errorf("calculate splits: %w", err)
	}
	return resp.Msg, nil
}

func printSplits(out io.Writer, result *api.CalculateSplitsResponse) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERSON\tSUBTOTAL\tTAX\tTIP\tFEES\tTOTAL\t")
	for _, s := range result.Splits {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			s.PersonName,
			rounding.Round2(s.Subtotal),
			rounding.Round2(s.TaxAmount),
			rounding.Round2(s.TipAmount),
			rounding.Round2(s.FeeAmount),
			rounding.Round2(s.Total),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sum := result.Summary
	fmt.Fprintf(out, "\nsplit total %.2f of receipt total %.2f (drift %.2f)\n", sum.SplitTotal, sum.ReceiptTotal, sum.Drift)
	if !sum.FullyAssigned() {
		fmt.Fprintf(out, "warning: %d unassigned item(s) worth %.2f: %v\n",
			len(sum.UnassignedItemIDs), sum.UnassignedSubtotal, sum.UnassignedItemIDs)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
