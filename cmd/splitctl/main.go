// Command splitctl splits a receipt from the command line, locally or against a server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/receiptsplit/pkg/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "splitctl",
		Short: "Split a receipt between people",
		Long: `splitctl computes who owes what for a receipt.

Items are divided equally among the people assigned to them; tax, tip and fees are
shared in proportion to each person's item subtotal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Setup(v.GetString("log_level"))
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("server", "", "ReceiptService base URL; computes locally when empty")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	v.SetEnvPrefix("SPLITCTL")
	v.AutomaticEnv()

	root.AddCommand(newCalcCmd(v))
	root.AddCommand(newDistributeCmd(v))
	root.AddCommand(newRoundCmd(v))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
