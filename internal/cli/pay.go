package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcfw/sentinel/internal/sentinel"
	"github.com/tcfw/sentinel/pkg/payment"
)

var (
	payCmd = &cobra.Command{
		Use:   "pay",
		Short: "Submit a payment for screening",
		RunE:  runPay,
	}

	txsCmd = &cobra.Command{
		Use:   "txs",
		Short: "List screened transactions",
		RunE:  runTxs,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show screening statistics",
		RunE:  runStats,
	}
)

func init() {
	payCmd.Flags().StringP("to", "t", "", "destination VPA")
	payCmd.Flags().Float64P("amount", "a", 0, "amount to pay")
	payCmd.Flags().StringP("category", "c", string(payment.CategoryP2P), "P2P, MERCHANT, BILL_PAY or RELOAD")
	payCmd.Flags().String("from", "", "source VPA")
	payCmd.Flags().String("currency", "", "currency code")
	payCmd.Flags().String("location", "", "location the payment originates from")
	payCmd.Flags().String("device", "", "device fingerprint")
	addOutputFlag(payCmd)

	addOutputFlag(txsCmd)
	addOutputFlag(statsCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	in := &sentinel.NewTransaction{}
	in.To, _ = cmd.Flags().GetString("to")
	in.Amount, _ = cmd.Flags().GetFloat64("amount")
	in.From, _ = cmd.Flags().GetString("from")
	in.Currency, _ = cmd.Flags().GetString("currency")
	in.Location, _ = cmd.Flags().GetString("location")
	in.DeviceFingerprint, _ = cmd.Flags().GetString("device")

	cat, _ := cmd.Flags().GetString("category")
	in.Category = payment.Category(cat)
	if !in.Category.Valid() {
		return errors.Wrapf(payment.ErrInvalidTransaction, "unknown category %q", cat)
	}

	c, ctx, cancel := newClient()
	defer cancel()

	d, err := c.Process(ctx, in)
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}

	if d.Transaction.Status == payment.StatusBlocked {
		fmt.Fprintf(cmd.ErrOrStderr(), "payment %s blocked: %s\n", d.Transaction.ID, d.Assessment.Reason)
	}

	return printOutput(cmd, d)
}

func runTxs(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient()
	defer cancel()

	txs, err := c.Transactions(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching transactions")
	}

	return printOutput(cmd, txs)
}

func runStats(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient()
	defer cancel()

	st, err := c.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching stats")
	}

	return printOutput(cmd, st)
}
