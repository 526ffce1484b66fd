package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	chainCmd = &cobra.Command{
		Use:   "chain",
		Short: "Print the sealed chain",
		RunE:  runChain,
	}

	chain_blockCmd = &cobra.Command{
		Use:   "block <height>",
		Short: "Print a single block",
		Args:  cobra.ExactArgs(1),
		RunE:  runChainBlock,
	}

	chain_verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify the chain held by the daemon",
		RunE:  runChainVerify,
	}
)

func init() {
	addOutputFlag(chainCmd)
	addOutputFlag(chain_blockCmd)
	addOutputFlag(chain_verifyCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient()
	defer cancel()

	bs, err := c.Chain(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching chain")
	}

	return printOutput(cmd, bs)
}

func runChainBlock(cmd *cobra.Command, args []string) error {
	h, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.Wrap(err, "parsing height")
	}

	c, ctx, cancel := newClient()
	defer cancel()

	b, err := c.Block(ctx, h)
	if err != nil {
		return errors.Wrapf(err, "fetching block %d", h)
	}

	return printOutput(cmd, b)
}

func runChainVerify(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient()
	defer cancel()

	f, err := c.Verify(ctx)
	if err != nil {
		return errors.Wrap(err, "verifying chain")
	}

	if err := printOutput(cmd, f); err != nil {
		return err
	}

	if !f.Valid {
		return fmt.Errorf("chain invalid at height %d: %s", f.Height, f.Reason)
	}

	return nil
}
