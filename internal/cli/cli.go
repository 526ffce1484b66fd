package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/internal/api"
)

const (
	clientTimeout = 30 * time.Second
)

var (
	rootCmd = &cobra.Command{
		Use:          "sentinel",
		Short:        "UPI payment screening with a proof-of-work audit ledger",
		SilenceUsage: true,
	}
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().String("api-addr", "localhost:8080", "address of a running daemon")
	viper.BindPFlag("api_addr", rootCmd.PersistentFlags().Lookup("api-addr"))

	regCommands()

	return rootCmd.Execute()
}

func newClient() (*api.Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	return api.NewClient(viper.GetString("api_addr")), ctx, cancel
}

// waitExit is done on SIGINT, SIGTERM or when ctx is cancelled
func waitExit(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
