package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/internal/api"
	"github.com/tcfw/sentinel/internal/archive"
	"github.com/tcfw/sentinel/internal/config"
	"github.com/tcfw/sentinel/internal/metrics"
	"github.com/tcfw/sentinel/internal/screening"
	"github.com/tcfw/sentinel/internal/sentinel"
	"github.com/tcfw/sentinel/internal/utils/logging"
	"github.com/tcfw/sentinel/pkg/ledger"
)

const (
	shutdownTimeout = 10 * time.Second
)

var (
	daemonCmd = &cobra.Command{
		Use:   "daemon",
		RunE:  runDaemon,
		Short: "run the screening daemon and its API",
	}
)

func init() {
	daemonCmd.Flags().StringP("listen", "l", "", "api listen address, overrides api.listen")
	viper.BindPFlag(config.Cfg_api_listen, daemonCmd.Flags().Lookup("listen"))

	daemonCmd.Flags().Int("difficulty", 0, "leading zero hex characters required, overrides ledger.difficulty")
	viper.BindPFlag(config.Cfg_ledger_difficulty, daemonCmd.Flags().Lookup("difficulty"))

	daemonCmd.Flags().String("archive", "", "pebble archive path, overrides archive.path")
	viper.BindPFlag(config.Cfg_archive_path, daemonCmd.Flags().Lookup("archive"))
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	m := metrics.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m.Register(reg)

	opts, err := cfg.Ledger().Options()
	if err != nil {
		return errors.Wrap(err, "ledger options")
	}
	opts = append(opts, ledger.WithObserver(m))

	if cfg.Archive().Enabled() {
		a, err := archive.Open(cfg.Archive().Path)
		if err != nil {
			return err
		}
		defer a.Close()

		opts = append(opts, ledger.WithArchive(a))
	}

	l, err := ledger.NewLedger(opts...)
	if err != nil {
		return errors.Wrap(err, "initing ledger")
	}

	sealer := ledger.NewSealer(l, cfg.Ledger().QueueSize)
	sealer.Start(ctx)
	defer sealer.Stop()

	svc := sentinel.New(sealer, cfg.Screening().Screener(screening.WithObserver(m)))

	a, err := api.NewAPI(svc,
		api.WithMetrics(reg),
		api.WithCORS(cfg.API().CORSOrigins),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		logging.Entry().WithField("addr", cfg.API().Listen).Info("starting API")
		if err := a.ListenAndServe(cfg.API().Listen); err != nil {
			errCh <- err
		}
	}()

	exit, stop := waitExit(ctx)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-exit.Done():
		logging.Entry().Info("shutting down")

		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()

		return a.Shutdown(sctx)
	}
}
