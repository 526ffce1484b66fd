package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/sentinel/internal/api"
	"github.com/tcfw/sentinel/internal/archive"
	"github.com/tcfw/sentinel/internal/config"
	"github.com/tcfw/sentinel/pkg/ledger"
)

var (
	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "Inspect a block archive",
	}

	archive_dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print and verify the blocks held in an archive. The daemon must not hold it open.",
		RunE:  runArchiveDump,
	}
)

func init() {
	archive_dumpCmd.Flags().StringP("path", "p", "", "archive path, defaults to archive.path")
	archive_dumpCmd.Flags().Bool("verify", true, "verify the archived chain with the configured digest and difficulty")
	addOutputFlag(archive_dumpCmd)
}

func runArchiveDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString(config.Cfg_archive_path)
	}
	if path == "" {
		return errors.New("no archive path given")
	}

	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	bs, err := a.All()
	if err != nil {
		return err
	}

	vs := make([]*api.BlockView, len(bs))
	for i, b := range bs {
		vs[i] = api.NewBlockView(b)
	}

	if err := printOutput(cmd, vs); err != nil {
		return err
	}

	if verify, _ := cmd.Flags().GetBool("verify"); !verify {
		return nil
	}

	opts, err := cfg.Ledger().Options()
	if err != nil {
		return err
	}

	l, err := ledger.NewLedger(opts...)
	if err != nil {
		return err
	}

	f := l.VerifyBlocks(bs)
	if !f.Valid {
		return fmt.Errorf("archive invalid at height %d: %s", f.Height, f.Reason)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "archive verified, %d blocks\n", f.Blocks)

	return nil
}
