package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glabrego/xkcd-cli/internal/notify"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Announce newly published comics",
	Long: `Poll for the latest comic and announce it when it is newer than the
last one seen. Announcements go to NATS when broker_url is set and to the
log otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := setup(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		var pub notify.Publisher = notify.LogPublisher{Log: e.log}
		if e.cfg.BrokerURL != "" {
			nats, err := notify.NewNATSPublisher(e.log, e.cfg.BrokerURL)
			if err != nil {
				return err
			}
			defer nats.Close()
			pub = nats
		}

		checker := notify.NewChecker(e.log, e.comics, e.repo, pub)
		if watchOnce {
			_, _, err := checker.Check(ctx)
			return err
		}

		e.log.Info("watching for new comics", "interval", e.cfg.WatchInterval)
		watcher := notify.NewWatcher(e.log, checker, e.cfg.WatchInterval)
		watcher.Start(ctx)
		<-ctx.Done()
		watcher.Stop()
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "check once and exit")
	rootCmd.AddCommand(watchCmd)
}
