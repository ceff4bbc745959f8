package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/wippyai/refkit/internal/stress"
	"github.com/wippyai/refkit/intrusive"
	"github.com/wippyai/refkit/metrics"
)

// NewRefStressCommand creates the refstress root command.
func NewRefStressCommand(ctx context.Context) *cobra.Command {
	options := newOptions()

	cmd := &cobra.Command{
		Use:   "refstress [scenario...]",
		Short: "refstress hammers intrusive ownership with concurrent scenarios",
		Long: "refstress races weak promotions against final releases, interleaves weak\n" +
			"handle traffic and churns handle tables, then reports every lifetime\n" +
			"violation it observed. With no arguments all scenarios run.",
		SilenceUsage: true,
		Args:         cobra.OnlyValidArgs,
		ValidArgs:    stress.Scenarios(),

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.Complete(); err != nil {
				return err
			}
			defer func() { _ = options.log.Sync() }()
			return options.run(ctx, cmd, args)
		},
	}

	options.AddFlags(cmd.Flags())
	cmd.AddCommand(newScenariosCommand())

	return cmd
}

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range stress.Scenarios() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func (o *options) run(ctx context.Context, cmd *cobra.Command, scenarios []string) error {
	intrusive.SetLogger(o.log.Named("intrusive"))
	defer intrusive.SetLogger(nil)

	runner, err := stress.NewRunner(o.config, o.log.Named("stress"))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if o.metricsAddr != "" {
		metrics.Enable(prometheus.DefaultRegisterer)
		defer intrusive.SetObserver(nil)
		runner.ObserveTables(metrics.Recorder{})

		srv = &http.Server{
			Addr:              o.metricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		eg.Go(func() error {
			o.log.Info("serving metrics", zap.String("addr", o.metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	var (
		results []stress.Result
		runErr  error
	)
	eg.Go(func() error {
		if srv != nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
		results, runErr = runner.Run(ctx, scenarios...)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styled := !o.plain && out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Fprint(out, renderReport(results, o.config, styled))

	return runErr
}
