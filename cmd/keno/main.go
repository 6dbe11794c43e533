package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fystack/keno-odds/internal/pipeline"
	"github.com/fystack/keno-odds/internal/probability"
	"github.com/fystack/keno-odds/internal/report"
	"github.com/fystack/keno-odds/pkg/common/config"
	"github.com/fystack/keno-odds/pkg/common/logger"
	"github.com/fystack/keno-odds/pkg/infra"
)

type rootFlags struct {
	configPath string
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatal("Command failed", "err", err)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "keno",
		Short:         "Keno probability matrix and expected value calculator.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "configs/config.yaml", "Path to config file.")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logs.")

	root.AddCommand(
		newComputeCmd(flags),
		newProbabilityCmd(),
		newShowCmd(flags),
		newDeleteCmd(flags),
		newListenCmd(),
	)
	return root
}

func newComputeCmd(flags *rootFlags) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the probability matrix and expected values and write the report.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closeLog, err := setup(flags)
			if err != nil {
				return err
			}
			defer closeLog()

			if cmd.Flags().Changed("workers") {
				cfg.Compute.Workers = workers
			}
			return runCompute(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Fill matrix rows with this many workers.")
	return cmd
}

func runCompute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	sink, closeSinks, err := pipeline.BuildSinks(ctx, cfg, pipeline.Deps{Out: out})
	if err != nil {
		logger.Error("Build report sinks failed", "err", err)
		return err
	}
	defer closeSinks()

	r, err := pipeline.Run(ctx, cfg, sink)
	if err != nil {
		logger.Error("Compute report failed", "err", err)
		return err
	}
	logger.Info("Done", "id", r.ID, "sink", sink.Name())
	return nil
}

func newProbabilityCmd() *cobra.Command {
	var marked, caught int

	cmd := &cobra.Command{
		Use:   "probability",
		Short: "Print the probability of catching exactly --caught of --marked spots.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if marked < 1 || marked > probability.MaxSpots {
				return fmt.Errorf("marked must be in 1..%d, got %d", probability.MaxSpots, marked)
			}
			if caught < 0 || caught > probability.MaxSpots {
				return fmt.Errorf("caught must be in 0..%d, got %d", probability.MaxSpots, caught)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d Spot(s) Marked, %d Ball(s) Caught: %v\n",
				marked, caught, probability.Probability(marked, caught))
			return nil
		},
	}
	cmd.Flags().IntVar(&marked, "marked", 0, "Number of spots marked.")
	cmd.Flags().IntVar(&caught, "caught", 0, "Number of marked spots caught.")
	_ = cmd.MarkFlagRequired("marked")
	_ = cmd.MarkFlagRequired("caught")
	return cmd
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	var (
		id   string
		list bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored report. Defaults to the latest one.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(flags, func(cfg *config.Config, store infra.KVStore) error {
				out := cmd.OutOrStdout()
				if list {
					ids, err := report.IDs(store)
					if err != nil {
						return err
					}
					for _, reportID := range ids {
						fmt.Fprintln(out, reportID)
					}
					return nil
				}

				var (
					r   *report.Report
					err error
				)
				if id == "" {
					r, err = report.LoadLatest(store)
				} else {
					r, err = report.Load(store, id)
				}
				if err != nil {
					return err
				}
				return report.NewConsoleSink(out, cfg.Report.Decimals()).Write(cmd.Context(), r)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Report id to print.")
	cmd.Flags().BoolVar(&list, "list", false, "List stored report ids.")
	return cmd
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a stored report.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(flags, func(_ *config.Config, store infra.KVStore) error {
				if err := report.Delete(store, id); err != nil {
					return err
				}
				logger.Info("Report deleted", "id", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Report id to delete.")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func withStore(flags *rootFlags, fn func(*config.Config, infra.KVStore) error) error {
	cfg, closeLog, err := setup(flags)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := pipeline.OpenKVStore(cfg.KVStore)
	if err != nil {
		logger.Error("Open kvstore failed", "err", err)
		return err
	}
	defer store.Close()

	return fn(cfg, store)
}

// setup loads config and installs the logger. A missing config file falls
// back to the console-only default.
func setup(flags *rootFlags) (*config.Config, func(), error) {
	cfg, err := config.Load(flags.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		slog.Error("Load config failed", "path", flags.configPath, "err", err)
		return nil, nil, err
	}

	level := slog.LevelInfo
	if flags.debug || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &logger.Options{Level: level, TimeFormat: time.RFC3339}
	closeLog := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Error("Open log file failed", "err", err)
			return nil, nil, err
		}
		opts.Writer = f
		opts.NoColor = true
		closeLog = func() { _ = f.Close() }
	}
	logger.Init(opts)
	logger.Info("Config loaded", "env", cfg.Environment, "sinks", cfg.Report.Sinks)

	return cfg, closeLog, nil
}
