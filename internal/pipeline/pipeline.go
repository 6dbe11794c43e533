package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/fystack/keno-odds/internal/expectedvalue"
	"github.com/fystack/keno-odds/internal/payout"
	"github.com/fystack/keno-odds/internal/probability"
	"github.com/fystack/keno-odds/internal/report"
	"github.com/fystack/keno-odds/pkg/common/config"
	"github.com/fystack/keno-odds/pkg/common/logger"
)

// Clock is replaced in tests.
var Clock = time.Now

// PayoutTable returns the configured payout schedule, or the reference one.
func PayoutTable(cfg config.PayoutCfg) (payout.Table, error) {
	if cfg.File == "" {
		logger.Info("Using reference payout table", "name", payout.DefaultName)
		return payout.Default(), nil
	}
	tbl, err := payout.Load(cfg.File)
	if err != nil {
		return payout.Table{}, err
	}
	logger.Info("Payout table loaded", "file", cfg.File, "name", tbl.Name())
	return tbl, nil
}

// Compute builds the probability matrix and prices every bet. The EV pass
// starts only after NewMatrix has returned a complete matrix.
func Compute(cfg config.ComputeCfg, tbl payout.Table) (probability.Matrix, expectedvalue.Vector) {
	var opts []probability.Option
	if cfg.Workers > 1 {
		opts = append(opts, probability.WithWorkers(cfg.Workers))
	}
	if logger.Enabled(slog.LevelDebug) {
		opts = append(opts, probability.WithTrace(func(marked, caught int, p float64) {
			logger.Debug("Keno probability", "marked", marked, "caught", caught, "p", p)
		}))
	}

	logger.Info("Calculating Keno probabilities", "spots", probability.MaxSpots, "workers", cfg.Workers)
	m := probability.NewMatrix(opts...)

	logger.Info("Calculating expected values", "spots", expectedvalue.MaxSpots)
	ev := expectedvalue.Compute(m, tbl)

	return m, ev
}

// Run computes both tables once and writes the report to sink.
func Run(ctx context.Context, cfg *config.Config, sink report.Sink) (*report.Report, error) {
	tbl, err := PayoutTable(cfg.Payout)
	if err != nil {
		return nil, err
	}

	m, ev := Compute(cfg.Compute, tbl)
	r := report.New(m, ev, tbl, Clock())
	logger.Info("Report computed", "id", r.ID)

	if err := sink.Write(ctx, r); err != nil {
		return r, err
	}
	return r, nil
}
