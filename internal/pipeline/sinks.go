package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fystack/keno-odds/internal/report"
	"github.com/fystack/keno-odds/pkg/common/config"
	"github.com/fystack/keno-odds/pkg/common/constant"
	"github.com/fystack/keno-odds/pkg/common/enum"
	"github.com/fystack/keno-odds/pkg/common/logger"
	"github.com/fystack/keno-odds/pkg/infra"
	"github.com/fystack/keno-odds/pkg/kvstore"
	"github.com/fystack/keno-odds/pkg/retry"
)

const (
	openRetryInterval = 500 * time.Millisecond
	openRetryAttempts = 3
)

// Deps lets callers supply already opened resources. Nil fields are opened
// from config when a sink needs them.
type Deps struct {
	Out     io.Writer
	KVStore infra.KVStore
	Queue   infra.MessageQueue
}

// ReportTopic is the subject reports are published on.
func ReportTopic(cfg config.NatsConfig) string {
	return cfg.SubjectPrefix + "." + constant.ReportSubject
}

// BuildSinks creates the sinks listed in report.sinks. The returned closer
// releases whatever BuildSinks opened itself.
func BuildSinks(ctx context.Context, cfg *config.Config, deps Deps) (report.Sink, func(), error) {
	var (
		sinks   []report.Sink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, kind := range cfg.Report.Sinks {
		switch kind {
		case enum.SinkConsole:
			out := deps.Out
			if out == nil {
				out = os.Stdout
			}
			sinks = append(sinks, report.NewConsoleSink(out, cfg.Report.Decimals()))

		case enum.SinkCSV:
			sinks = append(sinks, report.NewCSVSink(cfg.Report.CSV.Directory, cfg.Report.Decimals()))

		case enum.SinkXLSX:
			sinks = append(sinks, report.NewXLSXSink(cfg.Report.XLSX.Directory))

		case enum.SinkKVStore:
			store := deps.KVStore
			if store == nil {
				s, err := OpenKVStore(cfg.KVStore)
				if err != nil {
					closeAll()
					return nil, nil, fmt.Errorf("open kvstore: %w", err)
				}
				closers = append(closers, func() {
					if err := s.Close(); err != nil {
						logger.Warn("Close kvstore failed", "err", err)
					}
				})
				store = s
			}
			sinks = append(sinks, report.NewKVSink(store))

		case enum.SinkNATS:
			queue := deps.Queue
			if queue == nil {
				nc, err := infra.GetNATSConnection(cfg.NATS, cfg.Environment)
				if err != nil {
					closeAll()
					return nil, nil, fmt.Errorf("connect nats: %w", err)
				}
				closers = append(closers, func() { drain(nc) })

				mgr, err := infra.NewNATsMessageQueueManager(ctx, cfg.NATS.Stream, []string{cfg.NATS.SubjectPrefix + ".>"}, nc)
				if err != nil {
					closeAll()
					return nil, nil, err
				}
				queue = mgr.NewMessageQueue()
				closers = append(closers, queue.Close)
			}
			sinks = append(sinks, report.NewQueueSink(queue, ReportTopic(cfg.NATS)))

		default:
			closeAll()
			return nil, nil, fmt.Errorf("unsupported report sink: %s", kind)
		}
	}

	return report.NewMultiSink(sinks...), closeAll, nil
}

// OpenKVStore opens the configured store, retrying while another process
// holds the Badger directory lock.
func OpenKVStore(cfg config.KVStoreCfg) (infra.KVStore, error) {
	var store infra.KVStore
	err := retry.Constant(func() error {
		s, err := kvstore.NewFromConfig(cfg)
		if err != nil {
			logger.Warn("Open kvstore failed", "dir", cfg.Badger.Directory, "err", err)
			return err
		}
		store = s
		return nil
	}, openRetryInterval, openRetryAttempts)
	return store, err
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		logger.Warn("Drain NATS connection failed", "err", err)
		nc.Close()
	}
}
