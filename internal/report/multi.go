package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/fystack/keno-odds/pkg/common/logger"
	"github.com/fystack/keno-odds/pkg/common/types"
)

// MultiSink writes to every sink in order and reports all failures together.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return "multi[" + strings.Join(names, ",") + "]"
}

func (m *MultiSink) Write(ctx context.Context, r *Report) error {
	var errs types.MultiError
	for _, s := range m.sinks {
		if err := ctx.Err(); err != nil {
			errs.Add(err)
			break
		}
		if err := s.Write(ctx, r); err != nil {
			logger.Error("Report sink failed", "sink", s.Name(), "err", err)
			errs.Add(fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		logger.Info("Report written", "sink", s.Name(), "id", r.ID)
	}
	return errs.ErrOrNil()
}
