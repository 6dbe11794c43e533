package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/fystack/keno-odds/internal/report"
	"github.com/fystack/keno-odds/pkg/common/config"
	"github.com/fystack/keno-odds/pkg/common/logger"
)

type listenFlags struct {
	natsURL   string
	subject   string
	logFile   string
	precision int32
}

func newListenCmd() *cobra.Command {
	flags := &listenFlags{}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print reports published on NATS.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Init(&logger.Options{Level: slog.LevelInfo, TimeFormat: time.RFC3339})

			if err := os.MkdirAll(filepath.Dir(flags.logFile), 0o755); err != nil {
				logger.Error("Create log directory failed", "err", err)
				return err
			}
			f, err := os.OpenFile(flags.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				logger.Error("Open log file failed", "err", err)
				return err
			}
			defer f.Close()

			logWriter := io.MultiWriter(cmd.OutOrStdout(), f)

			nc, err := nats.Connect(flags.natsURL)
			if err != nil {
				logger.Error("NATS connect failed", "err", err)
				return err
			}
			defer nc.Close()

			sub, err := nc.Subscribe(flags.subject, reportHandler(logWriter, flags.precision))
			if err != nil {
				logger.Error("NATS subscribe failed", "err", err)
				return err
			}
			defer sub.Unsubscribe()

			logger.Info("Subscribed to", "subject", flags.subject)
			<-cmd.Context().Done()
			logger.Info("Listener stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.natsURL, "nats-url", nats.DefaultURL, "NATS server URL.")
	cmd.Flags().StringVar(&flags.subject, "subject", config.DefaultSubjectPrefix+".>", "NATS subject to subscribe to.")
	cmd.Flags().StringVar(&flags.logFile, "log", filepath.Join("logs", "nats.log"), "Append received reports to this file.")
	cmd.Flags().Int32Var(&flags.precision, "precision", config.DefaultPrecision, "Decimal places for probabilities.")
	return cmd
}

func reportHandler(w io.Writer, precision int32) nats.MsgHandler {
	console := report.NewConsoleSink(w, precision)
	return func(msg *nats.Msg) {
		var r report.Report
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			logger.Error("Unmarshal error", "subject", msg.Subject, "err", err)
			return
		}
		logger.Info("Received report", "subject", msg.Subject, "id", r.ID)
		fmt.Fprintf(w, "[%s]\n", msg.Subject)
		if err := console.Write(context.Background(), &r); err != nil {
			logger.Error("Print report failed", "id", r.ID, "err", err)
		}
	}
}
