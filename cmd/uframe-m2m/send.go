package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kerfoot/uframe-m2m/pkg/metrics"
	"github.com/kerfoot/uframe-m2m/pkg/sender"
)

func newSendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Dispatch synthesized request URLs to the gateway",
		ArgsUsage: "[url ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read URLs from this file, one per line",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "concurrent requests",
			},
			&cli.IntFlag{
				Name:  "rate",
				Usage: "cap dispatches at this many requests per second",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve Prometheus metrics on this address while the batch runs",
			},
		},
		Action: sendAction,
	}
}

func sendAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	urls := cmd.Args().Slice()
	if path := cmd.String("file"); path != "" {
		fromFile, err := readURLFile(path)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to send: pass them as arguments or with --file")
	}

	workers := cfg.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}
	rateLimit := cfg.RateLimit
	if cmd.IsSet("rate") {
		rateLimit = int(cmd.Int("rate"))
	}
	metricsAddr := cfg.MetricsAddr
	if v := cmd.String("metrics-addr"); v != "" {
		metricsAddr = v
	}

	opts := []sender.Option{
		sender.WithTimeout(cfg.TimeoutDuration()),
		sender.WithLogger(logger),
		sender.WithWorkers(workers),
	}
	if cfg.APIUsername != "" {
		opts = append(opts, sender.WithCredentials(cfg.APIUsername, cfg.APIToken))
	}
	if rateLimit > 0 {
		opts = append(opts, sender.WithRateLimit(rateLimit))
	}
	if metricsAddr != "" {
		rec := metrics.NewPrometheusRecorder()
		opts = append(opts, sender.WithMetrics(rec))

		srv := &http.Server{Addr: metricsAddr, Handler: rec.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	results := sender.New(opts...).Send(ctx, urls)

	if cmd.Bool(csvFlag.Name) {
		records := make([][]string, len(results))
		for i, r := range results {
			records[i] = []string{r.URL, strconv.Itoa(r.StatusCode), r.Err}
		}
		return printCSV(os.Stdout, []string{"url", "status_code", "error"}, records)
	}
	return printJSON(os.Stdout, results)
}

// readURLFile loads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}
