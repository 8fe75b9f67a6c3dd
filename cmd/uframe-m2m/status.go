package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/status"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

func newStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Report deployment and particle coverage per instrument stream",
		ArgsUsage: "[ref-des-pattern]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "keep deployments by status: active, inactive or all",
				Value:   "all",
			},
			&cli.StringFlag{
				Name:  "stream",
				Usage: "restrict to an exact stream name",
			},
			&cli.StringFlag{
				Name:  "telemetry",
				Usage: "restrict to telemetry methods containing this substring",
			},
		},
		Action: statusAction,
	}
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	deployStatus, err := uframe.ParseDeploymentStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	reporter := status.NewReporter(a.client,
		status.WithLogger(a.logger),
		status.WithConcurrency(a.cfg.Workers))

	rows, err := reporter.Report(ctx, cmd.Args().First(), status.Filter{
		Status:    deployStatus,
		Stream:    cmd.String("stream"),
		Telemetry: cmd.String("telemetry"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool(csvFlag.Name) {
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = r.Record()
		}
		return printCSV(os.Stdout, status.Headers(), records)
	}
	return printJSON(os.Stdout, rows)
}
