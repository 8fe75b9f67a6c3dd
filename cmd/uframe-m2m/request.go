package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/config"
	"github.com/kerfoot/uframe-m2m/pkg/query"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

func newRequestCommand() *cli.Command {
	return &cli.Command{
		Name:      "request",
		Usage:     "Synthesize data-request URLs for matching instrument streams",
		ArgsUsage: "<ref-des-pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "OOINet user stamped on each request",
				Sources: cli.EnvVars("UFRAME_USER"),
			},
			&cli.StringFlag{
				Name:    "start-date",
				Aliases: []string{"s"},
				Usage:   "explicit window start (ISO-8601)",
			},
			&cli.StringFlag{
				Name:    "end-date",
				Aliases: []string{"e"},
				Usage:   "explicit window end (ISO-8601)",
			},
			&cli.StringFlag{
				Name:  "stream",
				Usage: "restrict to an exact stream name",
			},
			&cli.StringFlag{
				Name:  "telemetry",
				Usage: "restrict to telemetry methods containing this substring",
			},
			&cli.StringFlag{
				Name:  "time-delta-type",
				Usage: "relative window unit: years, months, weeks, days, hours, minutes or seconds",
			},
			&cli.IntFlag{
				Name:  "time-delta-value",
				Usage: "relative window span, back from each stream's recorded end",
			},
			&cli.BoolFlag{
				Name:  "no-time-check",
				Usage: "do not clamp the window to each stream's recorded extent",
			},
			&cli.BoolFlag{
				Name:  "no-dpa",
				Usage: "skip data product algorithms",
			},
			&cli.BoolFlag{
				Name:  "no-provenance",
				Usage: "omit provenance from the served product",
			},
			&cli.BoolFlag{
				Name:  "annotations",
				Usage: "request annotations alongside the product",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "response format: netcdf or json",
				Value:   query.FormatNetCDF,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "decimate to at most this many particles (-1 for the full record)",
				Value: query.NoLimit,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "address notified when the product is ready",
			},
			&cli.BoolFlag{
				Name:    "raw",
				Aliases: []string{"r"},
				Usage:   "print unescaped URLs",
			},
		},
		Action: requestAction,
	}
}

func newDeploymentRequestCommand() *cli.Command {
	return &cli.Command{
		Name:      "deployment-request",
		Usage:     "Synthesize data-request URLs bounded by deployment events",
		ArgsUsage: "<ref-des-pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "OOINet user stamped on each request",
				Sources: cli.EnvVars("UFRAME_USER"),
			},
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
			&cli.BoolFlag{
				Name:  "no-time-check",
				Usage: "do not clamp the window to each stream's recorded extent",
			},
			&cli.BoolFlag{
				Name:  "no-dpa",
				Usage: "skip data product algorithms",
			},
			&cli.BoolFlag{
				Name:  "no-provenance",
				Usage: "omit provenance from the served product",
			},
			&cli.BoolFlag{
				Name:  "annotations",
				Usage: "request annotations alongside the product",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "response format: netcdf or json",
				Value:   query.FormatNetCDF,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "decimate to at most this many particles (-1 for the full record)",
				Value: query.NoLimit,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "address notified when the product is ready",
			},
			&cli.BoolFlag{
				Name:    "raw",
				Aliases: []string{"r"},
				Usage:   "print unescaped URLs",
			},
		},
		Action: deploymentRequestAction,
	}
}

// requestParams assembles query parameters from the command flags, falling
// back to the configuration for the user identity.
func requestParams(cmd *cli.Command, cfg *config.Config) query.Params {
	user := cmd.String("user")
	if user == "" {
		user = cfg.User
	}

	p := query.DefaultParams(user)
	p.Email = cmd.String("email")
	if p.Email == "" {
		p.Email = cfg.Email
	}
	if f := cmd.String("format"); f != "" {
		p.Format = f
	}
	p.Limit = int(cmd.Int("limit"))
	p.Stream = cmd.String("stream")
	p.Telemetry = cmd.String("telemetry")
	p.Begin = cmd.String("start-date")
	p.End = cmd.String("end-date")
	p.DeltaType = cmd.String("time-delta-type")
	p.DeltaValue = int(cmd.Int("time-delta-value"))
	p.TimeCheck = !cmd.Bool("no-time-check")
	p.ExecDPA = !cmd.Bool("no-dpa")
	p.IncludeProvenance = !cmd.Bool("no-provenance")
	p.IncludeAnnotations = cmd.Bool("annotations")
	return p
}

// printReport writes the synthesized URLs, escaped unless --raw, as a
// plain line list in CSV mode or as the full report in JSON mode.
func printReport(cmd *cli.Command, report *query.Report) error {
	urls := report.URLs
	if !cmd.Bool("raw") {
		urls = make([]string, len(report.URLs))
		for i, u := range report.URLs {
			urls[i] = escapeURL(u)
		}
	}

	if cmd.Bool(csvFlag.Name) {
		return printLines(os.Stdout, urls)
	}
	return printJSON(os.Stdout, &query.Report{URLs: urls, Skips: report.Skips})
}

func requestAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: reference designator or partial match")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	b := query.NewBuilder(a.client,
		query.WithLogger(a.logger),
		query.WithConcurrency(a.cfg.Workers))
	report, err := b.Build(ctx, cmd.Args().First(), requestParams(cmd, a.cfg))
	if err != nil {
		return err
	}
	return printReport(cmd, report)
}

func deploymentRequestAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: reference designator or partial match")
	}

	deployStatus, err := uframe.ParseDeploymentStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	b := query.NewBuilder(a.client,
		query.WithLogger(a.logger),
		query.WithConcurrency(a.cfg.Workers))
	report, err := b.BuildDeployments(ctx, cmd.Args().First(), requestParams(cmd, a.cfg), deployStatus, time.Now().UTC())
	if err != nil {
		return err
	}
	return printReport(cmd, report)
}
