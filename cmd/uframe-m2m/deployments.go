package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/query"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// deploymentRow is one deployment event annotated for listing: formatted
// timestamps beside the wire epoch milliseconds, plus the activity at the
// evaluation instant.
type deploymentRow struct {
	ReferenceDesignator string  `json:"reference_designator"`
	DeploymentNumber    int     `json:"deployment_number"`
	EventID             int64   `json:"event_id"`
	Active              bool    `json:"active"`
	EventStartTs        string  `json:"event_start_ts"`
	EventStopTs         *string `json:"event_stop_ts"`
	EventStartMs        *int64  `json:"event_start_ms"`
	EventStopMs         *int64  `json:"event_stop_ms"`
}

func deploymentHeaders() []string {
	return []string{
		"reference_designator", "deployment_number", "event_id", "active",
		"event_start_ts", "event_stop_ts", "event_start_ms", "event_stop_ms",
	}
}

func (r deploymentRow) record() []string {
	stopTs := ""
	if r.EventStopTs != nil {
		stopTs = *r.EventStopTs
	}
	startMs, stopMs := "", ""
	if r.EventStartMs != nil {
		startMs = strconv.FormatInt(*r.EventStartMs, 10)
	}
	if r.EventStopMs != nil {
		stopMs = strconv.FormatInt(*r.EventStopMs, 10)
	}
	return []string{
		r.ReferenceDesignator,
		strconv.Itoa(r.DeploymentNumber),
		strconv.FormatInt(r.EventID, 10),
		strconv.FormatBool(r.Active),
		r.EventStartTs,
		stopTs,
		startMs,
		stopMs,
	}
}

func buildDeploymentRows(events []uframe.DeploymentEvent, now time.Time) []deploymentRow {
	rows := make([]deploymentRow, 0, len(events))
	for _, ev := range events {
		row := deploymentRow{
			ReferenceDesignator: ev.ReferenceDesignator.String(),
			DeploymentNumber:    ev.DeploymentNumber,
			EventID:             ev.EventID,
			Active:              ev.ActiveAt(now),
			EventStartTs:        ev.StartTs(),
			EventStartMs:        ev.EventStartTime,
			EventStopMs:         ev.EventStopTime,
		}
		if ts := ev.StopTs(); ts != "" {
			row.EventStopTs = &ts
		}
		rows = append(rows, row)
	}
	return rows
}

func newDeploymentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "deployments",
		Usage:     "List deployment events for matching instruments",
		ArgsUsage: "<ref-des-pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "keep deployments by status: active, inactive or all",
				Value:   "all",
			},
		},
		Action: deploymentsAction,
	}
}

func deploymentsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: reference designator or partial match")
	}

	status, err := uframe.ParseDeploymentStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	catalog, err := a.client.Catalog(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var rows []deploymentRow
	for _, refDes := range query.Resolve(catalog, cmd.Args().First()) {
		events, err := a.client.FetchInstrumentDeployments(ctx, refDes)
		if err != nil {
			return err
		}
		rows = append(rows, buildDeploymentRows(uframe.FilterByStatus(events, status, now), now)...)
	}

	if cmd.Bool(csvFlag.Name) {
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = r.record()
		}
		return printCSV(os.Stdout, deploymentHeaders(), records)
	}
	return printJSON(os.Stdout, rows)
}
