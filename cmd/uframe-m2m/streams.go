package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/query"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// streamRow is one stream annotated with the instrument it belongs to.
type streamRow struct {
	ReferenceDesignator string `json:"reference_designator"`
	Stream              string `json:"stream"`
	Method              string `json:"method"`
	Count               int64  `json:"count"`
	BeginTime           string `json:"beginTime"`
	EndTime             string `json:"endTime"`
}

func streamHeaders() []string {
	return []string{"reference_designator", "stream", "method", "count", "beginTime", "endTime"}
}

func (r streamRow) record() []string {
	return []string{
		r.ReferenceDesignator, r.Stream, r.Method,
		strconv.FormatInt(r.Count, 10), r.BeginTime, r.EndTime,
	}
}

func buildStreamRows(refDes string, streams []uframe.Stream) []streamRow {
	rows := make([]streamRow, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, streamRow{
			ReferenceDesignator: refDes,
			Stream:              s.Name,
			Method:              s.Method,
			Count:               s.Count,
			BeginTime:           s.BeginTime,
			EndTime:             s.EndTime,
		})
	}
	return rows
}

func newStreamsCommand() *cli.Command {
	return &cli.Command{
		Name:      "streams",
		Usage:     "List the streams produced by matching instruments",
		ArgsUsage: "<ref-des-pattern>",
		Action:    streamsAction,
	}
}

func streamsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: reference designator or partial match")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	catalog, err := a.client.Catalog(ctx)
	if err != nil {
		return err
	}

	var rows []streamRow
	for _, refDes := range query.Resolve(catalog, cmd.Args().First()) {
		rd, err := uframe.ParseRefDes(refDes)
		if err != nil {
			return err
		}
		streams, err := a.client.FetchInstrumentStreams(ctx, rd)
		if err != nil {
			return err
		}
		rows = append(rows, buildStreamRows(refDes, streams)...)
	}

	if cmd.Bool(csvFlag.Name) {
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = r.record()
		}
		return printCSV(os.Stdout, streamHeaders(), records)
	}
	return printJSON(os.Stdout, rows)
}
