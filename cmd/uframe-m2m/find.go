package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/query"
)

func newFindCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find instruments whose streams carry matching parameters",
		ArgsUsage: "<term> [term ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "array",
				Aliases: []string{"a"},
				Usage:   "restrict to reference designators with this prefix, e.g. CE",
			},
			&cli.StringFlag{
				Name:    "refdes",
				Aliases: []string{"r"},
				Usage:   "restrict to reference designators containing this substring",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "restrict to streams of this exact telemetry method",
			},
		},
		Action: findAction,
	}
}

func findAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("expected at least 1 search term")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	toc, err := a.client.FetchTOC(ctx)
	if err != nil {
		return err
	}

	matches := query.FindStreamsByParameter(toc, cmd.Args().Slice(), query.FindOptions{
		Array:     cmd.String("array"),
		RefDes:    cmd.String("refdes"),
		Telemetry: cmd.String("method"),
	})

	if cmd.Bool(csvFlag.Name) {
		records := make([][]string, len(matches))
		for i, m := range matches {
			records[i] = []string{
				m.ReferenceDesignator,
				strings.Join(m.Streams, ";"),
				strings.Join(m.Parameters, ";"),
			}
		}
		return printCSV(os.Stdout, []string{"reference_designator", "streams", "parameters"}, records)
	}
	return printJSON(os.Stdout, matches)
}
