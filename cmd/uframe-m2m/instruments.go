package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func newInstrumentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "instruments",
		Usage:     "List instruments registered in the sensor inventory",
		ArgsUsage: "[ref-des-pattern]",
		Action:    instrumentsAction,
	}
}

func instrumentsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	catalog, err := a.client.Catalog(ctx)
	if err != nil {
		return err
	}
	matches := catalog.Match(cmd.Args().First())

	if cmd.Bool(csvFlag.Name) {
		return printLines(os.Stdout, matches)
	}
	return printJSON(os.Stdout, matches)
}
