package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kerfoot/uframe-m2m/pkg/m2m"
	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

func newMetadataCommand() *cli.Command {
	return &cli.Command{
		Name:      "metadata",
		Usage:     "Fetch the full metadata document for an instrument (JSON only)",
		ArgsUsage: "<ref-des>",
		Action:    metadataAction,
	}
}

func newParametersCommand() *cli.Command {
	return &cli.Command{
		Name:      "parameters",
		Usage:     "Fetch the parameter listing for an instrument (JSON only)",
		ArgsUsage: "<ref-des>",
		Action:    parametersAction,
	}
}

func metadataAction(ctx context.Context, cmd *cli.Command) error {
	return fetchRawDocument(ctx, cmd, (*m2m.Client).FetchInstrumentMetadata)
}

func parametersAction(ctx context.Context, cmd *cli.Command) error {
	return fetchRawDocument(ctx, cmd, (*m2m.Client).FetchInstrumentParameters)
}

// fetchRawDocument handles the pass-through commands that print a gateway
// document without interpreting it.
func fetchRawDocument(ctx context.Context, cmd *cli.Command, fetch func(*m2m.Client, context.Context, uframe.RefDes) (json.RawMessage, error)) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: full reference designator")
	}

	rd, err := uframe.ParseRefDes(cmd.Args().First())
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	raw, err := fetch(a.client, ctx, rd)
	if err != nil {
		return err
	}
	return printRawJSON(os.Stdout, raw)
}
