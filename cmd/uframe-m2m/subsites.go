package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newSubsitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "subsites",
		Usage: "List subsites registered in an inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "inventory",
				Aliases: []string{"i"},
				Usage:   "inventory to list: sensor or deployment",
				Value:   "sensor",
			},
		},
		Action: subsitesAction,
	}
}

func subsitesAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var subsites []string
	switch inventory := cmd.String("inventory"); inventory {
	case "sensor":
		subsites, err = a.client.FetchSensorSubsites(ctx)
	case "deployment":
		subsites, err = a.client.FetchDeploymentSubsites(ctx)
	default:
		return fmt.Errorf("invalid inventory %q: want sensor or deployment", inventory)
	}
	if err != nil {
		return err
	}

	if cmd.Bool(csvFlag.Name) {
		return printLines(os.Stdout, subsites)
	}
	return printJSON(os.Stdout, subsites)
}
