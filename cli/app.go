// Package cli contains the business logic of the sampler selection command.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagConfig      = "config"
	flagConstraints = "constraints"
	flagGroup       = "group"
	flagSamples     = "samples"
	flagSeed        = "seed"
	flagParallel    = "parallel"
	flagDebug       = "debug"
	flagDefault     = "default-only"
)

// NewApp returns the sampler selection app writing its report to out and its logs to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "sampler-select",
		Usage:           "select a constrained state sampler for a joint group and draw samples from it",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagConstraints,
				Usage:    "read the constraints to satisfy from `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagGroup,
				Aliases:  []string{"g"},
				Usage:    "joint group to sample",
				Required: true,
			},
			&cli.IntFlag{
				Name:    flagSamples,
				Aliases: []string{"n"},
				Usage:   "number of samples to draw",
				Value:   5,
			},
			&cli.Int64Flag{
				Name:  flagSeed,
				Usage: "seed of the random source",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  flagParallel,
				Usage: "number of samples drawn concurrently",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  flagDefault,
				Usage: "skip the configured allocators and run the default decomposition",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Action: SelectAction,
	}
}
