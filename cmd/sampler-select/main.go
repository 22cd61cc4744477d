// Package main is the sampler-select command itself.
package main

import (
	"log"
	"os"

	"github.com/ipa-fxm-rc/moveit-core/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
