package main

import (
	"fmt"
	"os"

	lib "github.com/awused/collage-wallpapers/lib"
	"github.com/awused/collage-wallpapers/util/log"
	"github.com/urfave/cli/v2"
)

const (
	configFlag  = "config"
	seedFlag    = "seed"
	tempDirFlag = "temp-dir"
	debugFlag   = "debug"
)

func main() {
	lib.AttachParentConsole()

	app := cli.NewApp()
	app.Name = "collage-wallpapers"
	app.Usage = "Rotates collages of wallpapers on every monitor"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage: "Config file to use instead of searching for collage-wallpapers.toml. " +
				"The file is watched for changes to transition delays",
		},
		&cli.Int64Flag{
			Name:  seedFlag,
			Usage: "Seed for shuffling wallpapers, random when unset",
		},
		&cli.StringFlag{
			Name:  tempDirFlag,
			Usage: "Overrides TempDirectory from the config",
		},
		&cli.BoolFlag{
			Name:  debugFlag,
			Usage: "Enable debug logging",
		},
	}
	app.Commands = []*cli.Command{
		runCommand(),
		previewCommand(),
		checkCommand(),
		interactiveCommand(),
	}
	// Running is the default
	app.Action = func(c *cli.Context) error {
		if err := beforeFunc(c); err != nil {
			return err
		}
		return runAction(c)
	}

	err := app.Run(os.Args)
	checkErr(err)
}

// Only init when necessary
// Can't do conditionally in app.Before because app.Before is useless for any purpose
func beforeFunc(c *cli.Context) error {
	if c.Bool(debugFlag) {
		log.SetDebug(true)
	}

	conf, err := lib.Init(c.String(configFlag))
	if err != nil {
		return err
	}

	if conf.Debug {
		log.SetDebug(true)
	}

	if t := c.String(tempDirFlag); t != "" {
		conf.TempDirectory = t
	}

	if conf.LogFile != "" {
		if err = log.SetLogFile(conf.LogFile); err != nil {
			return fmt.Errorf("Error opening log file: %w", err)
		}
	}
	return nil
}

func checkErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
