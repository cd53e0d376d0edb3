package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	lib "github.com/awused/collage-wallpapers/lib"
	"github.com/awused/collage-wallpapers/util/log"
	"github.com/urfave/cli/v2"
)

func checkCommand() *cli.Command {
	cmd := &cli.Command{}
	cmd.Name = "check"
	cmd.Usage = "Validate the config and wallpapers and print a sample layout " +
		"for each monitor"
	cmd.ArgsUsage = "[FILE...]"
	cmd.Before = beforeFunc

	cmd.Action = checkAction

	return cmd
}

func checkAction(c *cli.Context) error {
	conf, err := lib.GetConfig()
	if err != nil {
		return err
	}

	res, err := loadCatalog(context.Background(), conf, c.Args().Slice())
	if err != nil {
		return err
	}

	// Layouts are optional, the config can be checked without a desktop
	var backend lib.Backend
	wd, err := lib.OpenWorkDir(conf.TempDirectory)
	if err == nil {
		backend, err = lib.NewBackend(wd)
	}
	if err != nil {
		log.Printf("[WARN] Unable to query monitors, layouts will not be shown: %v", err)
		backend = nil
	}

	usable := writeReport(os.Stdout, res, conf.GlobalDelay(), backend, lib.NewRand(seed(c)))
	if usable == 0 {
		return errors.New("No monitors have any usable wallpapers")
	}
	return nil
}

// Prints what each monitor would do and returns how many monitors have
// usable wallpapers.
func writeReport(
	w io.Writer,
	res *lib.CatalogResult,
	global time.Duration,
	backend lib.Backend,
	r *lib.Rand) int {
	if len(res.Excluded) > 0 {
		fmt.Fprintf(w, "%d files could not be used:\n", len(res.Excluded))
		for _, p := range res.Excluded {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	composer := lib.NewComposer(res.Catalog)
	usable := 0

	for _, m := range res.Monitors {
		delay := m.TransitionDelay
		if delay == 0 {
			delay = global
		}

		fmt.Fprintf(w, "Monitor %d: %d wallpapers, changes every %s",
			m.Index, len(m.Wallpapers), delay)
		if len(m.Wallpapers) > 0 {
			usable++
		}

		if backend == nil || len(m.Wallpapers) == 0 {
			fmt.Fprintln(w)
			continue
		}

		width, height, err := backend.Resolution(m.Index)
		if err != nil {
			fmt.Fprintf(w, "\n  Resolution unavailable: %v\n", err)
			continue
		}
		fmt.Fprintf(w, ", %dx%d\n", width, height)

		order := append([]string(nil), m.Wallpapers...)
		r.ShuffleStrings(order)

		sources, rois, err := composer.Plan(width, height, order)
		if err != nil {
			fmt.Fprintf(w, "  %v\n", err)
			continue
		}

		for i, s := range sources {
			fmt.Fprintf(w, "  %s (%dx%d) at %v\n", s.Path, s.Width, s.Height, rois[i])
		}
	}

	return usable
}
