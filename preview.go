package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func previewCommand() *cli.Command {
	cmd := &cli.Command{}
	cmd.Name = "preview"
	cmd.Usage = "Set a single collage on every monitor and exit"
	cmd.Description = "Files and directories given as arguments replace the " +
		"configured wallpapers of every monitor."
	cmd.ArgsUsage = "[FILE...]"
	cmd.Before = beforeFunc

	cmd.Action = previewAction

	return cmd
}

func previewAction(c *cli.Context) error {
	ctx := context.Background()

	s, err := newSession(ctx, c, c.Args().Slice())
	if err != nil {
		return err
	}

	outFiles := make([]string, len(s.pipelines))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range s.pipelines {
		i, p := i, p
		g.Go(func() (err error) {
			outFiles[i], err = p.RunOnce(ctx)
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	for i, p := range s.pipelines {
		fmt.Printf("Monitor %d: %s\n", p.Index(), outFiles[i])
	}
	return nil
}
