package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	lib "github.com/awused/collage-wallpapers/lib"
	"github.com/awused/collage-wallpapers/util/log"
	"github.com/urfave/cli/v2"
)

func runCommand() *cli.Command {
	cmd := &cli.Command{}
	cmd.Name = "run"
	cmd.Usage = "Rotate collages on every configured monitor until stopped"
	cmd.Description = "SIGHUP reloads transition delays from the config, " +
		"SIGINT or SIGTERM stop."
	cmd.Before = beforeFunc

	cmd.Action = runAction

	return cmd
}

func runAction(c *cli.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := newSession(ctx, c, nil)
	if err != nil {
		return err
	}

	if s.configPath != "" {
		cw, err := lib.NewConfigWatcher(s.configPath)
		if err != nil {
			log.Printf("[WARN] Not watching config for changes: %v", err)
		} else {
			go cw.Run(ctx, s.reload)
		}
	}

	go handleSignals(ctx, cancel, s.reload)

	log.Debugf("Starting %d pipelines", len(s.pipelines))
	return lib.RunPipelines(ctx, s.pipelines)
}

func handleSignals(ctx context.Context, stop func(), reload func()) {
	// Large buffered channel so it doesn't block signals if it's busy
	sigs := make(chan os.Signal, 100)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				reload()
				continue
			}

			log.Printf("Received %s, stopping", sig)
			stop()
			return
		}
	}
}
