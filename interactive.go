package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	lib "github.com/awused/collage-wallpapers/lib"
	prompt "github.com/c-bata/go-prompt"
	"github.com/urfave/cli/v2"
)

func interactiveCommand() *cli.Command {
	cmd := &cli.Command{}
	cmd.Name = "interactive"
	cmd.Usage = "Rotate collages with a prompt for skipping ahead and " +
		"inspecting each monitor"
	cmd.Before = beforeFunc

	cmd.Action = interactiveAction

	return cmd
}

func interactiveAction(c *cli.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := newSession(ctx, c, nil)
	if err != nil {
		return err
	}

	pipelinesDone := make(chan error, 1)
	go func() {
		pipelinesDone <- lib.RunPipelines(ctx, s.pipelines)
	}()

	// Large buffered channel so it doesn't block signals if it's busy
	sigs := make(chan os.Signal, 100)
	promptChan := make(chan struct{}, 1)
	inputChan := make(chan string)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigs)

	go func() {
		promptUntilDone(s, inputChan)
		promptChan <- struct{}{}
	}()

	for {
		select {
		case <-promptChan:
			cancel()
			return <-pipelinesDone
		case err := <-pipelinesDone:
			// prompt.Input can't be interrupted, so there's no clean way out
			return err
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				s.reload()
				continue
			}
			select {
			case inputChan <- "exit":
			case <-promptChan:
				cancel()
				return <-pipelinesDone
			}
		}
	}
}

var commands = []prompt.Suggest{
	{Text: "exit", Description: "Stop every monitor and exit"},
	{Text: "status", Description: "Print the state of every monitor"},
	{Text: "next", Description: "Change to the next collage now, " +
		"optionally only for one monitor"},
	{Text: "delay", Description: "Set the default transition delay in minutes"},
	{Text: "reload", Description: "Reload transition delays from the config"},
}

func completer(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(commands, d.TextBeforeCursor(), true)
}

func promptUntilDone(s *session, inputChan chan string) {
	exit := prompt.OptionAddKeyBind(prompt.KeyBind{
		Key: prompt.ControlC,
		Fn: func(b *prompt.Buffer) {
			inputChan <- "exit"
		},
	})

	for {
		go func() {
			// prompt.Input is blocking, synchronous, and provides no way to abort it
			inputChan <- strings.ToLower(prompt.Input("> ", completer, exit))
		}()

		if !executeCommand(s, os.Stdout, <-inputChan) {
			return
		}
	}
}

// Runs a single command, returning false when the prompt should exit.
func executeCommand(s *session, w io.Writer, in string) bool {
	fields := strings.Fields(in)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "exit":
		return false
	case "status":
		for _, p := range s.pipelines {
			printStatus(w, p.Status())
		}
	case "next":
		advance(s, w, fields[1:])
	case "delay":
		setDelay(s, w, fields[1:])
	case "reload":
		s.reload()
	default:
		fmt.Fprintln(w, "Unknown command")
	}
	return true
}

func advance(s *session, w io.Writer, args []string) {
	if len(args) == 0 {
		for _, p := range s.pipelines {
			p.Advance()
		}
		return
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(w, "Invalid input \"%s\"\n", args[0])
		return
	}

	p := s.pipeline(idx)
	if p == nil {
		fmt.Fprintf(w, "No running monitor %d\n", idx)
		return
	}
	p.Advance()
}

func setDelay(s *session, w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: delay MINUTES")
		return
	}

	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n <= 0 {
		fmt.Fprintf(w, "Invalid input \"%s\"\n", args[0])
		return
	}

	// Timers that are already running keep their delay
	s.schedule.SetGlobal(time.Duration(n) * time.Minute)
	fmt.Fprintf(w, "Default delay is now %s\n", time.Duration(n)*time.Minute)
}

func printStatus(w io.Writer, st lib.PipelineStatus) {
	fmt.Fprintf(w, "Monitor %d: %d wallpapers, %d collages generated\n",
		st.Index, st.PoolSize, st.Generations)

	if st.Finished {
		fmt.Fprintln(w, "  Stopped")
		return
	}
	if st.Active != "" {
		fmt.Fprintf(w, "  Active: %s\n", st.Active)
	}
	if st.Next != "" {
		fmt.Fprintf(w, "  Next:   %s\n", st.Next)
	}
	if !st.ArmedAt.IsZero() {
		left := st.Delay - time.Since(st.ArmedAt)
		if left < 0 {
			left = 0
		}
		fmt.Fprintf(w, "  Changes in %s\n", left.Round(time.Second))
	}
}
