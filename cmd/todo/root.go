package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/metalagman/todo/internal/app"
	"github.com/metalagman/todo/internal/config"
	"github.com/metalagman/todo/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile  string
	backend  string
	debug    int
	hello    bool
	add      []string
	subtask  int
	remove   []int
	start    []int
	stop     []int
	complete []int
}

// Execute runs the root command.
func Execute() error {
	cmd := newRootCmd()
	cmd.SetArgs(expandPositionArgs(os.Args[1:]))
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	var o rootOptions
	cmd := &cobra.Command{
		Use:   "todo [flags] [subtask text]",
		Short: "todo is a personal task list",
		Long: "Add, remove, start, stop and complete tasks. After all changes are applied\n" +
			"the full list is printed.",
		Example: `  todo --add "Buy milk"
  todo --add-subtask 1 "oat milk"
  todo --start 1 --complete 2,3
  todo --remove 2 4`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.hello {
				return printHello(cmd, o.debug)
			}
			req, err := o.request(cmd, args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			tasks, err := app.Run(cmd.Context(), app.Options{
				Config:    cfg,
				Verbosity: o.debug,
				Console:   cmd.ErrOrStderr(),
			}, req)
			if err != nil {
				return err
			}
			return renderTasks(cmd.OutOrStdout(), tasks, cfg.Display.Width)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&o.hello, "hello", false, "print hello world and exit")
	flags.CountVarP(&o.debug, "debug", "d", "enable debug logging (repeat for storage tracing)")
	flags.StringVar(&o.cfgFile, "config", config.DefaultPath, "config file path")
	flags.StringVar(&o.backend, "backend", "", "storage backend (sqlite|json|mysql)")
	flags.StringArrayVarP(&o.add, "add", "a", nil, "add a task (repeatable)")
	flags.IntVar(&o.subtask, "add-subtask", 0, "add a subtask to the task at this position; remaining arguments are its text")
	flags.IntSliceVarP(&o.remove, "remove", "r", nil, "remove tasks at these positions")
	flags.IntSliceVar(&o.start, "start", nil, "mark tasks at these positions In Progress")
	flags.IntSliceVar(&o.stop, "stop", nil, "mark tasks at these positions To Do")
	flags.IntSliceVar(&o.complete, "complete", nil, "mark tasks at these positions Done")
	return cmd
}

// request validates the parsed flags before any storage is touched.
func (o rootOptions) request(cmd *cobra.Command, args []string) (app.Request, error) {
	req := app.Request{
		Start:    o.start,
		Stop:     o.stop,
		Complete: o.complete,
		Remove:   o.remove,
	}
	for _, text := range o.add {
		text = strings.TrimSpace(text)
		if text == "" {
			return app.Request{}, errors.New("--add requires non-empty text")
		}
		req.Add = append(req.Add, text)
	}

	if cmd.Flags().Changed("add-subtask") {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return app.Request{}, errors.New("--add-subtask requires a position and a text")
		}
		if o.subtask <= 0 {
			return app.Request{}, fmt.Errorf("invalid position %d for --add-subtask", o.subtask)
		}
		req.Subtask = &app.SubtaskRequest{Position: o.subtask, Text: text}
	} else if len(args) > 0 {
		return app.Request{}, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}

	for name, positions := range map[string][]int{
		"remove":   o.remove,
		"start":    o.start,
		"stop":     o.stop,
		"complete": o.complete,
	} {
		for _, p := range positions {
			if p <= 0 {
				return app.Request{}, fmt.Errorf("invalid position %d for --%s", p, name)
			}
		}
	}
	return req, nil
}

func printHello(cmd *cobra.Command, verbosity int) error {
	logger, closer, err := logging.New(logging.Options{Verbosity: verbosity, Console: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	logger.Info().Msg("say hello")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Hello world!")
	return err
}
