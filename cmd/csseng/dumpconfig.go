package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csseng/config"
	"csseng/state"
)

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Writes built-in or effective configuration as YAML",
		ArgsUsage:    "[FILE]",
		OnUsageError: onUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write built-in defaults instead of effective values"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + `
FILE:
    where to write configuration, STDOUT when omitted

Effective configuration is the built-in defaults overlaid with values from
the file given by --config.
`,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Extra arguments ignored", zap.Strings("args", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
	)
	kind := "effective"
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to render %s configuration: %w", kind, err)
	}

	var w io.Writer = os.Stdout
	dest := cmd.Args().First()
	if dest != "" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("unable to create '%s': %w", dest, err)
		}
		defer f.Close()
		w = f
	}
	env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("to", orDefault(dest, "STDOUT")))

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
