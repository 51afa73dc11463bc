package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csseng/config"
	"csseng/inspect"
	"csseng/misc"
	"csseng/state"
)

// setup runs after the command line is parsed and before any action: it
// loads configuration, opens the debug report and builds the logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help will be shown, no environment needed
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	var err error
	cfgFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(cfgFile); err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to create debug report: %w", err)
		}
		name := "defaults.yaml"
		if cfgFile != "" {
			name = filepath.Base(cfgFile)
		}
		if data, err := config.Dump(env.Cfg); err == nil {
			env.Rpt.StoreData("config/"+name, data)
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to create logger: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Starting",
		zap.String("app", misc.GetAppName()),
		zap.String("version", misc.GetVersion()),
		zap.String("hash", misc.GetGitHash()),
		zap.String("go", runtime.Version()),
		zap.Strings("args", os.Args))
	if cfgFile == "" {
		env.Log.Debug("No configuration file, using built-in defaults")
	}
	if env.Rpt != nil {
		env.Log.Info("Debug report requested", zap.String("archive", env.Rpt.Name()))
	}
	return ctx, nil
}

// teardown flushes the log and finalizes the debug report. Logging is not
// available past this point, errors are returned to main.
func teardown(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Finished", zap.Duration("elapsed", env.Uptime()), zap.Strings("args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	if env.Rpt != nil {
		if e := env.Rpt.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to finalize debug report: %w", e))
		}
	}

	if env.Cfg == nil || env.Cfg.Logging.FileLogger.Destination == "" {
		return err
	}
	// panic log stays only when something was written into it
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	name := env.Cfg.Logging.PanicLogName()
	if fi, e := os.Stat(name); e == nil && fi.Size() == 0 {
		if e := os.Remove(name); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove panic log '%s': %w", name, e))
		}
	}
	return err
}

func onExitError(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Command failed", zap.Error(err))
		loggedErr = err
	}
}

// loggedErr is set once the failure went to the log, main then only sets
// the exit code.
var loggedErr error

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func onCommandNotFound(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("No such command", zap.String("command", name))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:    misc.GetAppName(),
		Usage:   "CSS parsing and selection engine, debugging front end",
		Version: fmt.Sprintf("%s (%s) : %s", misc.GetVersion(), runtime.Version(), misc.GetGitHash()),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "read configuration from YAML `FILE`"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging and a zip report with inputs, outputs and logs"},
		},
		Commands:        append(inspect.Commands(onUsageError), dumpConfigCommand()),
		HideHelpCommand: true,
		Before:          setup,
		After:           teardown,
		OnUsageError:    onUsageError,
		ExitErrHandler:  onExitError,
		CommandNotFound: onCommandNotFound,
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}
	if loggedErr == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
	}
	os.Exit(1)
}
