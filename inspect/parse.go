package inspect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csseng/css/mq"
	"csseng/state"
	"csseng/utils/debug"
)

// Parse dumps every stylesheet named on the command line.
func Parse(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("parse")

	if cmd.Args().Len() == 0 {
		return errors.New("no stylesheet has been specified")
	}
	origin, err := originByName(cmd.String("origin"))
	if err != nil {
		return err
	}

	defer func(start time.Time) {
		log.Debug("Parsing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	tw := debug.NewTreeWriter()
	for _, src := range cmd.Args().Slice() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheet, err := env.LoadStylesheet(src, origin)
		if err != nil {
			return err
		}
		log.Info("Stylesheet parsed", zap.String("source", src), zap.Int("rules", len(sheet.Rules)), zap.Int("dropped", len(sheet.Warnings())))
		tw.DumpStylesheet(0, sheet)
	}

	env.Rpt.StoreData("parse.txt", []byte(tw.String()))
	return output(cmd, tw.String())
}

// Media prints the normalized query list and whether it matches.
func Media(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("media")

	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("no media query has been specified")
	}
	m, err := mediaFor(env, cmd)
	if err != nil {
		return err
	}

	list, err := mq.ParseString(env.Strings, query)
	if err != nil {
		// the list would be dropped as "not all"
		log.Warn("Media query list is invalid", zap.String("query", query), zap.Error(err))
		return output(cmd, fmt.Sprintf("invalid\t%s\tfalse\n", query))
	}

	matches := mq.Evaluate(list, m)
	log.Debug("Media query evaluated", zap.String("query", mq.Format(list)), zap.Stringer("media", m.Type),
		zap.Float64("width", m.Width.Float()), zap.Float64("height", m.Height.Float()), zap.Bool("matches", matches))
	return output(cmd, fmt.Sprintf("%s\t%t\n", mq.Format(list), matches))
}
