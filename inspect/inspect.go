// Package inspect implements the command line actions: stylesheet dumps,
// media query evaluation and style selection for HTML documents.
package inspect

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"csseng/config"
	"csseng/css/mq"
	"csseng/css/stylesheet"
	"csseng/fixed"
	"csseng/state"
)

//go:embed ua.css
var defaultUAStylesheet []byte

var origins = map[string]stylesheet.Origin{
	"ua":     stylesheet.OriginUA,
	"user":   stylesheet.OriginUser,
	"author": stylesheet.OriginAuthor,
}

func originByName(name string) (stylesheet.Origin, error) {
	if o, ok := origins[strings.ToLower(name)]; ok {
		return o, nil
	}
	return 0, fmt.Errorf("unknown origin %q, expected ua, user or author", name)
}

func mediaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "media", Aliases: []string{"m"}, Usage: "media `TYPE` to select for, overrides configuration"},
		&cli.IntFlag{Name: "width", Usage: "viewport width in `PIXELS`, overrides configuration"},
		&cli.IntFlag{Name: "height", Usage: "viewport height in `PIXELS`, overrides configuration"},
	}
}

// Commands returns the inspection subcommands.
func Commands(onUsageError cli.OnUsageErrorFunc) []*cli.Command {
	return []*cli.Command{
		{
			Name:         "parse",
			Usage:        "Parses stylesheet(s) and dumps rules with their bytecode decoded",
			OnUsageError: onUsageError,
			Action:       Parse,
			ArgsUsage:    "FILE [FILE...]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "origin", Value: "author", Usage: "cascade `ORIGIN` of the stylesheets (ua, user, author)"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write dump to `FILE` instead of STDOUT"},
			},
		},
		{
			Name:         "media",
			Usage:        "Parses media query list and evaluates it against configured media",
			OnUsageError: onUsageError,
			Action:       Media,
			ArgsUsage:    "QUERY",
			Flags:        mediaFlags(),
		},
		{
			Name:         "select",
			Usage:        "Computes styles of HTML elements",
			OnUsageError: onUsageError,
			Action:       Select,
			ArgsUsage:    "HTML",
			Flags: append([]cli.Flag{
				&cli.StringSliceFlag{Name: "css", Usage: "author stylesheet `FILE`, may be repeated"},
				&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "only report elements matching `SELECTOR`"},
				&cli.StringFlag{Name: "target", Usage: "`ID` of the :target element"},
				&cli.StringFlag{Name: "lang", Usage: "document `LANGUAGE` for elements without lang attribute"},
				&cli.BoolFlag{Name: "no-embedded", Usage: "ignore <style> elements of the document"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write result to `FILE` instead of STDOUT"},
			}, mediaFlags()...),
		},
	}
}

// mediaFor returns configured media with command line overrides applied.
func mediaFor(env *state.LocalEnv, cmd *cli.Command) (*mq.Media, error) {
	conf := config.MediaConfig{Type: "screen", Width: 1024, Height: 768, FontSize: 12, LineHeight: 1.2}
	if env.Cfg != nil {
		conf = env.Cfg.Media
	}
	m := conf.Media()

	if cmd.IsSet("media") {
		if m.Type = mq.TypeByName(cmd.String("media")); m.Type == 0 {
			return nil, fmt.Errorf("unknown media type %q", cmd.String("media"))
		}
	}
	if cmd.IsSet("width") {
		m.Width = fixed.FromInt(int(cmd.Int("width")))
	}
	if cmd.IsSet("height") {
		m.Height = fixed.FromInt(int(cmd.Int("height")))
	}
	return m, nil
}

// output writes text to the file named by the "out" flag or to the root
// command's writer.
func output(cmd *cli.Command, text string) error {
	var w io.Writer = os.Stdout
	if root := cmd.Root(); root != nil && root.Writer != nil {
		w = root.Writer
	}
	if fname := cmd.String("out"); fname != "" {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
