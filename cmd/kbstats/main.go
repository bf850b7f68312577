// main.go — command line entry point for the knowledge base statistics tool.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli"

	"kbstats/internal/kb"
	"kbstats/internal/stats"
)

// banner is the static program presentation printed before a run.
// It is fixed at build time and handed to newApp, never mutated.
type banner struct {
	title    string
	subtitle string
}

var defaultBanner = banner{
	title:    "Knowledge Base Statistics",
	subtitle: "Feature models (SPLOT, FeatureIDE, Glencoe) and the " + strings.Join(kindNames(), ", ") + " benchmarks.",
}

// kindNames lists the benchmark names as plain strings for flag help text.
func kindNames() []string {
	kinds := kb.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringSliceFlag{
			Name:  "kb",
			Usage: "Benchmark knowledge base to analyze (repeatable): " + strings.Join(kindNames(), ", "),
		},
		cli.StringFlag{
			Name:  "fm, f",
			Usage: "Single feature model file to analyze",
		},
		cli.StringFlag{
			Name:  "fm-dir",
			Usage: "Directory scanned for feature model files",
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "Report output file (required)",
		},
	}
}

func configFromContext(c *cli.Context) stats.Config {
	return stats.Config{
		Benchmarks: c.StringSlice("kb"),
		FMFile:     c.String("fm"),
		FMDir:      c.String("fm-dir"),
	}
}

func (b banner) print(app *cli.App) {
	fmt.Fprintf(app.Writer, "%s\n%s\n\n", b.title, b.subtitle)
}

func newApp(b banner) *cli.App {
	app := cli.NewApp()
	app.Name = "kbstats"
	app.Usage = "Report statistics for configuration knowledge bases"
	app.Flags = getFlags()

	app.Action = func(c *cli.Context) error {
		cfg := configFromContext(c)
		if len(cfg.Benchmarks) == 0 && cfg.FMFile == "" && cfg.FMDir == "" {
			return cli.ShowAppHelp(c)
		}
		out := c.String("out")
		if out == "" {
			return fmt.Errorf("an output file is required (--out)")
		}

		b.print(c.App)

		w, err := stats.Create(out)
		if err != nil {
			return err
		}
		defer w.Close()

		err = stats.NewDriver(cfg, slog.Default()).Run(w)
		var runErr *stats.RunError
		if err != nil && !errors.As(err, &runErr) {
			return err
		}
		// The report is complete even when some inputs were skipped; only
		// configuration and write aborts suppress the completion marker.
		fmt.Fprintln(c.App.Writer, "\nDONE.")
		return err
	}
	return app
}

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func main() {
	if err := newApp(defaultBanner).Run(os.Args); err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}
