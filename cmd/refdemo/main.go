package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	scenarioKey = "scenario"
	logLevelKey = "log-level"
	htmlKey     = "html"
)

func main() {
	cmd := &cli.Command{
		Name:  "refdemo",
		Usage: "Drive two bound sliders and a label through a scripted scenario",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  scenarioKey,
				Usage: "YAML scenario file, the built-in one is used when empty",
			},
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "zerolog level",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  htmlKey,
				Usage: "Render the widgets as HTML after every step",
				Value: true,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("refdemo started")
	defer func() {
		log.Printf("refdemo finished in %v", time.Since(start))
	}()

	level, err := zerolog.ParseLevel(cmd.String(logLevelKey))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	sc, err := loadScenario(cmd.String(scenarioKey))
	if err != nil {
		return err
	}
	logger.Info().Str("scenario", sc.Name).Int("steps", len(sc.Steps)).Msg("loaded")

	d := newDemo(logger)
	if cmd.Bool(htmlKey) {
		d.render(os.Stdout)
	}
	for i, s := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.apply(s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, s, err)
		}
		logger.Info().Int("step", i).Stringer("action", s).Str("label", d.labelText()).Msg("applied")
		if cmd.Bool(htmlKey) {
			d.render(os.Stdout)
		}
	}

	d.summary(os.Stdout)
	return nil
}
