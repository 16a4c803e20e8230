package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/refbind/ref"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const repeatsKey = "repeats"

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_computed",
		Usage: "Measure computed values fanning many cells into bound targets",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Runs per configuration, the fastest is reported",
				Value: 5,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type benchmarkTestConfig struct {
	name       string // friendly name for the test, should be unique
	nSources   int    // cells feeding the computed
	nTargets   int    // objects the computed is bound to
	iterations int64  // writes per run
}

type results struct {
	sum         int
	evaluations int64
	duration    time.Duration
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting computed benchmark, please wait...")
	defer log.Print("Finished computed benchmark")

	cfgs := []benchmarkTestConfig{
		{name: "single label", nSources: 2, nTargets: 1, iterations: 600_000},
		{name: "form", nSources: 10, nTargets: 5, iterations: 100_000},
		{name: "dashboard", nSources: 100, nTargets: 25, iterations: 20_000},
		{name: "wide", nSources: 1_000, nTargets: 1, iterations: 5_000},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "sources", "targets", "nTimes", "time", "evaluations", "updateRate",
	})

	repeats := int(cmd.Int(repeatsKey))
	for _, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("Running '%s' config", cfg.name)

		best := &results{duration: time.Hour}
		for i := 0; i < repeats; i++ {
			r := runOnce(cfg)
			if r.duration < best.duration {
				best = r
			}
		}

		// every iteration adds one to exactly one source
		if want := int(cfg.iterations); best.sum != want {
			return fmt.Errorf("%s: sum %d, want %d", cfg.name, best.sum, want)
		}

		updateRate := float64(best.evaluations) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			cfg.name,
			fmt.Sprint(cfg.nSources),
			fmt.Sprint(cfg.nTargets),
			humanize.Comma(cfg.iterations),
			fmt.Sprint(best.duration),
			humanize.Comma(best.evaluations),
			humanize.Comma(int64(updateRate)),
		})
	}
	table.Render()
	return nil
}

// runOnce binds a sum over nSources cells to nTargets objects and bumps one
// source per iteration.
func runOnce(cfg benchmarkTestConfig) *results {
	sources := make([]*ref.Ref[int], cfg.nSources)
	deps := make([]ref.Dependency, cfg.nSources)
	for i := range sources {
		sources[i] = ref.New(0)
		deps[i] = sources[i]
	}

	r := &results{}
	sum := ref.NewComputed[int](deps...)
	sum.SetMethod(func() int {
		r.evaluations++
		total := 0
		for _, s := range sources {
			total += s.Value()
		}
		return total
	})

	var last int
	for i := 0; i < cfg.nTargets; i++ {
		o := ref.NewObject(fmt.Sprintf("target%d", i))
		ref.Field(o, "value", &last)
		ref.BindComputed(o, "value", sum)
	}

	start := time.Now()
	for i := int64(0); i < cfg.iterations; i++ {
		s := sources[int(i)%cfg.nSources]
		s.SetValue(s.Value() + 1)
	}
	r.duration = time.Since(start)
	r.sum = last
	return r
}
