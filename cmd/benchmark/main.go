package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/refbind/ref"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure propagation from a cell to its bound targets",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes per configuration",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "CPU profile output, disabled when empty",
				Value: "default.pgo",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	log.Printf("warming up")
	benchmarkBindRef(iters, false)

	benchmarkBindRef(iters, true)
	benchmarkTwoWay(iters, true)
	return nil
}

func newTarget(i int) (*ref.Object, *int) {
	v := new(int)
	o := ref.NewObject(fmt.Sprintf("target%d", i))
	ref.Field(o, "value", v)
	return o, v
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

// benchmarkBindRef binds w cells to h targets each and times one SetValue per cell.
func benchmarkBindRef(iters int, shouldRender bool) {
	tbl := newTable("BindRef")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			cells := make([]*ref.Ref[int], w)
			var last *int
			for i := range cells {
				cells[i] = ref.New(0)
				for j := 0; j < h; j++ {
					o, v := newTarget(j)
					ref.BindRef(o, "value", cells[i])
					last = v
				}
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				for _, c := range cells {
					c.SetValue(c.Value() + 1)
				}
				tach.AddTime(time.Since(start))
			}
			if *last != iters {
				log.Panicf("propagate %d * %d: got %d, want %d", w, h, *last, iters)
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkTwoWay times an input event on one of h two-way bound targets
// reaching all the others.
func benchmarkTwoWay(iters int, shouldRender bool) {
	tbl := newTable("BindTwoWay")

	for _, h := range hh {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		cell := ref.New(0)
		targets := make([]*ref.Object, h)
		values := make([]*int, h)
		for j := range targets {
			targets[j], values[j] = newTarget(j)
			ref.BindTwoWay(targets[j], "value", cell)
		}

		for i := 1; i <= iters; i++ {
			src := targets[i%h]
			start := time.Now()
			if err := src.Input("value", i); err != nil {
				log.Panic(err)
			}
			tach.AddTime(time.Since(start))
		}
		if *values[len(values)-1] != iters {
			log.Panicf("input fan-out %d: got %d, want %d", h, *values[len(values)-1], iters)
		}

		appendCalc(tbl, fmt.Sprintf("input: 1 -> %d", h), tach)
	}

	if shouldRender {
		tbl.Render()
	}
}
