package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/realm"
)

func newGCCmd() *cobra.Command {
	gcCmd := &cobra.Command{Use: "gc", Short: "garbage collector tooling"}
	gcCmd.AddCommand(newGCReportCmd())
	return gcCmd
}

func newGCReportCmd() *cobra.Command {
	var (
		out    string
		cycles int
	)
	cmd := &cobra.Command{
		Use:   "report <fixture.json>",
		Short: "run a fixture's script repeatedly, forcing a collection each time, and chart live and freed cell counts per cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := loadFixture(args[0])
			if err != nil {
				return err
			}
			ctx, err := realm.NewContext(realm.Config{
				GC:    gc.Config{},
				Hooks: hostapi.Hooks{},
			})
			if err != nil {
				return err
			}

			var liveAfter []opts.LineData
			var freed []opts.LineData
			labels := make([]string, 0, cycles)
			for i := 0; i < cycles; i++ {
				if _, err := ctx.Eval(code); err != nil {
					return fmt.Errorf("cycle %d: %w", i, err)
				}
				stats := ctx.Heap.Collect()
				labels = append(labels, fmt.Sprintf("%d", i))
				liveAfter = append(liveAfter, opts.LineData{Value: stats.LiveAfter})
				freed = append(freed, opts.LineData{Value: stats.Freed})
			}

			line := charts.NewLine()
			line.SetGlobalOptions(
				charts.WithTitleOpts(opts.Title{Title: "GC pass report", Subtitle: args[0]}),
				charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
			)
			line.SetXAxis(labels).
				AddSeries("live after collect", liveAfter).
				AddSeries("freed", freed)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return line.Render(f)
		},
	}
	cmd.Flags().StringVar(&out, "out", "gc-report.html", "output HTML report path")
	cmd.Flags().IntVar(&cycles, "cycles", 10, "number of eval+collect cycles to run")
	return cmd
}
