package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/realm"
)

func newHeapCmd() *cobra.Command {
	heapCmd := &cobra.Command{Use: "heap", Short: "heap inspection tooling"}
	heapCmd.AddCommand(newHeapTopCmd())
	return heapCmd
}

func newHeapTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top <fixture.json>",
		Short: "run a fixture then print live cell counts broken down by object class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := loadFixture(args[0])
			if err != nil {
				return err
			}
			ctx, err := realm.NewContext(realm.Config{GC: gc.Config{}, Hooks: hostapi.Hooks{}})
			if err != nil {
				return err
			}
			if _, err := ctx.Eval(code); err != nil {
				return fmt.Errorf("script threw: %w", err)
			}

			counts := make(map[string]int)
			for _, c := range ctx.Heap.Cells() {
				class := "other"
				if o, ok := c.(*object.Object); ok {
					class = o.Class()
					if class == "" {
						class = "Object"
					}
				}
				counts[class]++
			}

			classes := make([]string, 0, len(counts))
			for class := range counts {
				classes = append(classes, class)
			}
			sort.Slice(classes, func(i, j int) bool { return counts[classes[i]] > counts[classes[j]] })

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Class", "Live count"})
			for _, class := range classes {
				t.AppendRow(table.Row{class, counts[class]})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}
